package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkeller/ablate/internal/config"
	"github.com/mkeller/ablate/internal/record"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List run records found in the logs directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			activations, err := record.LoadActivations(cfg.LogsDir)
			if err != nil {
				return err
			}
			warmups, err := record.LoadWarmups(cfg.LogsDir)
			if err != nil {
				return err
			}
			if activations.Len() == 0 && warmups.Len() == 0 {
				fmt.Printf("No results found in %s/\n", cfg.LogsDir)
				return nil
			}

			if activations.Len() > 0 {
				fmt.Println("Activations:")
				printFamily(activations)
			}
			if warmups.Len() > 0 {
				fmt.Println("Warmup ratios:")
				printFamily(warmups)
			}
			return nil
		},
	}
}

func printFamily(set *record.Set) {
	for _, key := range set.Keys {
		rec := set.Records[key]
		fmt.Printf("  - %s: %d runs, mean acc %.2f%%, mean time %.2fs\n",
			record.DisplayName(key), rec.NumRuns, rec.MeanAcc*100, rec.MeanTime)
	}
}
