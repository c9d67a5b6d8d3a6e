package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkeller/ablate/internal/config"
	"github.com/mkeller/ablate/internal/curves"
)

var flagCurvesLogDir string

func newCurvesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curves",
		Short: "Plot validation-loss curves from GPT trainer logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logDir := cfg.Curves.LogDir
			if flagCurvesLogDir != "" {
				logDir = flagCurvesLogDir
			}

			variants, err := curves.CollectRuns(logDir)
			if err != nil {
				return err
			}
			if len(variants) == 0 {
				fmt.Printf("No baseline/swiglu log files found in %s\n", logDir)
				return nil
			}
			for _, v := range variants {
				fmt.Printf("%s: %d run(s)\n", v.Label, len(v.Runs))
				for _, run := range v.Runs {
					last := run.Points[len(run.Points)-1]
					fmt.Printf("  %s: %d points, final val_loss %.4f at step %d (%.1fs)\n",
						run.File, len(run.Points), last.ValLoss, last.Step, last.TrainTime)
				}
			}

			path, err := curves.WriteComparison(cfg.FiguresDir, variants)
			if err != nil {
				return err
			}
			fmt.Printf("Saved: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagCurvesLogDir, "log-dir", "", "directory holding trainer .txt logs")
	return cmd
}
