package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkeller/ablate/internal/config"
	"github.com/mkeller/ablate/internal/history"
	"github.com/mkeller/ablate/internal/record"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [analysis-id]",
		Short: "Show archived analyses",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if cfg.History.DB == "" {
				fmt.Println("No history database configured (set history.db in the config).")
				return nil
			}
			store, err := history.Open(cfg.History.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return printAnalysisRows(store, args[0])
			}

			analyses, err := store.Analyses()
			if err != nil {
				return err
			}
			if len(analyses) == 0 {
				fmt.Println("No archived analyses yet.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFAMILY\tBASELINE\tKEYS\tCREATED")
			fmt.Fprintln(tw, strings.Repeat("-", 80))
			for _, a := range analyses {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					a.ID, a.Family, record.DisplayName(a.Baseline), a.NumKeys,
					a.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func printAnalysisRows(store *history.Store, id string) error {
	rows, err := store.Rows(id)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Printf("No rows for analysis %s\n", id)
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VALUE\tMEAN ACC (%)\tMEAN TIME (S)\tRUNS\tP (ACC)\tSIGNIFICANT")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, r := range rows {
		pAcc := "-"
		if r.AccP.Valid {
			pAcc = fmt.Sprintf("%.4f", r.AccP.Float64)
		}
		sig := "NO"
		if r.Significant {
			sig = "YES"
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%d\t%s\t%s\n",
			record.DisplayName(r.Key), r.MeanAcc*100, r.MeanTime, r.NumRuns, pAcc, sig)
	}
	return tw.Flush()
}
