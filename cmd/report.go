package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkeller/ablate/internal/config"
	"github.com/mkeller/ablate/internal/figures"
	"github.com/mkeller/ablate/internal/history"
	"github.com/mkeller/ablate/internal/record"
	"github.com/mkeller/ablate/internal/report"
	"github.com/mkeller/ablate/internal/stats"
)

var (
	flagReportFamily string
	flagCSV          string
	flagFiguresDir   string
	flagSkipFigures  bool
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Analyze stored run records: tables, figures, CSV, LaTeX",
		RunE:  runReport,
	}
	cmd.Flags().StringVar(&flagReportFamily, "family", "activation", "experiment family (activation, warmup)")
	cmd.Flags().StringVar(&flagCSV, "csv", "", "CSV output path (default per family)")
	cmd.Flags().StringVar(&flagFiguresDir, "figures-dir", "", "override figures directory")
	cmd.Flags().BoolVar(&flagSkipFigures, "skip-figures", false, "skip figure rendering")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	set, baseline, keyColumn, err := loadFamily(cfg, flagReportFamily)
	if err != nil {
		return err
	}
	if set.Len() == 0 {
		fmt.Printf("No %s results found in %s/\n", flagReportFamily, cfg.LogsDir)
		fmt.Printf("Run 'ablate run --family %s' first.\n", flagReportFamily)
		return nil
	}

	names := make([]string, 0, set.Len())
	for _, key := range set.Keys {
		names = append(names, record.DisplayName(key))
	}
	fmt.Printf("Found results for %d values: %s\n\n", set.Len(), strings.Join(names, ", "))

	if err := report.PrintSummary(os.Stdout, set, baseline, flagReportFamily == "warmup"); err != nil {
		return err
	}
	fmt.Println()

	comps, err := stats.Compare(set, baseline)
	switch {
	case errors.Is(err, stats.ErrBaselineMissing):
		fmt.Printf("Baseline %s not found in results; skipping statistical comparison.\n", record.DisplayName(baseline))
	case err != nil:
		return err
	default:
		if err := report.PrintComparisons(os.Stdout, comps, baseline); err != nil {
			return err
		}
	}
	fmt.Println()

	if !flagSkipFigures {
		figDir := cfg.FiguresDir
		if flagFiguresDir != "" {
			figDir = flagFiguresDir
		}
		written, err := figures.WriteSummary(figDir, set, flagReportFamily, baseline)
		for _, path := range written {
			fmt.Printf("Saved: %s\n", path)
		}
		if err != nil {
			return err
		}
	}

	csvPath := flagCSV
	if csvPath == "" {
		csvPath = "results.csv"
		if flagReportFamily == "activation" {
			csvPath = "activation_results.csv"
		}
	}
	if err := report.ExportCSV(csvPath, set, keyColumn); err != nil {
		return err
	}
	fmt.Printf("Exported results to: %s\n\n", csvPath)

	caption := "LR Warmup Ratio Ablation Results"
	if flagReportFamily == "activation" {
		caption = "Activation Function Ablation Results"
	}
	fmt.Println("LaTeX table:")
	report.PrintLaTeX(os.Stdout, set, comps, baseline, caption)

	if cfg.History.DB != "" {
		store, err := history.Open(cfg.History.DB)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.RecordAnalysis(flagReportFamily, baseline, set, comps)
		if err != nil {
			return err
		}
		fmt.Printf("\nArchived analysis %s to %s\n", id, cfg.History.DB)
	}
	return nil
}

// loadFamily loads a family's result set in canonical order along with its
// baseline key and CSV key column.
func loadFamily(cfg *config.Config, family string) (*record.Set, string, string, error) {
	switch family {
	case "activation":
		set, err := record.LoadActivations(cfg.LogsDir)
		if err != nil {
			return nil, "", "", err
		}
		return set, cfg.Activation.Baseline, "activation", nil
	case "warmup":
		set, err := record.LoadWarmups(cfg.LogsDir)
		if err != nil {
			return nil, "", "", err
		}
		ratio, err := record.RatioForKey(cfg.Warmup.Baseline)
		if err != nil {
			return nil, "", "", err
		}
		return set, record.KeyForRatio(ratio), "warmup_ratio", nil
	default:
		return nil, "", "", fmt.Errorf("unknown family %q (want activation or warmup)", family)
	}
}
