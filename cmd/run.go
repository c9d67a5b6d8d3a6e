package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkeller/ablate/internal/config"
	"github.com/mkeller/ablate/internal/record"
	"github.com/mkeller/ablate/internal/runner"
)

var (
	flagFamily  string
	flagValues  []string
	flagNumRuns int
	flagTrainer []string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a hyperparameter sweep via the external trainer",
		RunE:  runSweep,
	}
	cmd.Flags().StringVar(&flagFamily, "family", "activation", "experiment family (activation, warmup)")
	cmd.Flags().StringSliceVar(&flagValues, "values", nil, "override sweep values")
	cmd.Flags().IntVar(&flagNumRuns, "num-runs", 0, "override runs per value")
	cmd.Flags().StringSliceVar(&flagTrainer, "trainer", nil, "override trainer command")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagNumRuns > 0 {
		cfg.NumRuns = flagNumRuns
	}

	values, valueFlag, trainerCmd, err := sweepFor(cfg, flagFamily, flagValues)
	if err != nil {
		return err
	}
	if len(flagTrainer) > 0 {
		trainerCmd = flagTrainer
	}

	fmt.Printf("Sweep: %s\n", flagFamily)
	fmt.Printf("Values: %s\n", strings.Join(values, ", "))
	fmt.Printf("Runs per value: %d\n", cfg.NumRuns)
	if flagFamily == "activation" {
		fmt.Printf("Estimated time: ~%.1f minutes\n", float64(len(values)*cfg.NumRuns)*5.0/60.0)
	} else {
		fmt.Printf("Total runs: %d\n", len(values)*cfg.NumRuns)
	}

	opts := &runner.Opts{
		Command:   trainerCmd,
		ValueFlag: valueFlag,
		NumRuns:   cfg.NumRuns,
		EnvFile:   cfg.Trainer.EnvFile,
	}

	start := time.Now()
	var results []runner.Result
	for _, value := range values {
		fmt.Printf("\n=== running %s = %s ===\n", flagFamily, value)
		res, err := runner.RunOne(context.Background(), value, opts)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] completed in %.1fs (exit code: %d)\n", value, res.Elapsed.Seconds(), res.ExitCode)
		results = append(results, res)
	}
	total := time.Since(start)

	fmt.Println("\n=== sweep summary ===")
	for _, res := range results {
		status := "SUCCESS"
		if !res.OK {
			status = fmt.Sprintf("FAILED (exit %d)", res.ExitCode)
		}
		fmt.Printf("  %-15s : %s\n", res.Value, status)
	}
	fmt.Printf("\nTotal time: %.1fs (%.1f minutes)\n", total.Seconds(), total.Minutes())
	fmt.Println("\nNext steps:")
	fmt.Printf("  ablate report --family %s\n", flagFamily)
	fmt.Printf("  check %s/ for figures\n", cfg.FiguresDir)
	return nil
}

// sweepFor resolves the values, trainer flag name, and trainer command for a
// family, applying the --values override when present.
func sweepFor(cfg *config.Config, family string, override []string) ([]string, string, []string, error) {
	switch family {
	case "activation":
		values := cfg.Activation.Values
		if len(override) > 0 {
			for _, v := range override {
				if !knownActivation(v) {
					return nil, "", nil, fmt.Errorf("unknown activation %q", v)
				}
			}
			values = override
		}
		return values, "--activation", cfg.Trainer.ActivationCmd, nil
	case "warmup":
		values := cfg.Warmup.Values
		if len(override) > 0 {
			for _, v := range override {
				if _, err := strconv.ParseFloat(v, 64); err != nil {
					return nil, "", nil, fmt.Errorf("warmup value %q is not a number", v)
				}
			}
			values = override
		}
		return values, "--warmup_ratio", cfg.Trainer.WarmupCmd, nil
	default:
		return nil, "", nil, fmt.Errorf("unknown family %q (want activation or warmup)", family)
	}
}

func knownActivation(name string) bool {
	for _, a := range record.ActivationOrder {
		if a == name {
			return true
		}
	}
	return false
}
