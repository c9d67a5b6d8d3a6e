package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ablate",
		Short: "Run and analyze training ablation sweeps",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "ablate.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newCurvesCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newHistoryCmd())
	return root
}
