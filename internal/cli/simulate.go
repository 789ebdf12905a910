package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	simulateAnchor float64
	simulateQuote  float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Evaluate a synthetic quote against an anchor price",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateAnchor <= 1.0 || simulateQuote <= 1.0 {
			return errors.New("--anchor and --quote must be decimal odds above 1.0")
		}
		return getApp().Simulate(cmd.Context(), simulateAnchor, simulateQuote)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateAnchor, "anchor", 0, "Sharp anchor decimal price (fair)")
	simulateCmd.Flags().Float64Var(&simulateQuote, "quote", 0, "Bookmaker decimal price to evaluate")
}
