package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fairline/internal/app"
)

var (
	showLimit  int
	showExotic bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent ledger observations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Limit:  showLimit,
			Exotic: showExotic,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of observations to display")
	showCmd.Flags().BoolVar(&showExotic, "exotic", false, "Read the exotic/one-sided sink instead of the primary ledger")
}
