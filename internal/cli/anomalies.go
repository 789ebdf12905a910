package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fairline/internal/app"
)

var (
	anomaliesFrom    string
	anomaliesTo      string
	anomaliesCSVPath string
)

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Re-scan the ledger for implausible or malformed quotes",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.AnomaliesOptions{
			CSVPath: anomaliesCSVPath,
		}

		if anomaliesFrom != "" {
			from, err := time.Parse(time.RFC3339, anomaliesFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.From = &from
		}

		if anomaliesTo != "" {
			to, err := time.Parse(time.RFC3339, anomaliesTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.To = &to
		}

		return getApp().Anomalies(cmd.Context(), opts)
	},
}

func init() {
	anomaliesCmd.Flags().StringVar(&anomaliesFrom, "from", "", "Start timestamp (RFC3339, inclusive)")
	anomaliesCmd.Flags().StringVar(&anomaliesTo, "to", "", "End timestamp (RFC3339, exclusive)")
	anomaliesCmd.Flags().StringVar(&anomaliesCSVPath, "csv", "", "Path to write the anomaly report as CSV")
}
