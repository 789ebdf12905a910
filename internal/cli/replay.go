package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fairline/internal/app"
)

var (
	replayFrom       string
	replayTo         string
	replayMinEdge    float64
	replayExoticEdge float64
	replayMinProb    float64
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-classify logged observations with different thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ReplayOptions{
			MinEdgePct:    replayMinEdge,
			ExoticEdgePct: replayExoticEdge,
			MinProb:       replayMinProb,
		}

		if replayFrom != "" {
			from, err := time.Parse(time.RFC3339, replayFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.From = &from
		}

		if replayTo != "" {
			to, err := time.Parse(time.RFC3339, replayTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.To = &to
		}

		return getApp().Replay(cmd.Context(), opts)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayFrom, "from", "", "Start timestamp (RFC3339, inclusive)")
	replayCmd.Flags().StringVar(&replayTo, "to", "", "End timestamp (RFC3339, exclusive)")
	replayCmd.Flags().Float64Var(&replayMinEdge, "min-edge", 0, "Override scanner.min_edge_pct")
	replayCmd.Flags().Float64Var(&replayExoticEdge, "exotic-edge", 0, "Override scanner.exotic_edge_pct")
	replayCmd.Flags().Float64Var(&replayMinProb, "min-prob", 0, "Override scanner.min_prob")
}
