package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"fairline/internal/odds"
	"fairline/internal/scanner"
)

// Replay re-reads the ledger and re-runs the classification policy with
// overridden thresholds, without touching the upstream feed or writing
// new rows. This is how threshold tuning works against history: the
// ledger logs every evaluation, so re-analysis is a pure read.
func (a *App) Replay(ctx context.Context, opts ReplayOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot replay")
	}
	if closeStore != nil {
		defer closeStore()
	}

	cfg := scanner.Config{
		MinEdgePct:    a.Config.Scanner.MinEdgePct,
		ExoticEdgePct: a.Config.Scanner.ExoticEdgePct,
		MinProb:       a.Config.Scanner.MinProb,
	}
	if opts.MinEdgePct > 0 {
		cfg.MinEdgePct = opts.MinEdgePct
	}
	if opts.ExoticEdgePct > 0 {
		cfg.ExoticEdgePct = opts.ExoticEdgePct
	}
	if opts.MinProb > 0 {
		cfg.MinProb = opts.MinProb
	}
	if cfg.ExoticEdgePct <= cfg.MinEdgePct {
		return fmt.Errorf("exotic edge threshold %.2f must exceed min edge %.2f", cfg.ExoticEdgePct, cfg.MinEdgePct)
	}

	observations, err := a.listWindow(ctx, store, opts.From, opts.To)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		fmt.Fprintln(os.Stdout, "no observations found")
		return nil
	}

	counts := make(map[scanner.Classification]int)
	reclassified := 0
	for _, obs := range observations {
		var class scanner.Classification
		if obs.FairSource == string(odds.SourceUnavailable) || obs.FairSource == "" {
			class = scanner.ClassNoFairPrice
		} else {
			edgePct, _ := obs.EdgePct.Float64()
			impliedProb, _ := obs.ImpliedProb.Float64()
			class = scanner.Classify(edgePct, impliedProb, cfg)
		}
		counts[class]++
		if string(class) != obs.Classification {
			reclassified++
		}
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Classification\tCount")
	for _, class := range []scanner.Classification{
		scanner.ClassPositiveEV,
		scanner.ClassExoticOneSide,
		scanner.ClassNormal,
		scanner.ClassNoFairPrice,
	} {
		fmt.Fprintf(writer, "%s\t%d\n", class, counts[class])
	}
	writer.Flush()

	a.Logger.Info().
		Int("rows", len(observations)).
		Int("reclassified", reclassified).
		Float64("min_edge_pct", cfg.MinEdgePct).
		Float64("exotic_edge_pct", cfg.ExoticEdgePct).
		Float64("min_prob", cfg.MinProb).
		Msg("replay complete")
	return nil
}
