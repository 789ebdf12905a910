package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"fairline/internal/storage"
)

// Show prints recent ledger rows.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show observations")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sink := storage.SinkObservations
	if opts.Exotic {
		sink = storage.SinkExotic
	}

	observations, err := store.ListRecentObservations(ctx, sink, opts.Limit)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		fmt.Fprintln(os.Stdout, "no observations found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Logged (UTC)\tEvent\tMarket\tSelection\tLine\tBookmaker\tPrice\tFair\tEdge%\tClass")

	for _, obs := range observations {
		line := ""
		if obs.Line != nil {
			line = fmt.Sprintf("%.1f", *obs.Line)
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			obs.LoggedAt.UTC().Format(time.RFC3339),
			obs.EventID,
			obs.MarketKey,
			sanitizeInline(obs.Selection),
			line,
			obs.Bookmaker,
			sanitizeInline(obs.Price),
			obs.FairPrice.StringFixed(3),
			obs.EdgePct.StringFixed(2),
			obs.Classification,
		)
	}

	writer.Flush()
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
