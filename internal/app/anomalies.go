package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"fairline/internal/anomaly"
	"fairline/internal/storage"
)

// Anomalies re-scans the ledger and prints the anomaly report. The
// report is regenerated from scratch on every invocation, never
// incrementally maintained, so scanning an unchanged ledger twice
// produces identical output.
func (a *App) Anomalies(ctx context.Context, opts AnomaliesOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot scan for anomalies")
	}
	if closeStore != nil {
		defer closeStore()
	}

	observations, err := a.listWindow(ctx, store, opts.From, opts.To)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		fmt.Fprintln(os.Stdout, "no observations found")
		return nil
	}

	quotes := make([]anomaly.PricedQuote, 0, len(observations))
	for _, obs := range observations {
		quotes = append(quotes, anomaly.PricedQuote{
			EventID:   obs.EventID,
			MarketKey: obs.MarketKey,
			Selection: obs.Selection,
			Bookmaker: obs.Bookmaker,
			RawPrice:  obs.Price,
		})
	}

	reports := anomaly.Scan(quotes, anomaly.Config{
		IdenticalThreshold: a.Config.Anomaly.IdenticalThreshold,
		PriceMin:           a.Config.Anomaly.PriceMin,
		PriceMax:           a.Config.Anomaly.PriceMax,
	})

	a.Logger.Info().Int("scanned", len(quotes)).Int("flagged", len(reports)).Msg("anomaly scan complete")

	if opts.CSVPath != "" {
		if err := writeAnomalyCSV(opts.CSVPath, reports); err != nil {
			return err
		}
	}

	if len(reports) == 0 {
		fmt.Fprintln(os.Stdout, "no anomalies found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Event\tMarket\tSelection\tBookmaker\tPrice\tReason\tDetail")
	for _, report := range reports {
		q := report.Quote
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			q.EventID,
			q.MarketKey,
			sanitizeInline(q.Selection),
			q.Bookmaker,
			sanitizeInline(q.RawPrice),
			report.Reason,
			report.Detail,
		)
	}
	writer.Flush()
	return nil
}

func (a *App) listWindow(ctx context.Context, store storage.LedgerStore, fromOpt, toOpt *time.Time) ([]storage.Observation, error) {
	to := time.Now().UTC()
	if toOpt != nil {
		to = toOpt.UTC()
	}
	from := time.Time{}
	if fromOpt != nil {
		from = fromOpt.UTC()
	}
	if !from.Before(to) {
		return nil, errors.New("from must be before to")
	}
	return store.ListObservationsBetween(ctx, storage.SinkObservations, from, to)
}

func writeAnomalyCSV(path string, reports []anomaly.Report) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"event_id", "market_key", "selection", "bookmaker", "price", "reason", "detail"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, report := range reports {
		q := report.Quote
		record := []string{q.EventID, q.MarketKey, q.Selection, q.Bookmaker, q.RawPrice, string(report.Reason), report.Detail}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
