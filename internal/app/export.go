package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"fairline/internal/storage"
)

// Export renders ledger history as CSV and/or a PNG edge chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	observations, err := a.listWindow(ctx, store, opts.From, opts.To)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		a.Logger.Info().Msg("no observations found for export window")
		return nil
	}

	downsampled := downsampleObservations(observations, opts.MaxPoints)
	a.Logger.Info().Int("total", len(observations)).Int("exported", len(downsampled)).Msg("exporting observations")

	if opts.CSVPath != "" {
		if err := writeObservationsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeEdgePNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleObservations(observations []storage.Observation, max int) []storage.Observation {
	if max <= 0 || len(observations) <= max {
		return observations
	}

	result := make([]storage.Observation, 0, max)
	step := float64(len(observations)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(observations) {
			idx = len(observations) - 1
		}
		result = append(result, observations[idx])
	}
	return result
}

func writeObservationsCSV(path string, observations []storage.Observation) error {
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

	header := []string{
		"logged_at", "observed_at", "sport_key", "event_id", "market_key", "selection",
		"line", "bookmaker", "price", "fair_price", "fair_source",
		"edge_pct", "implied_prob", "kelly_fraction", "suggested_stake", "classification",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, obs := range observations {
		line := ""
		if obs.Line != nil {
			line = fmt.Sprintf("%g", *obs.Line)
		}
		record := []string{
			obs.LoggedAt.Format(time.RFC3339),
			obs.ObservedAt.Format(time.RFC3339),
			obs.SportKey,
			obs.EventID,
			obs.MarketKey,
			obs.Selection,
			line,
			obs.Bookmaker,
			obs.Price,
			obs.FairPrice.String(),
			obs.FairSource,
			obs.EdgePct.String(),
			obs.ImpliedProb.String(),
			obs.KellyFraction.String(),
			obs.SuggestedStake.String(),
			obs.Classification,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeEdgePNG(path string, observations []storage.Observation) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(observations))
	edge := make([]float64, len(observations))
	implied := make([]float64, len(observations))

	for i, obs := range observations {
		x[i] = obs.LoggedAt
		edge[i] = obs.EdgePct.InexactFloat64()
		implied[i] = obs.ImpliedProb.InexactFloat64() * 100
	}

	pctFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Edge (%)",
			ValueFormatter: pctFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Implied probability (%)",
			ValueFormatter: pctFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Edge %",
				XValues: x,
				YValues: edge,
			},
			chart.TimeSeries{
				Name:    "Implied prob %",
				XValues: x,
				YValues: implied,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}
