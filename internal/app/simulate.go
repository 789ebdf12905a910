package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fairline/internal/fetcher"
	"fairline/internal/odds"
	"fairline/internal/service"
)

// Simulate evaluates a synthetic quote against a given anchor price,
// running the real cycle path with a static fetcher. Useful for
// verifying thresholds and alert routing without touching the paid
// upstream feed.
func (a *App) Simulate(ctx context.Context, anchorPrice, quotePrice float64) error {
	if anchorPrice <= 1.0 {
		return fmt.Errorf("anchor price %.2f must exceed 1.0", anchorPrice)
	}
	if quotePrice <= 1.0 {
		return fmt.Errorf("quote price %.2f must exceed 1.0", quotePrice)
	}

	observedAt := time.Now().UTC()
	stub := &staticFetcher{quotes: []odds.Quote{
		{
			Bookmaker:  a.Config.Books.PinnacleKey,
			SportKey:   "simulated",
			EventID:    "simulated-event",
			MarketKey:  "h2h",
			Selection:  "Simulated Selection",
			Price:      anchorPrice,
			RawPrice:   strconv.FormatFloat(anchorPrice, 'f', -1, 64),
			ObservedAt: observedAt,
		},
		{
			Bookmaker:  "simbook",
			SportKey:   "simulated",
			EventID:    "simulated-event",
			MarketKey:  "h2h",
			Selection:  "Simulated Selection",
			Price:      quotePrice,
			RawPrice:   strconv.FormatFloat(quotePrice, 'f', -1, 64),
			ObservedAt: observedAt,
		},
	}}

	cfg := *a.Config
	cfg.Provider.Sports = []string{"simulated"}

	svc := service.New(&cfg, nil, stub, nil, a.newNotifier(), a.Logger)
	return svc.ProcessCycle(ctx, observedAt)
}

type staticFetcher struct {
	quotes []odds.Quote
}

func (s *staticFetcher) FetchOdds(ctx context.Context, sportKey string) ([]odds.Quote, error) {
	return s.quotes, nil
}

var _ fetcher.OddsFetcher = (*staticFetcher)(nil)
