package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fairline/internal/alerting"
	"fairline/internal/config"
	"fairline/internal/fetcher"
	"fairline/internal/odds"
	"fairline/internal/scanner"
	"fairline/internal/scheduler"
	"fairline/internal/storage"
)

// Service orchestrates one scan cycle: fetch the panel per sport,
// derive fair prices, evaluate every quote, and append everything to
// the observation ledger. Cycles are sequential and independent; the
// ledger is the only state shared between them.
type Service struct {
	scheduler *scheduler.Scheduler
	fetcher   fetcher.OddsFetcher
	store     storage.LedgerStore
	notifier  alerting.Notifier
	logger    zerolog.Logger

	sports   []string
	books    config.BooksConfig
	scanCfg  scanner.Config
	channels []string
	alertsOn bool
}

// New constructs the scan service.
func New(cfg *config.Config, sched *scheduler.Scheduler, oddsFetcher fetcher.OddsFetcher, store storage.LedgerStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		scheduler: sched,
		fetcher:   oddsFetcher,
		store:     store,
		notifier:  notifier,
		logger:    logger.With().Str("component", "service").Logger(),
		sports:    cfg.Provider.Sports,
		books:     cfg.Books,
		scanCfg: scanner.Config{
			MinEdgePct:      cfg.Scanner.MinEdgePct,
			ExoticEdgePct:   cfg.Scanner.ExoticEdgePct,
			MinProb:         cfg.Scanner.MinProb,
			KellyMultiplier: cfg.Scanner.KellyMultiplier,
			Bankroll:        decimal.NewFromFloat(cfg.Scanner.Bankroll),
		},
		channels: cfg.Alerting.Channels,
		alertsOn: cfg.Alerting.Enabled,
	}
}

// Run begins the scheduled scan loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessCycle)
}

// ProcessCycle executes one full scan over every configured sport. A
// failed fetch skips that sport only; the cycle itself never fails on
// upstream or ledger errors.
func (s *Service) ProcessCycle(ctx context.Context, cycleStart time.Time) error {
	for _, sport := range s.sports {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		quotes, err := s.fetcher.FetchOdds(ctx, sport)
		if err != nil {
			s.logger.Warn().Err(err).Str("sport", sport).Msg("fetch failed; skipping sport for this cycle")
			continue
		}

		s.processBatch(ctx, cycleStart, sport, quotes)
	}
	return nil
}

type cycleStats struct {
	evaluated   int
	positive    int
	exotic      int
	unavailable int
	writeErrors int
}

func (s *Service) processBatch(ctx context.Context, cycleStart time.Time, sport string, quotes []odds.Quote) {
	stats := cycleStats{}

	for key, group := range odds.GroupBySelection(quotes) {
		anchors := collectAnchors(group, s.books)
		for _, quote := range group {
			fair := s.fairFor(quote, anchors)
			fair.SportKey = key.SportKey
			fair.EventID = key.EventID
			fair.MarketKey = key.MarketKey
			fair.Selection = key.Selection
			fair.Line = quote.Line

			opp := scanner.Evaluate(quote, fair, s.scanCfg)
			s.record(ctx, cycleStart, opp, &stats)
		}
	}

	s.logger.Info().
		Str("sport", sport).
		Int("evaluated", stats.evaluated).
		Int("positive_ev", stats.positive).
		Int("exotic", stats.exotic).
		Int("no_fair_price", stats.unavailable).
		Int("write_errors", stats.writeErrors).
		Msg("scan cycle complete")
}

func (s *Service) record(ctx context.Context, cycleStart time.Time, opp scanner.Opportunity, stats *cycleStats) {
	stats.evaluated++
	switch opp.Classification {
	case scanner.ClassPositiveEV:
		stats.positive++
	case scanner.ClassExoticOneSide:
		stats.exotic++
	case scanner.ClassNoFairPrice:
		stats.unavailable++
	}

	obs := s.toObservation(cycleStart, opp)

	if s.store != nil {
		// A failed append degrades one row, never the batch.
		if err := s.store.AppendObservation(ctx, obs); err != nil {
			stats.writeErrors++
			s.logger.Error().Err(err).
				Str("event", obs.EventID).
				Str("bookmaker", obs.Bookmaker).
				Msg("failed to append observation")
		}
		if opp.Classification == scanner.ClassExoticOneSide {
			if err := s.store.AppendExotic(ctx, obs); err != nil {
				stats.writeErrors++
				s.logger.Error().Err(err).
					Str("event", obs.EventID).
					Str("bookmaker", obs.Bookmaker).
					Msg("failed to append exotic observation")
			}
		}
	}

	if s.alertsOn && s.notifier != nil && opp.Classification == scanner.ClassPositiveEV {
		note := alerting.Notification{
			ObservedAt:     opp.Quote.ObservedAt,
			SportKey:       opp.Quote.SportKey,
			EventID:        opp.Quote.EventID,
			MarketKey:      opp.Quote.MarketKey,
			Selection:      opp.Quote.Selection,
			Bookmaker:      s.books.DisplayName(opp.Quote.Bookmaker),
			Price:          opp.Quote.Price,
			FairPrice:      opp.Fair.Price,
			EdgePct:        opp.EdgePct,
			SuggestedStake: opp.SuggestedStake,
			Channels:       s.channels,
		}
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Str("event", obs.EventID).Msg("failed to dispatch alert")
		}
	}
}

func (s *Service) toObservation(cycleStart time.Time, opp scanner.Opportunity) storage.Observation {
	quote := opp.Quote
	return storage.Observation{
		LoggedAt:       cycleStart,
		ObservedAt:     quote.ObservedAt,
		SportKey:       quote.SportKey,
		EventID:        quote.EventID,
		MarketKey:      quote.MarketKey,
		Selection:      quote.Selection,
		Line:           quote.Line,
		Bookmaker:      s.books.DisplayName(quote.Bookmaker),
		Price:          quote.RawPrice,
		FairPrice:      decimal.NewFromFloat(opp.Fair.Price),
		FairSource:     string(opp.Fair.Source),
		EdgePct:        decimal.NewFromFloat(opp.EdgePct).Round(4),
		ImpliedProb:    decimal.NewFromFloat(opp.ImpliedProb).Round(6),
		KellyFraction:  decimal.NewFromFloat(opp.KellyFraction).Round(6),
		SuggestedStake: opp.SuggestedStake,
		Classification: string(opp.Classification),
	}
}

// lineKey distinguishes "no line" from any numeric line.
type lineKey struct {
	has   bool
	value float64
}

func lineOf(q odds.Quote) lineKey {
	if q.Line == nil {
		return lineKey{}
	}
	return lineKey{has: true, value: *q.Line}
}

// lineAnchors is trusted pricing observed at one line of a selection.
type lineAnchors struct {
	pinnacle *float64
	betfair  *float64
	sharps   []float64
}

// anchorSet is every trusted price for one selection, bucketed by line.
type anchorSet struct {
	byLine map[lineKey]*lineAnchors
}

func (a anchorSet) at(key lineKey) *lineAnchors {
	anchors, ok := a.byLine[key]
	if !ok {
		anchors = &lineAnchors{}
		a.byLine[key] = anchors
	}
	return anchors
}

func collectAnchors(group []odds.Quote, books config.BooksConfig) anchorSet {
	set := anchorSet{byLine: make(map[lineKey]*lineAnchors)}
	for _, q := range group {
		if !q.Valid() {
			continue
		}

		key := lineOf(q)
		price := q.Price
		switch {
		case q.Bookmaker == books.PinnacleKey:
			anchors := set.at(key)
			if anchors.pinnacle == nil {
				anchors.pinnacle = &price
			}
			anchors.sharps = append(anchors.sharps, price)
		case q.Bookmaker == books.BetfairKey:
			anchors := set.at(key)
			if anchors.betfair == nil {
				anchors.betfair = &price
			}
			anchors.sharps = append(anchors.sharps, price)
		case books.IsSharp(q.Bookmaker):
			anchors := set.at(key)
			anchors.sharps = append(anchors.sharps, price)
		}
	}
	return set
}

// fairFor derives the fair price for one quote. An exact anchor line
// wins; otherwise the estimate is interpolated across anchor lines,
// preferring the sample-smoothed neighbor estimate when enough sharp
// samples bound the target.
func (s *Service) fairFor(quote odds.Quote, anchors anchorSet) odds.FairPrice {
	key := lineOf(quote)
	if at, ok := anchors.byLine[key]; ok {
		return odds.Combine(at.pinnacle, at.betfair, at.sharps)
	}

	if !key.has {
		return odds.FairPrice{Source: odds.SourceUnavailable}
	}

	target := key.value

	if prob := odds.NeighborProbability(anchors.probabilitySamples(), target); prob > 0 {
		return odds.FairPrice{
			Price:       1.0 / prob,
			Probability: prob,
			Source:      odds.SourceInterpolated,
		}
	}

	if price, ok := odds.InterpolateLine(anchors.linePoints(), target); ok && price > 0 {
		return odds.FairPrice{
			Price:       price,
			Probability: 1.0 / price,
			Source:      odds.SourceInterpolated,
		}
	}

	return odds.FairPrice{Source: odds.SourceUnavailable}
}

// linePoints reduces each anchored line to a single consensus price,
// usable as interpolation input.
func (a anchorSet) linePoints() []odds.LinePoint {
	points := make([]odds.LinePoint, 0, len(a.byLine))
	for key, anchors := range a.byLine {
		if !key.has {
			continue
		}
		fair := odds.Combine(anchors.pinnacle, anchors.betfair, anchors.sharps)
		if !fair.Available() {
			continue
		}
		points = append(points, odds.LinePoint{Line: key.value, Price: fair.Price})
	}
	return points
}

// probabilitySamples exposes per-line sharp implied probabilities for
// the neighbor estimator.
func (a anchorSet) probabilitySamples() map[float64][]float64 {
	samples := make(map[float64][]float64)
	for key, anchors := range a.byLine {
		if !key.has {
			continue
		}
		for _, price := range anchors.sharps {
			if price > 1 {
				samples[key.value] = append(samples[key.value], 1.0/price)
			}
		}
	}
	return samples
}
