// Package anomaly is a diagnostic pass over already-logged quotes. It
// never gates ledger writes; raw signals are persisted first so that
// anomalies survive for audit.
package anomaly

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Reason names the first matching anomaly check for a quote.
type Reason string

const (
	ReasonIdenticalToMany Reason = "identical_to_many"
	ReasonOutOfRange      Reason = "out_of_range"
	ReasonMissing         Reason = "missing"
	ReasonNotANumber      Reason = "not_a_number"
)

// PricedQuote is the minimal shape the validator needs: selection
// identity, bookmaker, and the price exactly as the ledger recorded it.
type PricedQuote struct {
	EventID   string
	MarketKey string
	Selection string
	Bookmaker string
	RawPrice  string
}

// Report flags one quote with the reason it looked implausible.
type Report struct {
	Quote  PricedQuote
	Reason Reason
	Detail string
}

// Config carries the validator thresholds.
type Config struct {
	IdenticalThreshold int
	PriceMin           float64
	PriceMax           float64
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{IdenticalThreshold: 5, PriceMin: 1.01, PriceMax: 100.0}
}

type selectionKey struct {
	eventID   string
	marketKey string
	selection string
}

// Scan checks every quote against its siblings for the same selection.
// Checks run in a fixed order and the first match wins; quotes with no
// match are not reported. Scanning the same input twice yields the same
// reports in the same order.
func Scan(quotes []PricedQuote, cfg Config) []Report {
	if cfg.IdenticalThreshold <= 0 {
		cfg.IdenticalThreshold = 5
	}
	if cfg.PriceMax <= cfg.PriceMin {
		def := DefaultConfig()
		cfg.PriceMin, cfg.PriceMax = def.PriceMin, def.PriceMax
	}

	// Distinct bookmakers per (selection, numeric price).
	identical := make(map[selectionKey]map[float64]map[string]struct{})
	for _, q := range quotes {
		price, ok := parsePrice(q.RawPrice)
		if !ok {
			continue
		}
		key := selectionKey{q.EventID, q.MarketKey, q.Selection}
		if identical[key] == nil {
			identical[key] = make(map[float64]map[string]struct{})
		}
		if identical[key][price] == nil {
			identical[key][price] = make(map[string]struct{})
		}
		identical[key][price][q.Bookmaker] = struct{}{}
	}

	reports := make([]Report, 0)
	for _, q := range quotes {
		if report, flagged := check(q, identical, cfg); flagged {
			reports = append(reports, report)
		}
	}

	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i].Quote, reports[j].Quote
		if a.EventID != b.EventID {
			return a.EventID < b.EventID
		}
		if a.MarketKey != b.MarketKey {
			return a.MarketKey < b.MarketKey
		}
		if a.Selection != b.Selection {
			return a.Selection < b.Selection
		}
		return a.Bookmaker < b.Bookmaker
	})
	return reports
}

func check(q PricedQuote, identical map[selectionKey]map[float64]map[string]struct{}, cfg Config) (Report, bool) {
	price, parseable := parsePrice(q.RawPrice)

	if parseable {
		key := selectionKey{q.EventID, q.MarketKey, q.Selection}
		if books := identical[key][price]; len(books) > cfg.IdenticalThreshold {
			return Report{
				Quote:  q,
				Reason: ReasonIdenticalToMany,
				Detail: fmt.Sprintf("%d bookmakers quote %s", len(books), q.RawPrice),
			}, true
		}
		if price < cfg.PriceMin || price > cfg.PriceMax {
			return Report{
				Quote:  q,
				Reason: ReasonOutOfRange,
				Detail: fmt.Sprintf("price %s outside [%.2f, %.2f]", q.RawPrice, cfg.PriceMin, cfg.PriceMax),
			}, true
		}
		return Report{}, false
	}

	if strings.TrimSpace(q.RawPrice) == "" {
		return Report{Quote: q, Reason: ReasonMissing, Detail: "price field is empty"}, true
	}
	return Report{
		Quote:  q,
		Reason: ReasonNotANumber,
		Detail: fmt.Sprintf("price %q is not numeric", q.RawPrice),
	}, true
}

func parsePrice(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
