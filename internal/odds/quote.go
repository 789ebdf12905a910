package odds

import (
	"time"
)

// Quote is a single bookmaker price for a market selection, as observed
// in one fetch cycle. Quotes are immutable facts; they are not retained
// across cycles except through the observation ledger.
type Quote struct {
	Bookmaker  string
	SportKey   string
	EventID    string
	MarketKey  string
	Selection  string
	Line       *float64
	Price      float64
	RawPrice   string
	ObservedAt time.Time
}

// Valid reports whether the quote carries a usable decimal price.
// Decimal odds at or below 1.0 are malformed, not a negative-profit bet.
func (q Quote) Valid() bool {
	return q.Price > 1.0
}

// ImpliedProbability returns 1/price, or 0 for a malformed quote.
func (q Quote) ImpliedProbability() float64 {
	if !q.Valid() {
		return 0
	}
	return 1.0 / q.Price
}

// SelectionKey identifies the selection a quote belongs to, ignoring the
// bookmaker and the line. Sibling quotes share the same key.
type SelectionKey struct {
	SportKey  string
	EventID   string
	MarketKey string
	Selection string
}

// Key returns the selection identity of the quote.
func (q Quote) Key() SelectionKey {
	return SelectionKey{
		SportKey:  q.SportKey,
		EventID:   q.EventID,
		MarketKey: q.MarketKey,
		Selection: q.Selection,
	}
}

// GroupBySelection buckets quotes by selection identity, preserving
// input order within each bucket.
func GroupBySelection(quotes []Quote) map[SelectionKey][]Quote {
	groups := make(map[SelectionKey][]Quote)
	for _, q := range quotes {
		key := q.Key()
		groups[key] = append(groups[key], q)
	}
	return groups
}
