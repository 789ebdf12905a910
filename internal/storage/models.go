package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is the persisted form of one quote evaluation. The ledger
// is append-only: rows are written once and never updated or deleted by
// this service, and re-running a cycle appends new rows rather than
// suppressing duplicates.
type Observation struct {
	ID             int64
	LoggedAt       time.Time
	ObservedAt     time.Time
	SportKey       string
	EventID        string
	MarketKey      string
	Selection      string
	Line           *float64
	Bookmaker      string
	Price          string
	FairPrice      decimal.Decimal
	FairSource     string
	EdgePct        decimal.Decimal
	ImpliedProb    decimal.Decimal
	KellyFraction  decimal.Decimal
	SuggestedStake decimal.Decimal
	Classification string
}

// Sink selects which ledger table an operation targets.
type Sink string

const (
	// SinkObservations is the primary ledger holding every evaluation.
	SinkObservations Sink = "observations"
	// SinkExotic holds only the one-sided/exotic classifications routed
	// to separate review.
	SinkExotic Sink = "exotic_observations"
)
