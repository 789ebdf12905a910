package scanner

import (
	"math"

	"github.com/shopspring/decimal"

	"fairline/internal/odds"
)

// Classification buckets one quote evaluation.
type Classification string

const (
	ClassNormal        Classification = "normal"
	ClassPositiveEV    Classification = "positive_ev"
	ClassExoticOneSide Classification = "exotic_onesided"
	ClassNoFairPrice   Classification = "no_fair_price"
)

// Config carries the scanner thresholds. All of these come from runtime
// configuration so that cycles and replays can run with independent
// settings.
type Config struct {
	MinEdgePct      float64
	ExoticEdgePct   float64
	MinProb         float64
	KellyMultiplier float64
	Bankroll        decimal.Decimal
}

// Opportunity is one evaluation of a single quote against its fair
// price estimate. Created once per quote per cycle and never mutated.
type Opportunity struct {
	Quote          odds.Quote
	Fair           odds.FairPrice
	EdgePct        float64
	ImpliedProb    float64
	KellyFraction  float64
	SuggestedStake decimal.Decimal
	Classification Classification
}

// Evaluate compares a quote against its fair estimate, computing edge,
// Kelly fraction, and suggested stake, and classifying the result. It
// never fails: a missing fair price or a malformed quote yields the
// no-fair-price classification with zeroed figures.
func Evaluate(quote odds.Quote, fair odds.FairPrice, cfg Config) Opportunity {
	opp := Opportunity{
		Quote:          quote,
		Fair:           fair,
		SuggestedStake: decimal.Zero,
		Classification: ClassNoFairPrice,
	}

	if !fair.Available() || !quote.Valid() {
		return opp
	}

	opp.ImpliedProb = quote.ImpliedProbability()

	// Expected net return per unit stake, assuming the fair probability
	// is correct.
	edge := fair.Probability*quote.Price - 1
	opp.EdgePct = edge * 100

	opp.KellyFraction = kellyFraction(fair.Probability, quote.Price)
	opp.SuggestedStake = stakeFor(opp.KellyFraction, cfg)
	opp.Classification = Classify(opp.EdgePct, opp.ImpliedProb, cfg)
	return opp
}

// kellyFraction returns the full-Kelly stake fraction, floored at zero.
func kellyFraction(fairProb, price float64) float64 {
	if price <= 1 {
		return 0
	}
	return math.Max(0, (fairProb*price-1)/(price-1))
}

func stakeFor(kelly float64, cfg Config) decimal.Decimal {
	if kelly <= 0 || cfg.Bankroll.IsZero() {
		return decimal.Zero
	}
	stake := cfg.Bankroll.
		Mul(decimal.NewFromFloat(kelly)).
		Mul(decimal.NewFromFloat(cfg.KellyMultiplier))
	return stake.Round(2)
}

// Classify applies the threshold policy to an already-computed edge.
// Edges at or above the exotic threshold are far more likely to be feed
// errors than genuine value, so they are routed to the exotic bucket
// instead of positive EV. Exported separately so ledger replays can
// re-run the policy with different thresholds.
func Classify(edgePct, impliedProb float64, cfg Config) Classification {
	if edgePct >= cfg.ExoticEdgePct {
		return ClassExoticOneSide
	}
	if edgePct >= cfg.MinEdgePct && impliedProb >= cfg.MinProb {
		return ClassPositiveEV
	}
	return ClassNormal
}
