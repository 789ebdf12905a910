package scanner

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"fairline/internal/odds"
)

func testConfig() Config {
	return Config{
		MinEdgePct:      3.0,
		ExoticEdgePct:   25.0,
		MinProb:         0.40,
		KellyMultiplier: 0.25,
		Bankroll:        decimal.NewFromInt(1000),
	}
}

func fairAt(price float64) odds.FairPrice {
	return odds.FairPrice{Price: price, Probability: 1.0 / price, Source: odds.SourcePinnacle}
}

func TestEvaluateNoFairPrice(t *testing.T) {
	unavailable := odds.FairPrice{Source: odds.SourceUnavailable}
	for _, price := range []float64{1.5, 2.1, 50.0, 0.0} {
		opp := Evaluate(odds.Quote{Price: price}, unavailable, testConfig())
		if opp.Classification != ClassNoFairPrice {
			t.Fatalf("price %f: expected no_fair_price, got %s", price, opp.Classification)
		}
		if opp.EdgePct != 0 || opp.KellyFraction != 0 || !opp.SuggestedStake.IsZero() {
			t.Fatalf("price %f: sentinel evaluation must zero edge and stake", price)
		}
	}
}

func TestEvaluateMalformedQuote(t *testing.T) {
	opp := Evaluate(odds.Quote{Price: 0.8}, fairAt(2.0), testConfig())
	if opp.Classification != ClassNoFairPrice {
		t.Fatalf("malformed quote must be rejected, got %s", opp.Classification)
	}
}

func TestEvaluatePositiveEV(t *testing.T) {
	// Pinnacle 1.80 implies ~55.56%; a 2.10 quote is a clear value bet.
	opp := Evaluate(odds.Quote{Price: 2.10}, fairAt(1.80), testConfig())

	if opp.Classification != ClassPositiveEV {
		t.Fatalf("expected positive_ev, got %s", opp.Classification)
	}
	if math.Abs(opp.ImpliedProb-0.47619) > 1e-4 {
		t.Fatalf("implied prob mismatch: %f", opp.ImpliedProb)
	}
	if math.Abs(opp.EdgePct-16.6667) > 1e-2 {
		t.Fatalf("edge pct mismatch: %f", opp.EdgePct)
	}

	wantKelly := (1.0/1.80*2.10 - 1) / (2.10 - 1)
	if math.Abs(opp.KellyFraction-wantKelly) > 1e-9 {
		t.Fatalf("kelly fraction mismatch: got %f want %f", opp.KellyFraction, wantKelly)
	}

	// 0.151515 * 1000 * 0.25 rounded to cents.
	if opp.SuggestedStake.StringFixed(2) != "37.88" {
		t.Fatalf("stake mismatch: %s", opp.SuggestedStake.String())
	}
}

func TestEvaluateNormalBelowEdgeThreshold(t *testing.T) {
	opp := Evaluate(odds.Quote{Price: 2.02}, fairAt(2.0), testConfig())
	if opp.Classification != ClassNormal {
		t.Fatalf("1%% edge should be normal, got %s", opp.Classification)
	}
}

func TestEvaluateNormalBelowProbabilityFloor(t *testing.T) {
	// Edge is large but the implied probability is a long shot below the
	// configured floor.
	opp := Evaluate(odds.Quote{Price: 6.0}, fairAt(5.5), testConfig())
	if opp.Classification != ClassNormal {
		t.Fatalf("long shot below min_prob should be normal, got %s", opp.Classification)
	}
}

func TestEvaluateExoticNeverPositive(t *testing.T) {
	cfg := testConfig()
	quotes := []struct {
		price float64
		fair  float64
	}{
		{2.60, 2.0}, // 30% edge
		{3.00, 2.0}, // 50% edge
		{10.0, 4.0}, // 150% edge
	}
	for _, tc := range quotes {
		opp := Evaluate(odds.Quote{Price: tc.price}, fairAt(tc.fair), cfg)
		if opp.EdgePct < cfg.ExoticEdgePct {
			t.Fatalf("test setup: edge %f below exotic threshold", opp.EdgePct)
		}
		if opp.Classification != ClassExoticOneSide {
			t.Fatalf("edge %f must be exotic, got %s", opp.EdgePct, opp.Classification)
		}
	}
}

func TestKellyFloorsAtZero(t *testing.T) {
	// Quote below fair: negative edge, Kelly must clamp to zero.
	opp := Evaluate(odds.Quote{Price: 1.70}, fairAt(1.80), testConfig())
	if opp.KellyFraction != 0 {
		t.Fatalf("negative edge must clamp kelly to zero, got %f", opp.KellyFraction)
	}
	if !opp.SuggestedStake.IsZero() {
		t.Fatalf("no stake without an edge, got %s", opp.SuggestedStake.String())
	}
	if opp.Classification != ClassNormal {
		t.Fatalf("expected normal, got %s", opp.Classification)
	}
}

func TestClassifyThresholdBoundaries(t *testing.T) {
	cfg := testConfig()

	if got := Classify(25.0, 0.5, cfg); got != ClassExoticOneSide {
		t.Fatalf("edge at exotic threshold must be exotic, got %s", got)
	}
	if got := Classify(3.0, 0.40, cfg); got != ClassPositiveEV {
		t.Fatalf("edge and prob at thresholds must be positive_ev, got %s", got)
	}
	if got := Classify(2.99, 0.5, cfg); got != ClassNormal {
		t.Fatalf("edge below threshold must be normal, got %s", got)
	}
	if got := Classify(5.0, 0.39, cfg); got != ClassNormal {
		t.Fatalf("prob below floor must be normal, got %s", got)
	}
}
