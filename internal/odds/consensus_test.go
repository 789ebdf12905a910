package odds

import (
	"math"
	"testing"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestCombinePinnaclePriority(t *testing.T) {
	fair := Combine(floatPtr(2.0), nil, nil)
	if fair.Source != SourcePinnacle {
		t.Fatalf("expected pinnacle source, got %s", fair.Source)
	}
	if fair.Price != 2.0 {
		t.Fatalf("expected fair price 2.0, got %f", fair.Price)
	}
	if math.Abs(fair.Probability-0.5) > 1e-9 {
		t.Fatalf("expected probability 0.5, got %f", fair.Probability)
	}
}

func TestCombinePinnacleOverridesBetfair(t *testing.T) {
	fair := Combine(floatPtr(2.0), floatPtr(2.5), []float64{3.0})
	if fair.Source != SourcePinnacle {
		t.Fatalf("pinnacle must win over betfair, got %s", fair.Source)
	}
	if fair.Price != 2.0 {
		t.Fatalf("expected 2.0, got %f", fair.Price)
	}
}

func TestCombineBetfairFallback(t *testing.T) {
	fair := Combine(nil, floatPtr(1.9), []float64{3.0})
	if fair.Source != SourceBetfair {
		t.Fatalf("expected betfair source, got %s", fair.Source)
	}
	if fair.Price != 1.9 {
		t.Fatalf("expected 1.9, got %f", fair.Price)
	}
}

func TestCombineSharpMedian(t *testing.T) {
	fair := Combine(nil, nil, []float64{1.25, 1.25})
	if fair.Source != SourceSharpMedian {
		t.Fatalf("expected sharp median source, got %s", fair.Source)
	}
	if fair.Price != 1.25 {
		t.Fatalf("expected 1.25, got %f", fair.Price)
	}
}

func TestCombineMedianResistsOutlier(t *testing.T) {
	fair := Combine(nil, nil, []float64{1.9, 1.92, 25.0})
	if fair.Price != 1.92 {
		t.Fatalf("median should ignore the outlier, got %f", fair.Price)
	}
}

func TestCombineEvenMedian(t *testing.T) {
	fair := Combine(nil, nil, []float64{1.8, 2.2})
	if math.Abs(fair.Price-2.0) > 1e-9 {
		t.Fatalf("expected midpoint 2.0, got %f", fair.Price)
	}
}

func TestCombineUnavailable(t *testing.T) {
	fair := Combine(nil, nil, nil)
	if fair.Source != SourceUnavailable {
		t.Fatalf("expected unavailable source, got %s", fair.Source)
	}
	if fair.Price != 0 || fair.Probability != 0 {
		t.Fatalf("unavailable estimate must be zeroed, got %f/%f", fair.Price, fair.Probability)
	}
	if fair.Available() {
		t.Fatal("unavailable estimate must not report available")
	}
}

func TestQuoteValidity(t *testing.T) {
	valid := Quote{Price: 2.1}
	if !valid.Valid() {
		t.Fatal("price 2.1 should be valid")
	}
	if math.Abs(valid.ImpliedProbability()-1.0/2.1) > 1e-9 {
		t.Fatalf("implied probability mismatch: %f", valid.ImpliedProbability())
	}

	for _, price := range []float64{0, 1.0, -2.0, 0.95} {
		q := Quote{Price: price}
		if q.Valid() {
			t.Fatalf("price %f should be invalid", price)
		}
		if q.ImpliedProbability() != 0 {
			t.Fatalf("invalid quote must have zero implied probability, got %f", q.ImpliedProbability())
		}
	}
}

func TestGroupBySelection(t *testing.T) {
	quotes := []Quote{
		{Bookmaker: "a", EventID: "e1", MarketKey: "h2h", Selection: "Home"},
		{Bookmaker: "b", EventID: "e1", MarketKey: "h2h", Selection: "Home"},
		{Bookmaker: "a", EventID: "e1", MarketKey: "h2h", Selection: "Away"},
	}

	groups := GroupBySelection(quotes)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	home := groups[quotes[0].Key()]
	if len(home) != 2 {
		t.Fatalf("expected 2 home quotes, got %d", len(home))
	}
	if home[0].Bookmaker != "a" || home[1].Bookmaker != "b" {
		t.Fatal("input order must be preserved within a group")
	}
}
