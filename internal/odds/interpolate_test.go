package odds

import (
	"math"
	"testing"
)

func TestInterpolateLineMidpoint(t *testing.T) {
	points := []LinePoint{{Line: 1.0, Price: 1.9}, {Line: 2.0, Price: 2.1}}
	price, ok := InterpolateLine(points, 1.5)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if math.Abs(price-2.0) > 1e-9 {
		t.Fatalf("expected midpoint 2.0, got %f", price)
	}
}

func TestInterpolateLineSinglePoint(t *testing.T) {
	points := []LinePoint{{Line: 1.0, Price: 1.9}}
	if _, ok := InterpolateLine(points, 1.5); ok {
		t.Fatal("fewer than 2 distinct points must yield no estimate")
	}
}

func TestInterpolateLineDuplicateLinesCollapse(t *testing.T) {
	points := []LinePoint{
		{Line: 1.0, Price: 1.8},
		{Line: 1.0, Price: 2.0},
	}
	if _, ok := InterpolateLine(points, 1.5); ok {
		t.Fatal("one distinct line must yield no estimate")
	}

	points = append(points, LinePoint{Line: 2.0, Price: 2.1})
	price, ok := InterpolateLine(points, 1.0)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if math.Abs(price-1.9) > 1e-9 {
		t.Fatalf("duplicate lines should average to 1.9, got %f", price)
	}
}

func TestInterpolateLineExtrapolation(t *testing.T) {
	points := []LinePoint{{Line: 1.0, Price: 1.9}, {Line: 2.0, Price: 2.1}}

	price, ok := InterpolateLine(points, 3.0)
	if !ok {
		t.Fatal("expected an extrapolated estimate")
	}
	if math.Abs(price-2.3) > 1e-9 {
		t.Fatalf("expected 2.3 above the range, got %f", price)
	}

	price, ok = InterpolateLine(points, 0.0)
	if !ok {
		t.Fatal("expected an extrapolated estimate")
	}
	if math.Abs(price-1.7) > 1e-9 {
		t.Fatalf("expected 1.7 below the range, got %f", price)
	}
}

func TestInterpolateLineUnsortedInput(t *testing.T) {
	points := []LinePoint{
		{Line: 3.0, Price: 2.5},
		{Line: 1.0, Price: 1.9},
		{Line: 2.0, Price: 2.1},
	}
	price, ok := InterpolateLine(points, 2.5)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if math.Abs(price-2.3) > 1e-9 {
		t.Fatalf("expected 2.3 between lines 2 and 3, got %f", price)
	}
}

func TestNeighborProbabilitySmoothing(t *testing.T) {
	samples := map[float64][]float64{
		1.0: {0.4, 0.42, 0.41},
		2.0: {0.6, 0.62, 0.61},
	}
	prob := NeighborProbability(samples, 1.5)
	if prob <= 0 || prob >= 1 {
		t.Fatalf("expected probability strictly between 0 and 1, got %f", prob)
	}
	if math.Abs(prob-0.51) > 1e-9 {
		t.Fatalf("expected blended probability 0.51, got %f", prob)
	}
}

func TestNeighborProbabilityWeighting(t *testing.T) {
	samples := map[float64][]float64{
		1.0: {0.4, 0.4},
		3.0: {0.6, 0.6},
	}
	prob := NeighborProbability(samples, 1.5)
	// 1.5 is three times closer to line 1.0 than to line 3.0.
	if math.Abs(prob-0.45) > 1e-9 {
		t.Fatalf("expected 0.45, got %f", prob)
	}
}

func TestNeighborProbabilityInsufficientSamples(t *testing.T) {
	samples := map[float64][]float64{
		1.0: {0.4},
		2.0: {0.6, 0.6, 0.6},
	}
	if prob := NeighborProbability(samples, 1.5); prob != 0 {
		t.Fatalf("one sample on a side must yield the no-estimate sentinel, got %f", prob)
	}
}

func TestNeighborProbabilityUnbounded(t *testing.T) {
	samples := map[float64][]float64{
		1.0: {0.4, 0.42},
		2.0: {0.6, 0.62},
	}
	if prob := NeighborProbability(samples, 2.5); prob != 0 {
		t.Fatalf("target outside the observed lines must yield 0, got %f", prob)
	}
}

func TestNeighborProbabilityExactLine(t *testing.T) {
	samples := map[float64][]float64{
		1.0: {0.4, 0.42},
		2.0: {0.6, 0.62},
	}
	prob := NeighborProbability(samples, 2.0)
	if math.Abs(prob-0.61) > 1e-9 {
		t.Fatalf("target on a sampled line should return its average, got %f", prob)
	}
}
