package odds

import "sort"

// LinePoint pairs a market line with an anchor decimal price at that line.
type LinePoint struct {
	Line  float64
	Price float64
}

// InterpolateLine estimates a fair price at target from anchor prices
// quoted at other lines. Interpolation is linear in price space; outside
// the observed range the nearest two points are extrapolated, which is a
// known approximation rather than a guaranteed fair value. Points that
// repeat a line are collapsed by averaging. Fewer than two distinct
// lines yields no estimate.
func InterpolateLine(points []LinePoint, target float64) (float64, bool) {
	byLine := make(map[float64][]float64)
	for _, p := range points {
		byLine[p.Line] = append(byLine[p.Line], p.Price)
	}
	if len(byLine) < 2 {
		return 0, false
	}

	collapsed := make([]LinePoint, 0, len(byLine))
	for line, prices := range byLine {
		collapsed = append(collapsed, LinePoint{Line: line, Price: mean(prices)})
	}
	sort.Slice(collapsed, func(i, j int) bool { return collapsed[i].Line < collapsed[j].Line })

	lo, hi := segmentFor(collapsed, target)
	return lerp(lo.Line, lo.Price, hi.Line, hi.Price, target), true
}

// segmentFor picks the pair of points bracketing target, or the nearest
// edge pair when target falls outside the observed range.
func segmentFor(points []LinePoint, target float64) (LinePoint, LinePoint) {
	for i := 0; i < len(points)-1; i++ {
		if target >= points[i].Line && target <= points[i+1].Line {
			return points[i], points[i+1]
		}
	}
	if target < points[0].Line {
		return points[0], points[1]
	}
	return points[len(points)-2], points[len(points)-1]
}

func lerp(x0, y0, x1, y1, x float64) float64 {
	if x1 == x0 {
		return y0
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// minNeighborSamples is the per-line sample floor for NeighborProbability.
const minNeighborSamples = 2

// NeighborProbability smooths independent probability samples quoted at
// multiple lines into an estimate at target. It requires a line at or
// below target and a line at or above it, each carrying at least two
// samples; when that does not hold it returns 0, which callers must read
// as "no estimate", never as a genuine zero probability. The sample
// averages at the two nearest bounding lines are blended linearly by the
// distance of target to each line.
func NeighborProbability(samples map[float64][]float64, target float64) float64 {
	var (
		lower, upper      float64
		haveLower, haveUp bool
	)
	for line := range samples {
		if line <= target && (!haveLower || line > lower) {
			lower, haveLower = line, true
		}
		if line >= target && (!haveUp || line < upper) {
			upper, haveUp = line, true
		}
	}
	if !haveLower || !haveUp {
		return 0
	}
	if len(samples[lower]) < minNeighborSamples || len(samples[upper]) < minNeighborSamples {
		return 0
	}

	lowerAvg := mean(samples[lower])
	upperAvg := mean(samples[upper])
	if lower == upper {
		return lowerAvg
	}

	// Inverse-distance weighting: the closer line contributes more.
	weightUpper := (target - lower) / (upper - lower)
	return lowerAvg*(1-weightUpper) + upperAvg*weightUpper
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
