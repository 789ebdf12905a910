package odds

import "sort"

// Source identifies which anchor produced a fair price.
type Source string

const (
	SourcePinnacle     Source = "pinnacle"
	SourceBetfair      Source = "betfair"
	SourceSharpMedian  Source = "sharp_median"
	SourceInterpolated Source = "interpolated"
	SourceUnavailable  Source = "unavailable"
)

// FairPrice is the consensus fair decimal price for one selection at one
// line. When Source is SourceUnavailable no anchor data existed and
// Price/Probability are zero; consumers must branch on Source, never on
// a float comparison against zero.
type FairPrice struct {
	SportKey    string
	EventID     string
	MarketKey   string
	Selection   string
	Line        *float64
	Price       float64
	Probability float64
	Source      Source
}

// Available reports whether the estimate is backed by anchor data.
func (f FairPrice) Available() bool {
	return f.Source != SourceUnavailable && f.Price > 0
}

// Combine derives a fair price from the trusted anchors, in strict
// priority order: Pinnacle, then Betfair, then the median of the sharp
// reference prices. Median rather than mean so a single mispriced sharp
// book cannot drag the consensus. Combine never fails; with no anchor
// data at all it returns the SourceUnavailable sentinel.
func Combine(pinnacle, betfair *float64, sharps []float64) FairPrice {
	switch {
	case pinnacle != nil && *pinnacle > 0:
		return fairFromPrice(*pinnacle, SourcePinnacle)
	case betfair != nil && *betfair > 0:
		return fairFromPrice(*betfair, SourceBetfair)
	case len(sharps) > 0:
		return fairFromPrice(median(sharps), SourceSharpMedian)
	default:
		return FairPrice{Source: SourceUnavailable}
	}
}

func fairFromPrice(price float64, source Source) FairPrice {
	fair := FairPrice{Price: price, Source: source}
	if price > 0 {
		fair.Probability = 1.0 / price
	}
	return fair
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
