package fetcher

import (
	"context"

	"fairline/internal/odds"
)

// OddsFetcher retrieves the full bookmaker panel for one sport. The
// upstream provider is rate limited and billed per call; callers treat
// it as an opaque batch source that either returns quotes or fails
// outright for that sport.
type OddsFetcher interface {
	FetchOdds(ctx context.Context, sportKey string) ([]odds.Quote, error)
}
