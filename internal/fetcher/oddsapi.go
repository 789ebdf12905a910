package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fairline/internal/odds"
)

// Options parameterise the odds provider client.
type Options struct {
	BaseURL   string
	APIKey    string
	Regions   string
	Markets   []string
	Timeout   time.Duration
	UserAgent string
}

// Client fetches decimal odds from a The-Odds-API shaped provider.
type Client struct {
	opts    Options
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewClient constructs an odds provider client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.the-odds-api.com/v4"
	}

	return &Client{
		opts:    opts,
		logger:  logger.With().Str("component", "odds_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// rawPrice captures the provider's price field verbatim so that blank
// or non-numeric values survive into the ledger instead of failing the
// whole batch decode.
type rawPrice struct {
	text string
}

func (p *rawPrice) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		text = ""
	}
	text = strings.Trim(text, `"`)
	p.text = text
	return nil
}

type eventResponse struct {
	ID           string              `json:"id"`
	SportKey     string              `json:"sport_key"`
	CommenceTime time.Time           `json:"commence_time"`
	Bookmakers   []bookmakerResponse `json:"bookmakers"`
}

type bookmakerResponse struct {
	Key        string           `json:"key"`
	LastUpdate time.Time        `json:"last_update"`
	Markets    []marketResponse `json:"markets"`
}

type marketResponse struct {
	Key      string            `json:"key"`
	Outcomes []outcomeResponse `json:"outcomes"`
}

type outcomeResponse struct {
	Name  string   `json:"name"`
	Price rawPrice `json:"price"`
	Point *float64 `json:"point"`
}

// FetchOdds retrieves the current odds snapshot for one sport and maps
// it onto the quote model. Outcomes with malformed prices are kept with
// a zero decimal price and the raw text preserved.
func (c *Client) FetchOdds(ctx context.Context, sportKey string) ([]odds.Quote, error) {
	if c.opts.APIKey == "" {
		return nil, errors.New("provider api key required")
	}

	endpoint := fmt.Sprintf("%s/sports/%s/odds", c.baseURL, url.PathEscape(sportKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	query := req.URL.Query()
	query.Set("apiKey", c.opts.APIKey)
	query.Set("oddsFormat", "decimal")
	if c.opts.Regions != "" {
		query.Set("regions", c.opts.Regions)
	}
	if len(c.opts.Markets) > 0 {
		query.Set("markets", strings.Join(c.opts.Markets, ","))
	}
	req.URL.RawQuery = query.Encode()

	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}

	var events []eventResponse
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, fmt.Errorf("decode odds payload: %w", err)
	}

	quotes := mapQuotes(sportKey, events)
	c.logger.Debug().
		Str("sport", sportKey).
		Int("events", len(events)).
		Int("quotes", len(quotes)).
		Msg("odds snapshot fetched")
	return quotes, nil
}

func mapQuotes(sportKey string, events []eventResponse) []odds.Quote {
	quotes := make([]odds.Quote, 0)
	for _, event := range events {
		eventSport := event.SportKey
		if eventSport == "" {
			eventSport = sportKey
		}
		for _, book := range event.Bookmakers {
			observedAt := book.LastUpdate
			if observedAt.IsZero() {
				observedAt = time.Now().UTC()
			}
			for _, market := range book.Markets {
				for _, outcome := range market.Outcomes {
					quote := odds.Quote{
						Bookmaker:  book.Key,
						SportKey:   eventSport,
						EventID:    event.ID,
						MarketKey:  market.Key,
						Selection:  outcome.Name,
						Line:       outcome.Point,
						RawPrice:   outcome.Price.text,
						ObservedAt: observedAt,
					}
					if price, err := strconv.ParseFloat(outcome.Price.text, 64); err == nil {
						quote.Price = price
					}
					quotes = append(quotes, quote)
				}
			}
		}
	}
	return quotes
}

func parseHTTPError(status int, payload []byte) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Message != "" {
		return fmt.Errorf("provider responded %d: %s", status, body.Message)
	}
	return fmt.Errorf("provider responded %d", status)
}
