package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification carries the context of one value-bet alert.
type Notification struct {
	ObservedAt     time.Time
	SportKey       string
	EventID        string
	MarketKey      string
	Selection      string
	Bookmaker      string
	Price          float64
	FairPrice      float64
	EdgePct        float64
	SuggestedStake decimal.Decimal
	Channels       []string
}

// Notifier delivers value-bet alerts.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify sends the rendered alert via the sendMessage API.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram responded %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().
		Str("event", note.EventID).
		Str("selection", note.Selection).
		Str("bookmaker", note.Bookmaker).
		Str("channels", strings.Join(note.Channels, ",")).
		Msg("value bet alert sent (telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Value Bet]\n")
	builder.WriteString(fmt.Sprintf("Sport: %s\n", note.SportKey))
	builder.WriteString(fmt.Sprintf("Event: %s / %s\n", note.EventID, note.MarketKey))
	builder.WriteString(fmt.Sprintf("Selection: %s @ %s\n", note.Selection, note.Bookmaker))
	builder.WriteString(fmt.Sprintf("Price: %.2f (fair %.2f)\n", note.Price, note.FairPrice))
	builder.WriteString(fmt.Sprintf("Edge: %.2f%%\n", note.EdgePct))
	if !note.SuggestedStake.IsZero() {
		builder.WriteString(fmt.Sprintf("Stake: %s\n", note.SuggestedStake.StringFixed(2)))
	}
	builder.WriteString(fmt.Sprintf("Observed: %s UTC\n", note.ObservedAt.UTC().Format(time.RFC3339)))
	return builder.String()
}
