package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func sampleNotification() Notification {
	return Notification{
		ObservedAt:     time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC),
		SportKey:       "soccer_epl",
		EventID:        "evt42",
		MarketKey:      "h2h",
		Selection:      "Arsenal",
		Bookmaker:      "Soft Book",
		Price:          2.10,
		FairPrice:      1.80,
		EdgePct:        16.67,
		SuggestedStake: decimal.RequireFromString("37.88"),
		Channels:       []string{"telegram"},
	}
}

func TestTelegramNotifySuccess(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	notifier := NewTelegramNotifier("bot-token", "chat-1", server.URL, time.Second, zerolog.Nop())
	if err := notifier.Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("notify should succeed: %v", err)
	}

	if gotPath != "/botbot-token/sendMessage" {
		t.Fatalf("unexpected request path: %s", gotPath)
	}
	if gotPayload["chat_id"] != "chat-1" {
		t.Fatalf("unexpected chat_id: %s", gotPayload["chat_id"])
	}

	text := gotPayload["text"]
	for _, want := range []string{
		"[Value Bet]",
		"Selection: Arsenal @ Soft Book",
		"Price: 2.10 (fair 1.80)",
		"Edge: 16.67%",
		"Stake: 37.88",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("message missing %q:\n%s", want, text)
		}
	}
}

func TestTelegramNotifyOmitsZeroStake(t *testing.T) {
	var gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			gotText = payload["text"]
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	note := sampleNotification()
	note.SuggestedStake = decimal.Zero

	notifier := NewTelegramNotifier("tok", "chat", server.URL, time.Second, zerolog.Nop())
	if err := notifier.Notify(context.Background(), note); err != nil {
		t.Fatalf("notify should succeed: %v", err)
	}
	if strings.Contains(gotText, "Stake:") {
		t.Fatalf("zero stake must not be rendered:\n%s", gotText)
	}
}

func TestTelegramNotifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewTelegramNotifier("tok", "chat", server.URL, time.Second, zerolog.Nop())
	err := notifier.Notify(context.Background(), sampleNotification())
	if err == nil {
		t.Fatal("a 5xx response must surface as an error")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("error should carry the status code, got: %v", err)
	}
}

func TestTelegramNotifyAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false}`))
	}))
	defer server.Close()

	notifier := NewTelegramNotifier("tok", "chat", server.URL, time.Second, zerolog.Nop())
	if err := notifier.Notify(context.Background(), sampleNotification()); err == nil {
		t.Fatal("ok=false must surface as an error")
	}
}
