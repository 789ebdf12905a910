package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, "app:\n  name: fairline\n"))
	if err != nil {
		t.Fatalf("load should succeed: %v", err)
	}

	if cfg.Scheduler.Interval != 10*time.Minute {
		t.Fatalf("unexpected default interval: %s", cfg.Scheduler.Interval)
	}
	if !cfg.Scheduler.AlignToBucket {
		t.Fatal("bucket alignment should default on")
	}
	if cfg.Provider.BaseURL != "https://api.the-odds-api.com/v4" {
		t.Fatalf("unexpected provider base URL: %s", cfg.Provider.BaseURL)
	}
	if cfg.Books.PinnacleKey != "pinnacle" || cfg.Books.BetfairKey != "betfair_ex_uk" {
		t.Fatalf("unexpected anchor defaults: %+v", cfg.Books)
	}
	if cfg.Scanner.MinEdgePct != 3.0 || cfg.Scanner.ExoticEdgePct != 25.0 {
		t.Fatalf("unexpected edge thresholds: %+v", cfg.Scanner)
	}
	if cfg.Scanner.MinProb != 0.40 || cfg.Scanner.KellyMultiplier != 0.25 {
		t.Fatalf("unexpected scanner defaults: %+v", cfg.Scanner)
	}
	if cfg.Anomaly.IdenticalThreshold != 5 {
		t.Fatalf("unexpected anomaly threshold: %d", cfg.Anomaly.IdenticalThreshold)
	}
	if cfg.Alerting.Enabled {
		t.Fatal("alerting should default off")
	}
}

func TestLoadFileOverrides(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, `
scheduler:
  interval: 5m
provider:
  sports:
    - basketball_nba
    - soccer_epl
books:
  display_names:
    betfair_ex_uk: Betfair Exchange
scanner:
  min_edge_pct: 2.5
`))
	if err != nil {
		t.Fatalf("load should succeed: %v", err)
	}

	if cfg.Scheduler.Interval != 5*time.Minute {
		t.Fatalf("interval override lost: %s", cfg.Scheduler.Interval)
	}
	if len(cfg.Provider.Sports) != 2 || cfg.Provider.Sports[0] != "basketball_nba" {
		t.Fatalf("sports override lost: %v", cfg.Provider.Sports)
	}
	if cfg.Scanner.MinEdgePct != 2.5 {
		t.Fatalf("edge override lost: %v", cfg.Scanner.MinEdgePct)
	}
	if got := cfg.Books.DisplayName("betfair_ex_uk"); got != "Betfair Exchange" {
		t.Fatalf("display name override lost: %s", got)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		keyword string
	}{
		{
			name:    "exotic below min edge",
			mutate:  func(c *Config) { c.Scanner.ExoticEdgePct = 2.0 },
			keyword: "exotic_edge_pct",
		},
		{
			name:    "min prob above one",
			mutate:  func(c *Config) { c.Scanner.MinProb = 1.5 },
			keyword: "min_prob",
		},
		{
			name:    "zero kelly multiplier",
			mutate:  func(c *Config) { c.Scanner.KellyMultiplier = 0 },
			keyword: "kelly_multiplier",
		},
		{
			name:    "inverted price range",
			mutate:  func(c *Config) { c.Anomaly.PriceMax = 1.0 },
			keyword: "price_max",
		},
		{
			name: "telegram enabled without token",
			mutate: func(c *Config) {
				c.Alerting.Telegram.Enabled = true
				c.Alerting.Telegram.ChatID = "chat"
			},
			keyword: "bot_token",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfigFile(t, "app:\n  name: fairline\n"))
			if err != nil {
				t.Fatalf("baseline load should succeed: %v", err)
			}
			tc.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.keyword) {
				t.Fatalf("error %q should mention %s", err, tc.keyword)
			}
		})
	}
}

func TestDisplayNamePassthrough(t *testing.T) {
	books := BooksConfig{DisplayNames: map[string]string{"pinnacle": "Pinnacle"}}
	if got := books.DisplayName("pinnacle"); got != "Pinnacle" {
		t.Fatalf("mapped key should translate, got %s", got)
	}
	if got := books.DisplayName("unibet"); got != "unibet" {
		t.Fatalf("unmapped key must pass through, got %s", got)
	}
}

func TestIsSharp(t *testing.T) {
	books := BooksConfig{SharpBooks: []string{"pinnacle", "matchbook"}}
	if !books.IsSharp("matchbook") {
		t.Fatal("matchbook should be sharp")
	}
	if books.IsSharp("softbook") {
		t.Fatal("softbook should not be sharp")
	}
}
