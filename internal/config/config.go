package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"fairline/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Books     BooksConfig     `mapstructure:"books"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Anomaly   AnomalyConfig   `mapstructure:"anomaly"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for the ledger.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SchedulerConfig governs scan cadence.
type SchedulerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// ProviderConfig covers the upstream odds feed. The provider is paid
// and rate limited, so sports and regions are explicit opt-ins.
type ProviderConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Sports         []string      `mapstructure:"sports"`
	Regions        string        `mapstructure:"regions"`
	Markets        []string      `mapstructure:"markets"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// BooksConfig designates the trusted anchors and the display-name
// remapping applied when writing ledger rows. Keys absent from
// DisplayNames pass through unchanged.
type BooksConfig struct {
	PinnacleKey  string            `mapstructure:"pinnacle_key"`
	BetfairKey   string            `mapstructure:"betfair_key"`
	SharpBooks   []string          `mapstructure:"sharp_books"`
	DisplayNames map[string]string `mapstructure:"display_names"`
}

// ScannerConfig holds the EV/Kelly thresholds.
type ScannerConfig struct {
	MinEdgePct      float64 `mapstructure:"min_edge_pct"`
	ExoticEdgePct   float64 `mapstructure:"exotic_edge_pct"`
	MinProb         float64 `mapstructure:"min_prob"`
	KellyMultiplier float64 `mapstructure:"kelly_multiplier"`
	Bankroll        float64 `mapstructure:"bankroll"`
}

// AnomalyConfig holds the validator thresholds.
type AnomalyConfig struct {
	IdenticalThreshold int     `mapstructure:"identical_threshold"`
	PriceMin           float64 `mapstructure:"price_min"`
	PriceMax           float64 `mapstructure:"price_max"`
}

// AlertingConfig defines value-bet alert routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Channels []string       `mapstructure:"channels"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram alert channel.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FAIRLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "fairline")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.interval", "10m")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("provider.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("provider.sports", []string{"soccer_epl"})
	v.SetDefault("provider.regions", "eu,uk")
	v.SetDefault("provider.markets", []string{"h2h", "totals"})
	v.SetDefault("provider.request_timeout", "10s")
	v.SetDefault("provider.user_agent", "fairline/1.0")

	v.SetDefault("books.pinnacle_key", "pinnacle")
	v.SetDefault("books.betfair_key", "betfair_ex_uk")
	v.SetDefault("books.sharp_books", []string{"pinnacle", "betfair_ex_uk", "matchbook", "betonlineag"})

	v.SetDefault("scanner.min_edge_pct", 3.0)
	v.SetDefault("scanner.exotic_edge_pct", 25.0)
	v.SetDefault("scanner.min_prob", 0.40)
	v.SetDefault("scanner.kelly_multiplier", 0.25)
	v.SetDefault("scanner.bankroll", 1000.0)

	v.SetDefault("anomaly.identical_threshold", 5)
	v.SetDefault("anomaly.price_min", 1.01)
	v.SetDefault("anomaly.price_max", 100.0)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Scanner.ExoticEdgePct <= c.Scanner.MinEdgePct {
		return fmt.Errorf("scanner.exotic_edge_pct must exceed scanner.min_edge_pct")
	}
	if c.Scanner.MinProb < 0 || c.Scanner.MinProb > 1 {
		return fmt.Errorf("scanner.min_prob must be within [0, 1]")
	}
	if c.Scanner.KellyMultiplier <= 0 || c.Scanner.KellyMultiplier > 1 {
		return fmt.Errorf("scanner.kelly_multiplier must be within (0, 1]")
	}
	if c.Scanner.Bankroll < 0 {
		return fmt.Errorf("scanner.bankroll cannot be negative")
	}
	if c.Anomaly.IdenticalThreshold <= 0 {
		return fmt.Errorf("anomaly.identical_threshold must be greater than zero")
	}
	if c.Anomaly.PriceMax <= c.Anomaly.PriceMin {
		return fmt.Errorf("anomaly.price_max must exceed anomaly.price_min")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required when telegram is enabled")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}

// DisplayName translates an internal bookmaker key to its display
// name; unknown keys pass through unchanged.
func (c *BooksConfig) DisplayName(key string) string {
	if name, ok := c.DisplayNames[key]; ok && name != "" {
		return name
	}
	return key
}

// IsSharp reports whether a bookmaker key is a designated sharp anchor.
func (c *BooksConfig) IsSharp(key string) bool {
	for _, book := range c.SharpBooks {
		if book == key {
			return true
		}
	}
	return false
}
