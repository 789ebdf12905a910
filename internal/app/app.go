package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"fairline/internal/alerting"
	"fairline/internal/config"
	"fairline/internal/fetcher"
	"fairline/internal/scheduler"
	"fairline/internal/service"
	"fairline/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.OddsFetcher {
	return fetcher.NewClient(fetcher.Options{
		BaseURL:   a.Config.Provider.BaseURL,
		APIKey:    a.Config.Provider.APIKey,
		Regions:   a.Config.Provider.Regions,
		Markets:   a.Config.Provider.Markets,
		Timeout:   a.Config.Provider.RequestTimeout,
		UserAgent: a.Config.Provider.UserAgent,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

// openStore connects to the ledger and guarantees the schema exists.
// The returned closer releases the pool; callers defer it so the ledger
// is released even when a cycle fails partway.
func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}

	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) newService(sched *scheduler.Scheduler, store storage.LedgerStore) *service.Service {
	return service.New(a.Config, sched, a.newFetcher(), store, a.newNotifier(), a.Logger)
}

// Run executes the long-running scan service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; ledger persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	var ledger storage.LedgerStore
	if store != nil {
		ledger = store
	}

	svc := a.newService(sched, ledger)

	a.Logger.Info().Msg("starting odds scan service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("odds scan service stopped")
	return nil
}

// Scan executes a single cycle immediately.
func (a *App) Scan(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; ledger persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	var ledger storage.LedgerStore
	if store != nil {
		ledger = store
	}

	svc := a.newService(nil, ledger)
	return svc.ProcessCycle(ctx, time.Now().UTC())
}

// ExportOptions hold parameters for exporting ledger history.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit  int
	Exotic bool
}

// AnomaliesOptions configure the anomaly report.
type AnomaliesOptions struct {
	From    *time.Time
	To      *time.Time
	CSVPath string
}

// ReplayOptions configure threshold re-analysis over the ledger.
type ReplayOptions struct {
	From          *time.Time
	To            *time.Time
	MinEdgePct    float64
	ExoticEdgePct float64
	MinProb       float64
}
