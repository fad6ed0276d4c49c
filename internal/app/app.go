// Package app initializes and holds long-lived application services, acting
// as the dependency injection container for the CLI commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"rankcrawl/internal/api"
	"rankcrawl/internal/crawler"
	"rankcrawl/internal/logging"
	"rankcrawl/internal/storage/memory"
	"rankcrawl/internal/storage/postgres"
)

const shutdownTimeout = 5 * time.Second

// App holds the shared services for one invocation: logger, store, fetcher,
// and the optional debug server. It is built once at startup and fails fast
// on any configuration problem, before a single request goes out.
type App struct {
	logger  *zap.Logger
	cfg     crawler.Config
	store   crawler.Store
	fetcher crawler.Fetcher
	archive crawler.Archiver
	server  *api.Server

	renderer *crawler.ChromedpFetcher
}

// New builds the App from Viper configuration.
func New(ctx context.Context) (*App, error) {
	logger, err := logging.New(viper.GetString("logging.mode"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := crawler.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load crawler config: %w", err)
	}

	store, err := newStore(ctx, logger)
	if err != nil {
		return nil, err
	}

	a := &App{logger: logger, cfg: cfg, store: store}

	pacer := crawler.NewPacer(cfg.FetchDelay)
	if cfg.RenderEnabled {
		renderer, err := crawler.NewChromedpFetcher(cfg, pacer, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("init renderer: %w", err)
		}
		a.renderer = renderer
		a.fetcher = renderer
		logger.Info("Using headless renderer for fetches")
	} else {
		fetcher, err := crawler.NewCollyFetcher(cfg, pacer, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("init fetcher: %w", err)
		}
		a.fetcher = fetcher
	}

	if dir := cfg.ArchiveDir; dir != "" {
		archive, err := crawler.NewFileSystemArchive(dir, cfg.MaxPageBytes, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init archive: %w", err)
		}
		a.archive = archive
		logger.Info("Archiving raw pages", zap.String("dir", dir))
	}

	if addr := viper.GetString("server.metrics_addr"); addr != "" {
		a.server = api.NewServer(addr, logger)
		a.server.Start()
	}

	return a, nil
}

func newStore(ctx context.Context, logger *zap.Logger) (crawler.Store, error) {
	switch provider := viper.GetString("database.provider"); provider {
	case "postgres":
		dsn := viper.GetString("database.dsn")
		if dsn == "" {
			return nil, fmt.Errorf("database.dsn is required for the postgres provider")
		}
		logger.Info("Connecting to PostgreSQL...")
		store, err := postgres.NewStore(ctx, postgres.Config{
			DSN:      dsn,
			MaxConns: viper.GetInt32("database.max_conns"),
			MinConns: viper.GetInt32("database.min_conns"),
		})
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, nil
	case "memory":
		logger.Warn("Using in-memory store; results are discarded on exit")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database provider: %s", provider)
	}
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Config returns the validated crawler configuration.
func (a *App) Config() crawler.Config { return a.cfg }

// Store returns the persistence layer.
func (a *App) Store() crawler.Store { return a.store }

// Fetcher returns the active page fetcher (colly or headless).
func (a *App) Fetcher() crawler.Fetcher { return a.fetcher }

// Archive returns the raw-page archive, or nil when disabled.
func (a *App) Archive() crawler.Archiver { return a.archive }

// Close shuts down every service the App owns.
func (a *App) Close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warn("Debug server shutdown", zap.Error(err))
		}
		cancel()
	}
	if a.renderer != nil {
		if err := a.renderer.Close(); err != nil {
			a.logger.Warn("Renderer shutdown", zap.Error(err))
		}
	}
	if a.store != nil {
		a.store.Close()
	}
	a.logger.Sync() //nolint:errcheck // best-effort flush
}
