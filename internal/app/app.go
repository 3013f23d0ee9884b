// Package app wires adapters and services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"marketpush/internal/adapters/cache"
	httpadapter "marketpush/internal/adapters/http"
	"marketpush/internal/adapters/llm"
	"marketpush/internal/adapters/memory"
	"marketpush/internal/adapters/postgres"
	"marketpush/internal/config"
	"marketpush/internal/policy"
	"marketpush/internal/ports"
	"marketpush/internal/ratelimit"
	"marketpush/internal/services/generation"
	"marketpush/internal/services/profiles"
	"marketpush/internal/services/recommendation"
	"marketpush/internal/services/verification"
	"marketpush/internal/workers/campaign"
)

// App is the assembled object graph shared by the server and the CLI.
type App struct {
	Config     *config.Config
	Log        *slog.Logger
	Clock      clockwork.Clock
	Catalog    ports.Catalog
	Verifier   *verification.Service
	Recommend  *recommendation.Service
	Profiles   *profiles.Service
	Generation *generation.Service
	Quota      *ratelimit.Service
	Campaign   *campaign.Runner

	closers []func()
}

// Build connects the configured backends and constructs every service. Call Close
// when done.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, clock clockwork.Clock) (*App, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	a := &App{Config: cfg, Log: logger, Clock: clock}

	catalog, err := a.openCatalog(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var counter ports.CallCounter = ratelimit.NewMemoryCounter()
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		catalog = cache.NewCatalog(logger, catalog, rdb, cfg.Redis.CacheTTL)
		counter = cache.NewCounter(rdb)
		logger.Info("redis enabled", slog.String("addr", cfg.Redis.Addr))
	}
	a.Catalog = catalog

	lexicon, err := policy.Load(cfg.Policy.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	gen, err := llm.New(ctx, logger, cfg.LLM)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Verifier = verification.NewService(logger, catalog, lexicon, clock)
	a.Recommend = recommendation.NewService(logger, catalog, clock)
	a.Profiles = profiles.New(logger, catalog, a.Recommend, clock)
	a.Quota = ratelimit.NewService(logger, counter, clock, cfg.Quota.MaxCalls, cfg.IsProduction())
	a.Generation = generation.NewService(logger, a.Recommend, catalog, gen, a.Verifier, a.Quota, clock, cfg.Generation)
	a.Campaign = campaign.NewRunner(logger, a.Generation, cfg.Campaign.Workers)

	logger.Info("application built",
		slog.String("env", cfg.Env),
		slog.String("catalog", cfg.Catalog.Backend),
		slog.String("generator", gen.Name()),
		slog.Bool("quota_enforced", cfg.IsProduction()),
	)
	return a, nil
}

func (a *App) openCatalog(ctx context.Context) (ports.Catalog, error) {
	switch strings.ToLower(a.Config.Catalog.Backend) {
	case "postgres":
		if a.Config.Database.MigrateOnStart {
			if err := postgres.Migrate(ctx, a.Log, a.Config.Database.URL); err != nil {
				return nil, err
			}
		}
		db, err := postgres.Connect(ctx, a.Config.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	default:
		return memory.NewSeeded(a.Clock.Now())
	}
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return httpadapter.New(a.Log, a.Verifier, a.Generation, a.Profiles, a.Quota, a.Catalog, a.Clock).Routes()
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	sc := a.Config.Server
	srv := &http.Server{
		Addr:         net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port)),
		Handler:      a.Handler(),
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	return nil
}

// Run loads configuration, builds the application and serves until ctx ends.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := NewLogger(cfg.Log)

	a, err := Build(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Serve(ctx)
}
