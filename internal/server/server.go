// Package server assembles the ghost ledger from configuration and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rickgao/phantom-ledger/internal/alpaca"
	"github.com/rickgao/phantom-ledger/internal/auth"
	"github.com/rickgao/phantom-ledger/internal/config"
	"github.com/rickgao/phantom-ledger/internal/ghost"
	"github.com/rickgao/phantom-ledger/internal/httpapi"
	"github.com/rickgao/phantom-ledger/internal/ledger"
	"github.com/rickgao/phantom-ledger/internal/pricing"
	"github.com/rickgao/phantom-ledger/internal/quotecache"
	"github.com/rickgao/phantom-ledger/internal/sweeper"
	"github.com/rickgao/phantom-ledger/internal/voice"
	"golang.org/x/sync/errgroup"
)

// App holds the wired components.
type App struct {
	Stores   *Stores
	Market   *alpaca.Client
	Resolver *pricing.Resolver
	Ledger   *ledger.Aggregator
	Ghosts   *ghost.Service
	Voice    *voice.Presigner
	Verifier *auth.Verifier
}

// Close releases the stores.
func (a *App) Close() {
	a.Stores.Close()
}

// Build opens the stores and wires every component from cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app, err := Wire(cfg, stores, logger)
	if err != nil {
		stores.Close()
		return nil, err
	}
	return app, nil
}

// Wire builds the components on top of already opened stores.
func Wire(cfg *config.Config, stores *Stores, logger *slog.Logger) (*App, error) {
	loc, err := time.LoadLocation(cfg.Pricing.MarketTimezone)
	if err != nil {
		return nil, fmt.Errorf("load market timezone: %w", err)
	}

	market := alpaca.NewClient(
		cfg.MarketData.DataURL,
		cfg.MarketData.TradingURL,
		cfg.MarketData.KeyID,
		cfg.MarketData.SecretKey,
		alpaca.WithLogger(logger),
		alpaca.WithTimeout(cfg.MarketData.Timeout),
		alpaca.WithRetries(cfg.MarketData.MaxRetries, time.Second),
	)
	if !market.Configured() {
		logger.Warn("market data credentials not configured, quotes will be mocked")
	}

	cache := quotecache.New(stores.Cache, quotecache.WithLogger(logger))
	resolver := pricing.NewResolver(market, cache,
		pricing.WithQuoteTTL(cfg.Pricing.QuoteTTL),
		pricing.WithTimeSeriesTTL(cfg.Pricing.TimeSeriesTTL),
		pricing.WithLookbackDays(cfg.Pricing.HistoricalLookbackDays),
		pricing.WithLocation(loc),
		pricing.WithLogger(logger),
	)

	agg := ledger.NewAggregator(stores.App, ledger.WithLogger(logger))
	ghosts := ghost.NewService(stores.App, resolver, agg,
		ghost.WithListLimit(cfg.Ghosts.DefaultListLimit),
		ghost.WithLookupWindow(cfg.Ghosts.LookupWindow),
		ghost.WithLogger(logger),
	)

	return &App{
		Stores:   stores,
		Market:   market,
		Resolver: resolver,
		Ledger:   agg,
		Ghosts:   ghosts,
		Voice:    voice.NewPresigner(cfg.Voice, voice.WithLogger(logger)),
		Verifier: auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
	}, nil
}

// Handler returns the HTTP API for app.
func (a *App) Handler(cfg *config.Config, logger *slog.Logger) http.Handler {
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	return httpapi.New(httpapi.Deps{
		Ghosts:              a.Ghosts,
		Dashboard:           a.Ledger,
		Market:              a.Resolver,
		Uploads:             a.Voice,
		Identity:            a.Verifier,
		Health:              a.Stores,
		AllowHeaderIdentity: cfg.Auth.AllowHeaderIdentity,
		Logger:              logger,
	})
}

// Run serves the API and sweeps the cache until ctx is cancelled, then shuts
// both down within server.shutdown_timeout.
func Run(ctx context.Context, cfg *config.Config, app *App, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      app.Handler(cfg, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var sw *sweeper.Sweeper
	if app.Stores.Expirer != nil {
		sw = sweeper.New(sweeper.Config{Interval: cfg.Store.SweepInterval},
			[]sweeper.Target{{Name: cfg.Store.CacheTable, Store: app.Stores.Expirer}}, logger)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if sw != nil {
		if err := sw.Start(gctx); err != nil {
			return fmt.Errorf("start sweeper: %w", err)
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
		if sw != nil {
			if err := sw.Stop(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("stop sweeper: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
