// Package app wires configuration, services and frontends into the running
// Pogoda server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/valpere/pogoda/internal/bot"
	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/internal/database"
	"github.com/valpere/pogoda/internal/middleware"
	"github.com/valpere/pogoda/internal/observability"
	"github.com/valpere/pogoda/internal/services"
	"github.com/valpere/pogoda/internal/version"
	"github.com/valpere/pogoda/internal/widget"
	"github.com/valpere/pogoda/pkg/metrics"
)

const serviceName = "pogoda"

type App struct {
	config         *config.Config
	logger         *zerolog.Logger
	metrics        *metrics.Metrics
	services       *services.Services
	widget         *widget.Widget
	limiter        *middleware.ClientRateLimiter
	redis          *redis.Client
	server         *http.Server
	bot            *bot.Bot
	shutdownTracer observability.ShutdownFunc
}

// New connects the cache, builds the services and prepares the HTTP server
// and, when a token is configured, the Telegram frontend.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	shutdownTracer, err := observability.InitTracer(cfg.Metrics, serviceName, version.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}

	rdb, err := database.ConnectRedis(ctx, &cfg.Redis, logger)
	if err != nil {
		// The cache is optional; lookups go straight upstream without it.
		logger.Warn().Err(err).Msg("Continuing without Redis cache")
		rdb = nil
	}

	metricsCollector := metrics.New()

	svcs, err := services.New(rdb, cfg, logger, metricsCollector)
	if err != nil {
		return nil, fmt.Errorf("failed to create services: %w", err)
	}

	a := &App{
		config:         cfg,
		logger:         logger,
		metrics:        metricsCollector,
		services:       svcs,
		widget:         widget.New(svcs.Weather, svcs.Location, svcs.Localization, metricsCollector, logger),
		limiter:        middleware.NewClientRateLimiter(rate.Limit(cfg.Widget.RateLimit), cfg.Widget.RateBurst),
		redis:          rdb,
		shutdownTracer: shutdownTracer,
	}

	if cfg.Bot.Token != "" {
		a.bot, err = bot.New(&cfg.Bot, a.widget, svcs.Localization, a.limiter, metricsCollector, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create bot: %w", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	if cfg.Bot.Debug {
		gin.SetMode(gin.DebugMode)
	}
	handler := NewHandler(a.widget, svcs.Localization, svcs, metricsCollector, logger)
	a.server = &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      NewRouter(handler, a.limiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout(),
	}

	return a, nil
}

// Widget exposes the request cycle for one-shot use (the CLI lookup).
func (a *App) Widget() *widget.Widget {
	return a.widget
}

// Localization returns the translation service.
func (a *App) Localization() *services.LocalizationService {
	return a.services.Localization
}

// Close releases what New acquired when Start was never called.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	a.limiter.Stop()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if err := a.shutdownTracer(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}
	return errors.Join(errs...)
}

// Start serves HTTP (and polls Telegram) until ctx is canceled or the
// server fails.
func (a *App) Start(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info().
			Str("addr", a.server.Addr).
			Msg("HTTP server started")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.bot != nil {
		go func() {
			if err := a.bot.Start(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop releases everything New and Start acquired.
func (a *App) Stop(ctx context.Context) error {
	var errs []error

	if a.bot != nil {
		if err := a.bot.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
	}

	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info().Msg("Pogoda stopped")
	return errors.Join(errs...)
}
