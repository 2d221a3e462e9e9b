// Package app wires the account service from configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/cinefind/moviesearch/internal/api"
	"github.com/cinefind/moviesearch/internal/api/handler"
	"github.com/cinefind/moviesearch/internal/api/middleware"
	"github.com/cinefind/moviesearch/internal/core/ports"
	"github.com/cinefind/moviesearch/internal/core/service"
	"github.com/cinefind/moviesearch/internal/infrastructure/config"
	"github.com/cinefind/moviesearch/internal/infrastructure/db"
	"github.com/cinefind/moviesearch/internal/infrastructure/db/redis"
	"github.com/cinefind/moviesearch/internal/infrastructure/mail"
	"github.com/cinefind/moviesearch/internal/infrastructure/queue"
	"github.com/cinefind/moviesearch/internal/pkg/password"
	"github.com/cinefind/moviesearch/internal/pkg/token"
)

// Application holds every long-lived dependency of the API process.
type Application struct {
	cfg *config.Config
	log zerolog.Logger

	store       db.Store
	denylist    *redis.Denylist
	service     *service.AccountService
	dispatcher  *queue.Dispatcher
	housekeeper *service.Housekeeper
	echo        *echo.Echo
}

// New opens the store and Redis and builds the HTTP router. Nothing runs
// until Run is called.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, error) {
	app := &Application{cfg: cfg, log: log}

	store, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	app.store = store
	log.Info().Str("driver", cfg.Store.Driver).Msg("store ready")

	var revocations ports.RevocationList
	if cfg.Redis.Enabled {
		denylist, err := redis.Open(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		app.denylist = denylist
		revocations = denylist
		log.Info().Str("addr", cfg.Redis.Addr).Msg("session denylist ready")
	} else {
		log.Warn().Msg("REDIS_ENABLED is false, logout and session revocation are disabled")
	}

	svc, err := NewAccountService(cfg, store, log)
	if err != nil {
		_ = app.closeConnections()
		return nil, err
	}
	app.service = svc
	app.dispatcher = queue.NewDispatcher(cfg.Reset.Workers, svc, log)
	if db.NeedsHousekeeping(cfg.Store.Driver) {
		app.housekeeper = service.NewHousekeeper(store, cfg.Reset.HousekeepingInterval, log)
	}

	health := map[string]handler.Pinger{"store": store}
	if app.denylist != nil {
		health["redis"] = app.denylist
	}

	proxies, err := cfg.ProxyRanges()
	if err != nil {
		_ = app.closeConnections()
		return nil, err
	}

	httpMetrics := prometheus.NewRegistry()
	app.echo = api.NewRouter(api.Deps{
		Service:     svc,
		Resets:      app.dispatcher,
		Revocations: revocations,
		Health:      health,
		RateLimit: middleware.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
			Burst:    cfg.RateLimit.Burst,
		},
		TrustedProxies: proxies,
		Log:            log,
		Registerer:     httpMetrics,
		Gatherer:       prometheus.Gatherers{prometheus.DefaultGatherer, httpMetrics},
	})
	return app, nil
}

// NewAccountService builds the account use cases over store from cfg. Reset
// links go out by SMTP when it is configured and to the log otherwise.
func NewAccountService(cfg *config.Config, store ports.Store, log zerolog.Logger) (*service.AccountService, error) {
	hasher, err := password.New(cfg.Auth.PasswordHasher, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	sessions, err := token.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.SessionTTL)
	if err != nil {
		return nil, err
	}

	var notifier ports.ResetNotifier
	if cfg.SMTP.Enabled() {
		sender := mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		n, err := mail.NewNotifier(sender, cfg.SMTP.From, cfg.Reset.URL)
		if err != nil {
			return nil, err
		}
		notifier = n
	} else {
		log.Warn().Msg("SMTP_HOST is empty, reset links are only logged")
		notifier = mail.NewLogNotifier(log, cfg.Reset.URL, cfg.IsDevelopment())
	}

	return service.NewAccountService(store, hasher, sessions, notifier, cfg.Reset.TokenTTL, log), nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.echo }

// Run starts the background workers and the HTTP server, and blocks until ctx
// is cancelled or the server fails. It always shuts everything down before
// returning.
func (app *Application) Run(ctx context.Context) error {
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	app.dispatcher.Start(workerCtx)
	if app.housekeeper != nil {
		app.housekeeper.Start()
	}

	addr := ":" + app.cfg.Port
	serverErrors := make(chan error, 1)
	go func() {
		app.log.Info().Str("addr", addr).Str("env", app.cfg.Env).Msg("account service starting")
		serverErrors <- app.echo.Start(addr)
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.log.Info().Msg("shutdown signal received")
	}

	if err := app.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown stops accepting requests, drains queued reset requests and closes
// connections.
func (app *Application) Shutdown() error {
	timeout := app.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := app.echo.Shutdown(ctx); err != nil {
		app.log.Error().Err(err).Msg("graceful server shutdown failed")
		errs = append(errs, err)
	}

	app.dispatcher.Stop()
	if app.housekeeper != nil {
		app.housekeeper.Stop()
	}

	if err := app.closeConnections(); err != nil {
		errs = append(errs, err)
	}

	app.log.Info().Msg("account service stopped")
	return errors.Join(errs...)
}

func (app *Application) closeConnections() error {
	var errs []error
	if app.denylist != nil {
		if err := app.denylist.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := app.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
