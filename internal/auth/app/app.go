package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/misenoti/misenoti/internal/auth/http"
	"github.com/misenoti/misenoti/internal/auth/metrics"
	"github.com/misenoti/misenoti/internal/auth/notify"
	"github.com/misenoti/misenoti/internal/auth/service"
	"github.com/misenoti/misenoti/internal/auth/store"
	"github.com/misenoti/misenoti/internal/auth/store/drivers/postgres"
	"github.com/misenoti/misenoti/internal/auth/store/drivers/redis"
	"github.com/misenoti/misenoti/internal/auth/store/drivers/sqlite"
	"github.com/misenoti/misenoti/pkg/cryptox"
	"github.com/misenoti/misenoti/pkg/httpx"
	"github.com/misenoti/misenoti/pkg/jwtx"
	"github.com/misenoti/misenoti/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// startupTimeout bounds connecting to the database, redis and the broker.
const startupTimeout = 15 * time.Second

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db            store.Store
	verifications *redis.VerificationRepo // nil unless VERIFICATION_BACKEND=redis
	notifier      notify.Notifier
	codec         *jwtx.Codec
	metrics       *metrics.Metrics

	// Services
	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	closers []io.Closer

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "misenoti-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	codec, err := jwtx.NewCodec([]byte(cfg.Auth.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initVerifications(ctx); err != nil {
		_ = app.closeAll()
		return nil, err
	}
	if err := app.initNotifier(); err != nil {
		_ = app.closeAll()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.closeAll()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"db_driver", app.cfg.Database.Driver,
		"verification_backend", app.cfg.Verifications.Backend,
		"notifier", app.cfg.Notifier.Kind,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.closeAll()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeAll(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// closeAll releases dependencies in reverse order of creation.
func (app *Application) closeAll() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error("error closing dependency", "error", err)
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.Database.Driver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.Database.URL)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.Database.File)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.db = db
	app.closers = append(app.closers, db)
	app.logger.Info("database migrations applied successfully", "driver", app.cfg.Database.Driver)
	return nil
}

func (app *Application) initVerifications(ctx context.Context) error {
	if app.cfg.Verifications.Backend != VerificationsRedis {
		return nil
	}

	repo, err := redis.New(ctx,
		app.cfg.Verifications.RedisAddr,
		app.cfg.Verifications.RedisPassword,
		app.cfg.Verifications.RedisDB,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.verifications = repo
	app.closers = append(app.closers, repo)
	app.logger.Info("verification attempts stored in redis", "addr", app.cfg.Verifications.RedisAddr)
	return nil
}

func (app *Application) initNotifier() error {
	switch app.cfg.Notifier.Kind {
	case NotifierSMTP:
		app.notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     app.cfg.Notifier.SMTPHost,
			Port:     app.cfg.Notifier.SMTPPort,
			Username: app.cfg.Notifier.SMTPUsername,
			Password: app.cfg.Notifier.SMTPPassword,
			From:     app.cfg.Notifier.SMTPFrom,
		})
	case NotifierAMQP:
		n, err := notify.NewAMQPNotifier(app.cfg.Notifier.AMQPURL, app.cfg.Notifier.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to broker: %w", err)
		}
		app.notifier = n
		app.closers = append(app.closers, n)
	default:
		app.logger.Warn("log notifier enabled: verification codes and reset tokens are written to the log")
		app.notifier = notify.LogNotifier{}
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrGeneratePepper(app.cfg.Auth.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	var verifications store.Verifications = app.db.Verifications()
	if app.verifications != nil {
		verifications = app.verifications
	}

	app.authService = &service.AuthService{
		Store:  app.db,
		Hasher: cryptox.NewPasswordHasher(pepper),
		Codec:  app.codec,
		Gate: &service.VerificationGate{
			Repo:        verifications,
			TTL:         app.cfg.Auth.VerificationTTL,
			MaxAttempts: app.cfg.Auth.MaxAttempts,
		},
		Notifier:   app.notifier,
		SessionTTL: app.cfg.Auth.SessionTTL,
		ResetTTL:   app.cfg.Auth.ResetTokenTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		verifications,
		app.metrics,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		httpx.CORSConfig{AllowedOrigin: app.cfg.CORSOrigin},
		app.logger,
	)

	router.AuthService = app.authService
	router.Metrics = app.metrics
	router.ActionLimit = httpx.RateLimitConfig{
		RequestsPerWindow: app.cfg.RateLimit.ActionRequests,
		Window:            app.cfg.RateLimit.ActionWindow,
		Burst:             app.cfg.RateLimit.ActionBurst,
	}
	if app.verifications != nil {
		router.Verifications = app.verifications
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
