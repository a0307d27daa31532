package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/tasks/internal/tasks/http"
	"github.com/aussiebroadwan/tasks/internal/tasks/service"
	"github.com/aussiebroadwan/tasks/internal/tasks/session"
	"github.com/aussiebroadwan/tasks/internal/tasks/session/drivers/memory"
	redisdriver "github.com/aussiebroadwan/tasks/internal/tasks/session/drivers/redis"
	"github.com/aussiebroadwan/tasks/internal/tasks/store"
	"github.com/aussiebroadwan/tasks/internal/tasks/store/drivers/postgres"
	"github.com/aussiebroadwan/tasks/internal/tasks/store/drivers/sqlite"
	"github.com/aussiebroadwan/tasks/pkg/cryptox"
	"github.com/aussiebroadwan/tasks/pkg/jwtx"
	"github.com/aussiebroadwan/tasks/pkg/metricsx"
	"github.com/aussiebroadwan/tasks/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	serviceName = "tasks-api"
)

// Application encapsulates the tasks service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	sessions session.Cache
	signer   *jwtx.HMACSigner
	verifier jwtx.Verifier
	metrics  *metricsx.Metrics

	// Services
	authService *service.AuthService
	taskService *service.TaskService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metricsx.New("tasks"),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSessions(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initTokens(); err != nil {
		app.closeBackends()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router, for tests that serve it without
// binding a port.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("tasks service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.closeBackends()
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

// Shutdown drains in-flight requests, then closes the cache and database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tasks service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("tasks service stopped")
	return nil
}

func (app *Application) closeBackends() error {
	var errs []error
	if err := app.sessions.Close(); err != nil {
		app.logger.Error("error closing session cache", "error", err)
		errs = append(errs, err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase opens the configured store and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DBDriver {
	case DriverSQLite:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	default:
		db, err = postgres.Open(app.cfg.DatabaseURL, postgres.Options{
			MaxOpenConns:    app.cfg.DBMaxConns,
			MaxIdleConns:    app.cfg.DBMaxConns,
			ConnMaxLifetime: 30 * time.Minute,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DBDriver)

	app.db = db
	return nil
}

func (app *Application) initSessions() error {
	switch app.cfg.SessionDriver {
	case SessionMemory:
		app.logger.Warn("using in-memory session cache; sessions are lost on restart")
		app.sessions = memory.New()
	default:
		c, err := redisdriver.New(app.cfg.RedisURL, redisdriver.Options{})
		if err != nil {
			return fmt.Errorf("failed to initialize session cache: %w", err)
		}
		app.sessions = c
	}
	return nil
}

// initTokens builds the HS256 signer. Without a configured secret an
// ephemeral one is generated, so every token dies with the process.
func (app *Application) initTokens() error {
	secret := app.cfg.JWTSecret
	if secret == "" {
		generated, err := cryptox.GenerateSecret(cryptox.SecretSize)
		if err != nil {
			return err
		}
		secret = generated
		app.logger.Warn("TASKS_JWT_SECRET not set; using an ephemeral signing secret")
	}

	signer, verifier, err := jwtx.NewHMAC([]byte(secret), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}

	cached, err := jwtx.NewCachedVerifier(verifier, app.cfg.TokenCacheSize)
	if err != nil {
		return fmt.Errorf("failed to initialize token cache: %w", err)
	}
	app.signer, app.verifier = signer, cached
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Sessions:   app.sessions,
		Hasher:     cryptox.NewBcryptHasher(app.cfg.BcryptCost),
		Signer:     app.signer,
		Verifier:   app.verifier,
		Metrics:    app.metrics,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
		SessionTTL: app.cfg.SessionTTL,
	}

	app.taskService = &service.TaskService{
		Store:   app.db,
		Metrics: app.metrics,
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.sessions,
		app.metrics,
		app.logger,
	)

	router.AuthService = app.authService
	router.TaskService = app.taskService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
