package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	httpapi "github.com/harborhealth/claims/internal/authcore/http"
	"github.com/harborhealth/claims/internal/authcore/rbac"
	"github.com/harborhealth/claims/internal/authcore/service"
	"github.com/harborhealth/claims/internal/authcore/store"
	redisdriver "github.com/harborhealth/claims/internal/authcore/store/drivers/redis"
	"github.com/harborhealth/claims/internal/authcore/store/drivers/sqlite"
	"github.com/harborhealth/claims/pkg/jwtx"
	"github.com/harborhealth/claims/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the authcore service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db            store.Store
	codec         *jwtx.Codec
	redisClient   *goredis.Client
	redisSessions *redisdriver.Sessions

	// Services
	authService         *service.AuthService
	sessionService      *service.SessionService
	userService         *service.UserService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authcore",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// The policy table is static configuration; a hole in it is a
	// deployment bug, caught before the service takes traffic.
	if err := rbac.Validate(); err != nil {
		return nil, fmt.Errorf("role policy table is invalid: %w", err)
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	codec, err := app.initCodec()
	if err != nil {
		return nil, err
	}
	app.codec = codec

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("authcore starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"session_backend", app.cfg.SessionBackend,
		"inactivity_budget", app.cfg.InactivityBudget,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authcore...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("authcore stopped")
	return nil
}

// initStore initializes the sqlite store, applies migrations, and layers
// the redis session backend over it when configured.
func (app *Application) initStore() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully")

	app.db = db

	if app.cfg.SessionBackend == "redis" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			_ = db.Close()
			return fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.RedisAddr, err)
		}

		app.redisClient = client
		app.redisSessions = redisdriver.NewSessions(client)
		app.db = store.WithSessions(db, app.redisSessions)
		app.logger.Info("session backend: redis", "addr", app.cfg.RedisAddr)
	}

	return nil
}

// initCodec loads the configured Ed25519 signing key, or generates an
// ephemeral one.
func (app *Application) initCodec() (*jwtx.Codec, error) {
	if app.cfg.SigningKeyFile != "" {
		codec, err := jwtx.NewCodecFromPEM(app.cfg.Issuer, app.cfg.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}
		app.logger.Info("loaded persistent signing key", "path", app.cfg.SigningKeyFile)
		return codec, nil
	}

	codec, err := jwtx.NewCodec(app.cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	app.logger.Info("generated ephemeral signing key")
	return codec, nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:            app.db,
		Codec:            app.codec,
		InactivityBudget: app.cfg.InactivityBudget,
		TokenTTL:         app.cfg.TokenTTL,
	}
	app.sessionService = &service.SessionService{
		Store:               app.db,
		NearExpiryThreshold: app.cfg.NearExpiryThreshold,
	}
	app.userService = &service.UserService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.BootstrapService = app.bootstrapService
	if app.redisSessions != nil {
		router.SessionPinger = app.redisSessions
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
