// Package app wires configuration, storage, services, and the HTTP server
// into a runnable application.
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

	"github.com/athenkosimagada/careerhive.server/internal/domain"
	httpapi "github.com/athenkosimagada/careerhive.server/internal/http"
	"github.com/athenkosimagada/careerhive.server/internal/identity"
	"github.com/athenkosimagada/careerhive.server/internal/mailer"
	"github.com/athenkosimagada/careerhive.server/internal/safebrowsing"
	"github.com/athenkosimagada/careerhive.server/internal/service"
	"github.com/athenkosimagada/careerhive.server/internal/store"
	"github.com/athenkosimagada/careerhive.server/internal/store/drivers/sqlite"
	"github.com/athenkosimagada/careerhive.server/pkg/idx"
	"github.com/athenkosimagada/careerhive.server/pkg/jwtx"
	"github.com/athenkosimagada/careerhive.server/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// defaultRoles are seeded at startup so registration can always resolve them.
var defaultRoles = []string{domain.RoleUser, "Admin"}

// Application encapsulates the service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *jwtx.Codec

	accountService      *service.AccountService
	jobService          *service.JobService
	subscriptionService *service.SubscriptionService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New builds the application: database, migrations, seeded roles, services,
// and the HTTP server.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "careerhive",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	codec, err := jwtx.NewCodec([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		return nil, fmt.Errorf("initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.seedRoles(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("careerhive starting",
		slog.Int("port", app.cfg.Port),
		slog.String("version", BuildVersion),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.Any("signal", sig))
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops housekeeping, and closes the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slog.Any("err", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("err", err))
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slog.Any("err", err))
		return err
	}

	app.logger.Info("careerhive stopped")
	return nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(fmt.Sprintf("file:%s?_journal_mode=WAL", app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("apply migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

// seedRoles creates the configured role set if missing. ULID ids are minted
// here rather than in migration SQL.
func (app *Application) seedRoles(ctx context.Context) error {
	for _, name := range defaultRoles {
		_, err := app.db.Roles().GetRoleByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("look up role %q: %w", name, err)
		}
		if err := app.db.Roles().CreateRole(ctx, domain.Role{
			ID:   idx.New().String(),
			Name: name,
		}); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("seed role %q: %w", name, err)
		}
	}
	return nil
}

func (app *Application) initServices() {
	ident := &identity.Manager{
		Store:      app.db,
		TOTPIssuer: "CareerHive",
	}

	tokens := &service.TokenIssuer{
		Codec:      app.codec,
		Store:      app.db,
		AccessTTL:  app.cfg.AccessTTL(),
		RefreshTTL: app.cfg.RefreshTTL(),
	}

	smtp := &mailer.SMTPMailer{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		From:     app.cfg.SMTPFrom,
		User:     app.cfg.SMTPUser,
		Pass:     app.cfg.SMTPPass,
		StartTLS: app.cfg.SMTPStartTLS,
		Log:      app.logger,
	}

	app.accountService = &service.AccountService{
		Store:       app.db,
		Identity:    ident,
		Tokens:      tokens,
		Mailer:      smtp,
		FrontendURL: app.cfg.FrontendURL,
	}

	app.jobService = &service.JobService{
		Store: app.db,
		Safe: &safebrowsing.Client{
			APIKey:   app.cfg.SafeBrowsingAPIKey,
			ClientID: "careerhive",
		},
		Mailer:      smtp,
		FrontendURL: app.cfg.FrontendURL,
	}

	app.subscriptionService = &service.SubscriptionService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.codec, BuildVersion, app.db, app.logger)
	router.AccountService = app.accountService
	router.JobService = app.jobService
	router.SubscriptionSvc = app.subscriptionService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
