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

	"github.com/common-nighthawk/go-figure"

	httpapi "github.com/aussiebroadwan/lessondesk/internal/devapi/http"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/service"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store/drivers/memory"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store/drivers/sqlite"
	"github.com/aussiebroadwan/lessondesk/pkg/cryptox"
	"github.com/aussiebroadwan/lessondesk/pkg/jwtx"
	"github.com/aussiebroadwan/lessondesk/pkg/session"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application is the development course API with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   jwtx.Signer
	keys     *jwtx.KeySet
	verifier jwtx.Verifier

	tokenService        *service.TokenService
	userService         *service.UserService
	lessonService       *service.LessonService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New wires the application. logOut receives structured logs; nil means
// stdout.
func New(cfg Config, logOut io.Writer) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lessondesk-devapi",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Writer:  logOut,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}
	if err := app.initPepper(); err != nil {
		return nil, err
	}
	if err := app.initKeys(); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.seedUsers(context.Background()); err != nil {
		return nil, err
	}

	app.initHTTP()
	return app, nil
}

// Handler is the root handler, middleware included.
func (app *Application) Handler() http.Handler { return app.router }

// Run serves until SIGINT/SIGTERM and then shuts down gracefully.
func (app *Application) Run() error {
	fmt.Println(figure.NewFigure("lessondesk", "small", true).String())

	app.housekeepingService.Start()
	app.logger.Info("dev api starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
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

func (app *Application) Shutdown() error {
	app.logger.Info("shutting down dev api")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("dev api stopped")
	return nil
}

// initStore opens the sqlite database when a path is configured and
// falls back to the in-memory driver otherwise.
func (app *Application) initStore() error {
	if app.cfg.DBPath == "" {
		app.db = memory.NewStore()
		return nil
	}
	db, err := sqlite.Open(app.cfg.DBPath)
	if err != nil {
		return err
	}
	app.db = db
	app.logger.Info("using sqlite store", "path", app.cfg.DBPath)
	return nil
}

func (app *Application) initPepper() error {
	if app.cfg.PepperFile == "" {
		p, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("failed to generate pepper: %w", err)
		}
		cryptox.SetPepper(p)
		return nil
	}
	if err := cryptox.LoadPepper(app.cfg.PepperFile); err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	return nil
}

func (app *Application) initKeys() error {
	pemKey, err := cryptox.LoadOrGenerateEd25519Key(app.cfg.SigningKeyFile)
	if err != nil {
		return err
	}

	signer, err := jwtx.NewSignerEdDSA("devapi-1", pemKey)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return fmt.Errorf("failed to register signing key: %w", err)
	}

	app.signer = signer
	app.keys = keys
	app.verifier = jwtx.NewVerifierEdDSA(keys, app.cfg.Issuer, 0)
	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:      app.db,
		Signer:     app.signer,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}
	app.userService = &service.UserService{Store: app.db}
	app.lessonService = &service.LessonService{Store: app.db}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) seedUsers(ctx context.Context) error {
	type seed struct {
		username, password string
		role               session.Role
	}
	seeds := []seed{{app.cfg.AdminUsername, app.cfg.AdminPassword, session.RoleAdmin}}
	if app.cfg.DemoUsers {
		seeds = append(seeds,
			seed{"teacher", "teacher", session.RoleTeacher},
			seed{"parent", "parent", session.RoleParent},
		)
	}

	for _, s := range seeds {
		if _, err := app.userService.Seed(ctx, s.username, s.password, s.role); err != nil {
			return fmt.Errorf("failed to seed user %q: %w", s.username, err)
		}
		app.logger.Info("seeded user", "username", s.username, "role", s.role)
	}
	return nil
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(app.verifier, BuildVersion, app.logger)
	app.router.TokenService = app.tokenService
	app.router.UserService = app.userService
	app.router.LessonService = app.lessonService
	app.router.Store = app.db
	app.router.Keys = app.keys
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
