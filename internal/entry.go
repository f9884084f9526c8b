// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/coursebook/internal/api"
	"github.com/starford/coursebook/internal/content"
	"github.com/starford/coursebook/internal/mcpserver"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/progress"
	"github.com/starford/coursebook/internal/sse"
	"github.com/starford/coursebook/internal/state"
	"github.com/starford/coursebook/internal/viewstate"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_source", cfg.Content.Source),
		slog.String("state_driver", cfg.State.Driver),
		slog.String("log_level", cfg.App.LogLevel.String()))

	src, err := newSource(cfg.Content)
	if err != nil {
		return fmt.Errorf("init content source: %w", err)
	}

	kv, err := openState(ctx, cfg.State)
	if err != nil {
		return fmt.Errorf("init state: %w", err)
	}
	defer kv.Close()

	// SSE broker doubles as the toast notifier.
	broker := sse.NewBroker(cfg.Content.ChangeThrottle)
	defer broker.Close()

	ctl := newController(cfg.Content, src, kv, broker, logger)
	if err := ctl.Init(ctx); err != nil {
		return fmt.Errorf("init view state: %w", err)
	}

	apiRouter := api.NewRouter(ctl, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if len(cfg.App.CORS.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.App.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match"},
			ExposedHeaders:   []string{"ETag"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if len(ctl.Courses()) == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"no courses"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Bundle edits are announced only; learners pick them up via refresh.
	if dir, ok := src.(*content.DirSource); ok && cfg.Content.Watch {
		g.Go(func() error {
			return content.Watch(gCtx, dir.Root(), logger, broker.PublishContentChange)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// SSE streams only end when their subscription channel closes.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the course tools over stdio until the client disconnects.
// Stdout carries the protocol, so logs go to stderr unless overridden.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger()
	slog.SetDefault(logger)

	src, err := newSource(cfg.Content)
	if err != nil {
		return fmt.Errorf("init content source: %w", err)
	}

	kv, err := openState(ctx, cfg.State)
	if err != nil {
		return fmt.Errorf("init state: %w", err)
	}
	defer kv.Close()

	toasts := progress.NotifierFunc(func(kind, message string) {
		logger.Info("notification", slog.String("kind", kind), slog.String("message", message))
	})

	ctl := newController(cfg.Content, src, kv, toasts, logger)
	if err := ctl.Init(ctx); err != nil {
		return fmt.Errorf("init view state: %w", err)
	}

	logger.Info("MCP server starting", slog.String("version", app.version))
	return mcpserver.New(ctl, app.version).ServeStdio()
}

func newApplication(opts []Option, defaultLog io.Writer) (*application, error) {
	app := &application{version: "dev", logOutput: defaultLog}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
}

func newSource(cfg ContentConfig) (content.Source, error) {
	switch cfg.Source {
	case SourceHTTP:
		return content.NewHTTPSource(cfg.BaseURL, cfg.Timeout)
	case SourceDir:
		return content.NewDirSource(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown content source %q", cfg.Source)
	}
}

func openState(ctx context.Context, cfg StateConfig) (state.KV, error) {
	switch cfg.Driver {
	case StateDriverRedis:
		return state.OpenRedis(ctx, cfg.Redis.URL, cfg.Redis.Prefix)
	case StateDriverSQLite:
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create state dir: %w", err)
			}
		}
		return state.OpenSQLite(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown state driver %q", cfg.Driver)
	}
}

func newController(cfg ContentConfig, src content.Source, kv state.KV, n progress.Notifier, logger *slog.Logger) *viewstate.Controller {
	store := content.NewStore(src, content.Options{
		Sets:            cfg.Sets,
		BaseLanguage:    models.Language(cfg.BaseLanguage),
		OverlayLanguage: models.Language(cfg.OverlayLanguage),
		Logger:          logger,
	})
	return viewstate.New(viewstate.Options{
		Store:        store,
		KV:           kv,
		Notifier:     n,
		StrictIDs:    cfg.StrictIDs,
		FetchTimeout: cfg.Timeout,
		Logger:       logger,
	})
}
