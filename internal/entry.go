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
	"golang.org/x/sync/errgroup"

	"github.com/starford/propdesk/internal/api"
	"github.com/starford/propdesk/internal/crmservice"
	"github.com/starford/propdesk/internal/inbox"
	"github.com/starford/propdesk/internal/index"
	"github.com/starford/propdesk/internal/mcpserver"
	"github.com/starford/propdesk/internal/messaging"
	"github.com/starford/propdesk/internal/sse"
	"github.com/starford/propdesk/internal/storage"
	"github.com/starford/propdesk/internal/store"
)

var errConfigRequired = errors.New("config is required")

// errShutdown cancels the group context so the inbox watcher stops with
// the HTTP server.
var errShutdown = errors.New("shutdown")

// newLogger builds the structured JSON logger used by every component.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// newService wires the store, search index and composer into a service.
// The returned cleanup closes the service and the index.
func newService(cfg *Config, logger *slog.Logger) (*crmservice.Service, func(), error) {
	storeOpts := []store.Option{store.WithLogger(logger)}
	if cfg.Store.SeedDemo {
		seed, err := store.DemoSeed(time.Now())
		if err != nil {
			return nil, nil, fmt.Errorf("load demo seed: %w", err)
		}
		storeOpts = append(storeOpts, store.WithSeed(seed))
	}
	st := store.New(storeOpts...)

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	composer := messaging.NewComposer(st, cfg.Messaging.SendDelay, logger)
	svc, err := crmservice.New(st, db, composer, logger,
		crmservice.WithStrictTransitions(cfg.Store.StrictStatusTransitions))
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init service: %w", err)
	}

	snap := st.Snapshot()
	logger.Info("Store ready",
		slog.Int("leads", len(snap.Leads)),
		slog.Int("agents", len(snap.Agents)),
		slog.Int("properties", len(snap.Properties)))

	return svc, func() {
		svc.Close()
		db.Close()
	}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("index_path", cfg.Index.Path),
		slog.Bool("seed_demo", cfg.Store.SeedDemo),
		slog.Bool("inbox_enabled", cfg.Import.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, cleanup, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// SSE broker fed by every store change.
	broker := sse.NewBroker(
		sse.WithDashboardThrottle(cfg.Events.DashboardThrottle),
		sse.WithHeartbeat(cfg.Events.Heartbeat),
		sse.WithReplay(cfg.Events.Replay),
		sse.WithDashboard(func() any { return svc.Stats(ctx) }),
	)
	defer broker.Close()
	unsubscribe := svc.Store().Subscribe(func(c store.Change) {
		broker.PublishChange(string(c.Topic), c)
	})
	defer unsubscribe()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the CSV inbox and announce each processed file.
	if cfg.Import.Enabled {
		dir, err := filepath.Abs(cfg.Import.Dir)
		if err != nil {
			return fmt.Errorf("resolve inbox dir: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create inbox dir: %w", err)
		}
		files, err := storage.NewFS(dir)
		if err != nil {
			return fmt.Errorf("init inbox storage: %w", err)
		}
		in, err := inbox.New(files, svc, logger)
		if err != nil {
			return fmt.Errorf("init inbox: %w", err)
		}
		g.Go(func() error {
			logger.Info("Watching import inbox", slog.String("dir", dir))
			return in.Watch(gCtx, dir, cfg.Import.Settle, func(res inbox.Result) {
				broker.PublishChange("import.completed", res)
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they
// do not corrupt the protocol stream.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	svc, cleanup, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Starting MCP server on stdio", slog.String("version", app.version))
	return mcpserver.New(svc, app.version).ServeStdio()
}
