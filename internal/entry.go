// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/deckwright/internal/api"
	"github.com/starford/deckwright/internal/catalog"
	"github.com/starford/deckwright/internal/deckservice"
	"github.com/starford/deckwright/internal/deckstore"
	"github.com/starford/deckwright/internal/mcpserver"
	"github.com/starford/deckwright/internal/models"
	"github.com/starford/deckwright/internal/rules"
	"github.com/starford/deckwright/internal/scryfall"
	"github.com/starford/deckwright/internal/sse"
	"github.com/starford/deckwright/internal/storage"
)

// runtime holds the components shared by every command.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	db     *deckstore.DB
	svc    *deckservice.Service
}

func (rt *runtime) Close() {
	if rt.db != nil {
		_ = rt.db.Close()
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup opens the data files, database and export directory and builds the
// deck service. logOut receives the JSON log stream.
func (app *application) setup(logOut *os.File, svcOpts ...deckservice.Option) (*runtime, error) {
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("snapshot_path", cfg.Data.SnapshotPath),
		slog.String("oracle_path", cfg.Data.OraclePath),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("exports_path", cfg.Exports.Path),
		slog.Bool("scryfall", cfg.Scryfall.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	src := catalog.Source{SnapshotPath: cfg.Data.SnapshotPath, OraclePath: cfg.Data.OraclePath}
	engineOpts := []rules.Option{rules.WithLogger(logger)}
	loaded, err := catalog.Load(src, logger, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	exports, err := storage.NewFS(cfg.Exports.Path)
	if err != nil {
		return nil, fmt.Errorf("init exports: %w", err)
	}

	db, err := deckstore.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init deck store: %w", err)
	}

	opts := []deckservice.Option{
		deckservice.WithSource(src, engineOpts...),
		deckservice.WithLogger(logger),
	}
	if cfg.Scryfall.Enabled {
		client := scryfall.NewClient(scryfall.Config{
			BaseURL:   cfg.Scryfall.BaseURL,
			RateLimit: cfg.Scryfall.RateLimit(),
			Timeout:   cfg.Scryfall.Timeout,
		}, logger)
		opts = append(opts, deckservice.WithCardLookup(client))
	}
	opts = append(opts, svcOpts...)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		db:     db,
		svc:    deckservice.NewService(loaded, db, exports, opts...),
	}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rt, err := app.setup(os.Stdout, deckservice.WithPublisher(broker))
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, logger := rt.cfg, rt.logger
	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		loaded := rt.svc.Loaded()
		status := http.StatusOK
		body := map[string]any{"status": "ok", "fingerprint": loaded.Fingerprint(), "fallback_catalog": loaded.Fallback}
		if len(loaded.Engine.Cards()) == 0 {
			status = http.StatusServiceUnavailable
			body["status"] = "empty catalog"
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Rebuild the engine when the data files change.
	if cfg.Data.Watch {
		g.Go(func() error {
			return catalog.Watch(gCtx, catalog.Source{
				SnapshotPath: cfg.Data.SnapshotPath,
				OraclePath:   cfg.Data.OraclePath,
			}.Paths(), cfg.Data.Debounce, logger, func() {
				if _, err := rt.svc.Reload(); err != nil {
					logger.Error("catalog reload failed, keeping current engine", slog.String("error", err.Error()))
				}
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

// errShutdown cancels the errgroup so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio. Logs go to stderr since stdout
// carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.setup(os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc).ServeStdio()
}

// BuildOnce builds a single deck, stores it and writes the result as JSON to
// the configured output.
func BuildOnce(ctx context.Context, req models.DeckBuildRequest, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if req.RCMode != "" && !rules.DefaultCoreRules().IsRCMode(req.RCMode) {
		return fmt.Errorf("unknown rc_mode %q", req.RCMode)
	}
	rt, err := app.setup(os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	built, err := rt.svc.Build(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(built)
}
