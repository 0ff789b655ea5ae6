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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notedeck/internal/api"
	"github.com/starford/notedeck/internal/catalog"
	"github.com/starford/notedeck/internal/index"
	"github.com/starford/notedeck/internal/mcpserver"
	"github.com/starford/notedeck/internal/noteservice"
	"github.com/starford/notedeck/internal/selection"
	"github.com/starford/notedeck/internal/sse"
	"github.com/starford/notedeck/internal/storage"
	"github.com/starford/notedeck/internal/tui"
	"github.com/starford/notedeck/internal/web"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// runtime is the state every command shares: the notes directory, its
// SQLite index, the catalog service and the selection.
type runtime struct {
	store *storage.FS
	db    *index.DB
	svc   *noteservice.Service
	sel   *selection.Manager
}

func (a *application) bootstrap(ctx context.Context, logger *slog.Logger, selOpts ...selection.ManagerOption) (*runtime, error) {
	cfg := a.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_path", cfg.Notes.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("persist_selection", cfg.Selection.Persist),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Notes.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create notes dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Notes.Path, cfg.Notes.Extensions...)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	stats, err := index.Sync(db, store, logger)
	if err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial sync done", slog.Int("indexed", stats.Indexed), slog.Int("removed", stats.Removed))
	}

	svc := noteservice.NewService(store, db, cfg.Search.Options(), logger)
	if _, err := svc.Reload(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var kv selection.Store = selection.NewMemoryStore()
	if cfg.Selection.Persist {
		kv = selection.NewFallbackStore(db.Settings(), logger)
	}
	sel, err := selection.NewManager(svc, kv, append([]selection.ManagerOption{selection.WithLogger(logger)}, selOpts...)...)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init selection: %w", err)
	}
	sel.LoadPersisted()

	return &runtime{store: store, db: db, svc: svc, sel: sel}, nil
}

// watch keeps the index and catalog snapshot in step with the notes
// directory until ctx is cancelled. onChange runs after each reload.
func (rt *runtime) watch(ctx context.Context, logger *slog.Logger, onChange func(kind, path string)) {
	err := index.Watch(ctx, rt.db, rt.store, rt.store.Root(), logger, func(kind, path string) {
		if _, err := rt.svc.Reload(ctx); err != nil {
			logger.Warn("catalog reload failed", slog.String("path", path), slog.String("error", err.Error()))
			return
		}
		if onChange != nil {
			onChange(kind, path)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watcher stopped", slog.String("error", err.Error()))
	}
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger(cfg.App.LogLevel)

	rt, err := app.bootstrap(ctx, logger)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	pages, err := web.New(rt.svc, cfg.Proxy.Web(), logger, web.WithEvents(broker))
	if err != nil {
		return fmt.Errorf("init web: %w", err)
	}

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
		if !rt.svc.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(rt.svc, rt.sel, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	r.Mount("/", pages.Routes())

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rt.watch(gCtx, logger, broker.PublishNoteEvent)
		return nil
	})

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

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the catalog tools over stdio. Logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.newLogger(app.config.App.LogLevel)

	rt, err := app.bootstrap(ctx, logger)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.watch(gCtx, logger, nil)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		logger.Info("MCP server starting on stdio", slog.String("version", app.version))
		return mcpserver.New(rt.svc, rt.sel, app.version).ServeStdio()
	})
	return g.Wait()
}

// RunBrowse opens the terminal browser. Logs are discarded unless
// WithLogOutput says otherwise, so they never draw over the screen.
func RunBrowse(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(io.Discard)}, opts...))
	if err != nil {
		return err
	}
	logger := app.newLogger(slog.LevelError)

	lists := tui.NewLists()
	if app.catalogFile != "" {
		c, err := loadCatalogFile(app.catalogFile)
		if err != nil {
			return err
		}
		src := tui.NewStaticSource(c, app.config.Search.Options())
		sel, err := selection.NewManager(src, selection.NewMemoryStore(),
			selection.WithRenderer(lists), selection.WithLogger(logger))
		if err != nil {
			return err
		}
		sel.LoadPersisted()
		model := tui.New(src, sel, lists, tui.WithBaseURL(app.config.App.HTTP.BaseURL()))
		if err := tui.Run(model); err != nil {
			return fmt.Errorf("browse: %w", err)
		}
		return nil
	}

	rt, err := app.bootstrap(ctx, logger, selection.WithRenderer(lists))
	if err != nil {
		return err
	}
	defer rt.db.Close()

	model := tui.New(rt.svc, rt.sel, lists, tui.WithBaseURL(app.config.App.HTTP.BaseURL()))
	if err := tui.Run(model); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}

// loadCatalogFile reads an exported catalog. An unreadable file or one that
// decodes to no notes is an error.
func loadCatalogFile(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	c := catalog.Decode(data)
	if c.Len() == 0 {
		return nil, fmt.Errorf("catalog file %s: no notes", path)
	}
	return c, nil
}
