// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
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

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/blog"
	"github.com/starford/folio/internal/feed"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/posts"
	"github.com/starford/folio/internal/profile"
	"github.com/starford/folio/internal/render"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
)

const feedEventThrottle = 2 * time.Second

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", out: os.Stdout, logOut: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger creates the structured JSON logger and installs it as default.
func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// newLoader builds the post loader over the configured directory.
func (a *application) newLoader() (*posts.Loader, error) {
	store, err := storage.NewFS(a.config.Posts.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	renderer := render.New(render.Options{Sanitize: a.config.Posts.Sanitize})
	return posts.NewLoader(store, renderer), nil
}

// newService loads the catalog and profile, opens the index and syncs it.
// The caller closes the returned DB.
func (a *application) newService(ctx context.Context, logger *slog.Logger) (*blog.Service, *index.DB, error) {
	cfg := a.config

	loader, err := a.newLoader()
	if err != nil {
		return nil, nil, err
	}
	catalog, err := posts.NewCatalog(ctx, loader, posts.Options{Render: true, IncludeContent: true}, logger)
	if err != nil {
		return nil, nil, err
	}

	prof, err := profile.Load(cfg.Profile.Path)
	if err != nil {
		return nil, nil, err
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	svc := blog.NewService(catalog, db, prof, cfg.Site.Channel(), logger)
	if err := svc.SyncIndex(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return svc, db, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("posts_path", cfg.Posts.Path),
		slog.Bool("posts_watch", cfg.Posts.Watch),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, db, err := app.newService(ctx, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	broker := sse.NewBroker(feedEventThrottle)
	defer broker.Close()
	svc.OnReload(broker.PublishReload)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := db.Count(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"index unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","posts":%d}`, svc.Catalog().Collection().Len())
	})

	feedHandler := api.FeedHandler(svc)
	r.Get("/rss.xml", feedHandler)
	r.Head("/rss.xml", feedHandler)
	r.Get("/static/{filename}", api.NewStaticHandler(cfg.Static.Path).ServeFile)

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Posts.Watch {
		g.Go(func() error {
			return svc.Catalog().Watch(gCtx, func(res posts.ReloadResult) {
				svc.AfterReload(gCtx, res)
			})
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

		// Open event streams never finish on their own.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// Check loads every post with rendering, and the profile, and reports the
// post count. Any malformed post makes it fail.
func Check(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	app.newLogger()

	loader, err := app.newLoader()
	if err != nil {
		return err
	}
	all, err := loader.LoadAll(ctx, posts.Options{Render: true})
	if err != nil {
		return err
	}
	if _, err := profile.Load(app.config.Profile.Path); err != nil {
		return err
	}

	_, err = fmt.Fprintf(app.out, "ok: %d posts in %s\n", len(all), app.config.Posts.Path)
	return err
}

// ExportFeed writes the RSS document for the posts directory.
func ExportFeed(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	app.newLogger()

	all, err := posts.LoadDir(ctx, app.config.Posts.Path, nil, posts.Options{})
	if err != nil {
		return err
	}
	doc, err := feed.Render(app.config.Site.Channel(), all)
	if err != nil {
		return err
	}
	if app.outPath != "" {
		return writeFileAtomic(app.outPath, doc)
	}
	_, err = app.out.Write(doc)
	return err
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place, so readers see either the old file or the complete new one.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("fsync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// ServeMCP serves the read-only MCP tools over stdio.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.newLogger()

	svc, db, err := app.newService(ctx, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("mcp: serving on stdio")
	return mcpserver.New(svc, app.version).ServeStdio()
}
