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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notesapi/internal/api"
	"github.com/starford/notesapi/internal/mcpserver"
	"github.com/starford/notesapi/internal/noteservice"
	"github.com/starford/notesapi/internal/sse"
	"github.com/starford/notesapi/internal/storage"
	"github.com/starford/notesapi/internal/userservice"
	pkgconfig "github.com/starford/notesapi/pkg/config"
	"github.com/starford/notesapi/pkg/database"
	"github.com/starford/notesapi/pkg/logger"
)

// Run starts the HTTP server with the given options and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	level := new(slog.LevelVar)
	level.Set(cfg.App.LogLevel)
	log := logger.New(os.Stdout, level, cfg.App.LogPretty)
	slog.SetDefault(log)

	log.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("db_driver", cfg.Database.Driver),
		slog.Int("max_page_size", cfg.Pagination.MaxSize),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	broker := sse.NewBroker(30 * time.Second)
	defer broker.Close()

	users, notes := newServices(db, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(pingCtx); err != nil {
			log.Warn("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	r.Mount("/api", api.NewRouter(users, notes, broker, cfg.Pagination.MaxSize))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if app.configPath != "" {
		g.Go(func() error {
			err := pkgconfig.Watch(gCtx, app.configPath, log, func() {
				reloadLogLevel(app.configPath, level, log)
			})
			if err != nil {
				log.Warn("config reload disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
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
			log.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			log.Info("Context cancelled, initiating shutdown")
		}

		log.Info("Shutting down server...")

		// Open event streams only end when their clients leave or the
		// broker closes.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		log.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	log.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the config watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio. Logs go to stderr because stdout
// carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	log := logger.New(os.Stderr, cfg.App.LogLevel, cfg.App.LogPretty)
	slog.SetDefault(log)

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	users, notes := newServices(db, nil)
	return mcpserver.New(users, notes, cfg.Pagination.MaxSize).ServeStdio()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func openDatabase(ctx context.Context, cfg *Config, log *slog.Logger) (*database.DB, error) {
	db, err := database.Open(ctx, database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		PingAttempts: uint(cfg.Database.PingAttempts),
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Database.ApplySchema {
		if err := storage.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}
	return db, nil
}

// newServices wires the gateways and orchestrators. broker may be nil.
func newServices(db *database.DB, broker *sse.Broker) (*userservice.Service, *noteservice.Service) {
	usersStore := storage.NewUsers(db)
	notesStore := storage.NewNotes(db)

	userOpts := []userservice.Option{userservice.WithTx(db)}
	noteOpts := []noteservice.Option{noteservice.WithTx(db)}
	if broker != nil {
		userOpts = append(userOpts, userservice.WithPublisher(broker))
		noteOpts = append(noteOpts, noteservice.WithPublisher(broker))
	}

	return userservice.NewService(usersStore, userOpts...),
		noteservice.NewService(usersStore, notesStore, noteOpts...)
}

func reloadLogLevel(path string, level *slog.LevelVar, log *slog.Logger) {
	next := NewDefaultConfig()
	if err := pkgconfig.Load(path, next); err != nil {
		log.Warn("config reload failed", slog.String("error", err.Error()))
		return
	}
	if next.App.LogLevel != level.Level() {
		log.Info("log level changed",
			slog.String("from", level.Level().String()),
			slog.String("to", next.App.LogLevel.String()))
		level.Set(next.App.LogLevel)
	}
}

func writeStatus(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, msg)
}
