// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

// Command eventfix runs the content platform with the calendar and
// slugfix modules installed.
package main

import (
	"context"
	"database/sql"
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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/cache"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/config"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/handler"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/logging"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/module"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/service"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/store"
	"github.com/iBook140/eventsmanager-wpml-fix/modules/calendar"
	"github.com/iBook140/eventsmanager-wpml-fix/modules/slugfix"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.Env)
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	logger.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			logger.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	queries := store.New(db)

	backend, err := cache.NewBackend(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	postCache := cache.NewPostCache(backend, queries)
	defer func() {
		if err := postCache.Close(); err != nil {
			logger.Error("error closing cache", "error", err)
		}
	}()
	logger.Info("cache ready", "redis", cfg.UseRedisCache())

	hooks := module.NewHookRegistry(logger)
	types := module.NewTypeRegistry()
	slugs := service.NewSlugService(queries)

	registry := module.NewRegistry(logger)
	// calendar registers first so its type tags are visible to slugfix
	for _, m := range []module.Module{calendar.New(), slugfix.New()} {
		if err := registry.Register(m); err != nil {
			return err
		}
	}
	if err := registry.MigrateAll(db); err != nil {
		return fmt.Errorf("running module migrations: %w", err)
	}
	if err := registry.InitAll(&module.Context{
		DB:      db,
		Queries: queries,
		Logger:  logger,
		Config:  cfg,
		Hooks:   hooks,
		Cache:   postCache,
		Slugs:   slugs,
		Types:   types,
	}); err != nil {
		return fmt.Errorf("initializing modules: %w", err)
	}
	defer registry.ShutdownAll()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.IsDevelopment() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler.NewPostHandler(queries, postCache, hooks, logger).Routes(r)
	registry.MountRoutes(r)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.ServerAddr())
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
	}
	return nil
}
