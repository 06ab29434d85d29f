// Package main is the entry point for the PatiMap API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/patimap/backend/internal/config"
	"github.com/patimap/backend/internal/feed"
	"github.com/patimap/backend/internal/geocode"
	"github.com/patimap/backend/internal/handler"
	"github.com/patimap/backend/internal/identity"
	"github.com/patimap/backend/internal/middleware"
	"github.com/patimap/backend/internal/observability"
	"github.com/patimap/backend/internal/repo"
	"github.com/patimap/backend/internal/service"
	"github.com/patimap/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	// .env is a development convenience; in production the variables come
	// from the environment and the file simply does not exist.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	if cfg.LogFormat == "text" {
		logHandler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := migrate(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	metrics := observability.NewMetrics()

	stationRepo := repo.NewStationRepo(pool)
	helpRepo := repo.NewHelpEventRepo(pool)
	notificationRepo := repo.NewNotificationRepo(pool)
	profileRepo := repo.NewProfileRepo(pool)

	resolver := geocode.NewClient(cfg.GoogleMapsAPIKey, cfg.GeocodeTimeout, metrics, logger)
	registry := service.NewStationRegistry(stationRepo, notificationRepo, resolver, metrics, logger)
	recorder := service.NewHelpRecorder(registry, stationRepo, helpRepo, notificationRepo, metrics, logger)
	names := identity.NewResolver(profileRepo, logger)

	// Warm the marker cache so FindByID works before the first List call.
	if _, err := registry.List(context.Background()); err != nil {
		slog.Warn("initial station load failed", "error", err)
	}

	// --- Live feed --------------------------------------------------------
	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()

	listener := repo.NewListener(cfg.DatabaseURL, logger)
	notificationFeed := feed.New(notificationRepo, listener, metrics, logger)

	go func() {
		if err := listener.Run(feedCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("notification listener stopped", "error", err)
		}
	}()
	go notificationFeed.Run(feedCtx)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger →
	// Recoverer → CORS → body size limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(registry, recorder, notificationFeed, names, logger)
	srv.Routes(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// --- HTTP Server ------------------------------------------------------
	// No WriteTimeout: /api/notifications/stream holds the response open
	// indefinitely; the keepalive ticker detects dead clients instead.
	httpSrv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")
	stopFeed()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies all pending goose migrations from the embedded FS.
func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("applied migration", "migration", res.Source.Path)
	}
	return nil
}
