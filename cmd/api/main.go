// Package main is the entry point for the masjid admin API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for goose

	"github.com/pkordes/masjid-admin/internal/config"
	"github.com/pkordes/masjid-admin/internal/events"
	"github.com/pkordes/masjid-admin/internal/handler"
	"github.com/pkordes/masjid-admin/internal/middleware"
	"github.com/pkordes/masjid-admin/internal/redisstore"
	"github.com/pkordes/masjid-admin/internal/repo"
	"github.com/pkordes/masjid-admin/internal/service"
	"github.com/pkordes/masjid-admin/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Database ---------------------------------------------------------
	if cfg.RunMigrations {
		if err := migrate(ctx, cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Redis ------------------------------------------------------------
	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("redis connection established")

	// --- Events -----------------------------------------------------------
	hub := events.NewHub()
	go hub.Run(ctx)
	broadcaster := events.NewBroadcaster(hub)

	scheduler := events.NewScheduler(broadcaster, cfg.DefaultTimezone)
	if err := scheduler.Start(ctx); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// --- Services ---------------------------------------------------------
	monthCache := redisstore.NewMonthCache(rdb, cfg.MonthCacheTTL)
	prayers := service.NewPrayerTimeService(
		repo.NewPrayerTimeRepo(pool),
		repo.NewMasjidRepo(pool),
		monthCache,
		service.Invalidators{monthCache, broadcaster},
		cfg.HijriAdjustDays,
	)
	calendar := service.NewCalendarService(prayers, cfg.DefaultTimezone)
	imports := service.NewImportService(redisstore.NewSessionStore(rdb, cfg.ImportSessionTTL), prayers)
	export := service.NewExportService(prayers)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit. CORS sits after Recoverer so preflight responses
	// are logged like any other request.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxUploadBytes))

	srvHandler := handler.NewServer(prayers, calendar, imports, export, hub)
	r.Mount("/", srvHandler.Routes(middleware.NewAuthHandler(cfg.JWTSecret)))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris; uploads need more than a JSON call.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations over a short-lived database/sql
// connection, since goose does not speak pgxpool.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "count", n)
	return nil
}
