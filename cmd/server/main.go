// Command server runs the purchase insights HTTP API.
//
// Bootstrap order: env file, config, logging, tracing, SQLite (bucket list),
// CSV dataset, search index, router, HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-purchase-insights/internal/config"
	httpapi "github.com/tbourn/go-purchase-insights/internal/http"
	"github.com/tbourn/go-purchase-insights/internal/observability"
	"github.com/tbourn/go-purchase-insights/internal/repo"
	"github.com/tbourn/go-purchase-insights/internal/search"
	"github.com/tbourn/go-purchase-insights/internal/store"
	"github.com/tbourn/go-purchase-insights/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logging: level from config, pretty console output for dev.
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting purchase insights server")

	// Tracing (no-op unless OTEL_ENABLED).
	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	// Bucket list persistence.
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open sqlite failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("automigrate failed")
	}

	// Purchase dataset. A missing or malformed file is fatal; individually
	// bad rows are skipped and reported.
	st := store.NewStore()
	skipped, err := st.Load(cfg.CSVPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CSVPath).Msg("dataset load failed")
	}
	snap := st.Snapshot()
	log.Info().
		Int("records", snap.Len()).
		Int("skipped_rows", skipped).
		Int("users", len(snap.Users())).
		Int("categories", len(snap.Categories())).
		Msg("dataset loaded")

	// Item search index over the loaded snapshot.
	idx := search.NewIndex(snap.Items())

	// HTTP transport.
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, st, idx, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("bye")
}
