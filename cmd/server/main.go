package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/floor_report/backend/internal/config"
	"github.com/floor_report/backend/internal/db"
	httpapi "github.com/floor_report/backend/internal/http"
	"github.com/floor_report/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "floor-report").Logger()

	windows, err := config.LoadWindows(cfg.WindowsFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.WindowsFile).Msg("failed to load windows")
	}
	policy, err := service.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	var store service.RunStore
	if cfg.DatabaseURL == "" {
		store = db.NewMemoryStore()
		logger.Info().Msg("DATABASE_URL not set, runs kept in memory")
	} else {
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare schema")
		}
		store = pg
	}

	processor := &service.ProcessingService{
		Store:           store,
		Logger:          logger,
		Windows:         windows,
		DefaultWindow:   cfg.DefaultWindow,
		Location:        cfg.Location(),
		VehicleColumns:  service.NewKeywordColumnResolver(cfg.Keywords()),
		DuplicatePolicy: policy,
		Workers:         cfg.ParseWorkers,
	}

	router := httpapi.Router(cfg, processor, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Int("windows", len(windows)).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
