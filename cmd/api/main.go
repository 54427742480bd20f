package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"stylegen/internal/http/handlers"
	httpapi "stylegen/internal/http/httpapi"
	"stylegen/internal/infra"
	"stylegen/internal/metrics"
	"stylegen/internal/results"
	"stylegen/internal/service"
)

func main() {
	// Load .env when present.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := service.NewStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}

	m := metrics.New()
	orchestrator := service.NewOrchestrator(cfg, logger, m)

	app := handlers.NewApp(handlers.Options{
		Generator:      orchestrator,
		Store:          store,
		Results:        results.NewCache(cfg.ResultCacheTTL),
		Uploads:        m,
		Logger:         logger,
		BaseURL:        cfg.StorageBaseURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Concurrency:    cfg.BackendConcurrency,
	})

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:          logger,
		Requests:        m,
		Metrics:         m.Handler(),
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", server.Addr()).
			Str("backend", cfg.Backend).
			Str("device", cfg.BackendDevice).
			Str("storage", cfg.StorageBackend).
			Msg("API listening")
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
