package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "dealership_reviews/internal/adapters/http_server"
	"dealership_reviews/internal/adapters/observability"
	redisad "dealership_reviews/internal/adapters/redis"
	"dealership_reviews/internal/adapters/seedfile"
	"dealership_reviews/internal/app"
	"dealership_reviews/internal/domain"
	"dealership_reviews/internal/shared"
	"dealership_reviews/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// store
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("store connection failed")
	}
	log.Info().Str("backend", cfg.StoreBackend).Msg("store connection ok")

	// cache is optional; a nil domain.Cache turns read-through off
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; query cache disabled")
			_ = rc.Close()
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	// seed before the listener binds
	seeder := app.NewSeedService(seedfile.New(cfg.ReviewsFile, cfg.DealershipsFile), store, store, cache)
	stats, err := seeder.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Int("reviews", stats.Reviews).Int("dealerships", stats.Dealerships).Msg("seed complete")

	q := app.NewQueryService(store, store, cache, cfg.CacheTTL)
	ins := app.NewInsertService(store, cache)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, I: ins})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		log.Warn().Err(err).Msg("store close failed")
	}
	log.Info().Msg("API stopped")
}
