package main

import (
	"context"
	"flag"

	"github.com/rs/zerolog/log"

	"dealership_reviews/internal/adapters/observability"
	redisad "dealership_reviews/internal/adapters/redis"
	"dealership_reviews/internal/adapters/seedfile"
	"dealership_reviews/internal/app"
	"dealership_reviews/internal/domain"
	"dealership_reviews/internal/shared"
	"dealership_reviews/internal/storage"
)

// seed replaces both collections with the seed files and exits. Use it to
// reset a running deployment without restarting the API.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	reviewsFile := flag.String("reviews", cfg.ReviewsFile, "path to reviews seed file")
	dealersFile := flag.String("dealerships", cfg.DealershipsFile, "path to dealerships seed file")
	flag.Parse()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("backend", cfg.StoreBackend).
		Str("reviews", *reviewsFile).
		Str("dealerships", *dealersFile).
		Msg("seeder starting")

	if cfg.StoreBackend == "memory" {
		log.Fatal().Msg("memory backend cannot be seeded from outside the API process")
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store connection failed")
	}
	defer store.Close(ctx)

	// purge cached lookups so the API does not serve the old collections
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable; cached lookups not purged")
		} else {
			cache = rc
		}
	}

	stats, err := app.NewSeedService(seedfile.New(*reviewsFile, *dealersFile), store, store, cache).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Int("reviews", stats.Reviews).Int("dealerships", stats.Dealerships).Msg("seed completed")
}
