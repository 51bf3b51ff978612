package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"dealership_reviews/internal/adapters/observability"
	"dealership_reviews/internal/domain"
)

type SeedService struct {
	src     domain.SeedSource
	reviews domain.ReviewRepository
	dealers domain.DealershipRepository
	cache   domain.Cache
}

func NewSeedService(src domain.SeedSource, r domain.ReviewRepository, d domain.DealershipRepository, c domain.Cache) *SeedService {
	return &SeedService{src: src, reviews: r, dealers: d, cache: c}
}

type SeedStats struct {
	Reviews     int
	Dealerships int
}

// Run replaces both collections with the seed data. Both files are parsed
// before anything is deleted, so a bad seed leaves the store untouched.
func (s *SeedService) Run(ctx context.Context) (SeedStats, error) {
	rs, err := s.src.LoadReviews()
	if err != nil {
		return SeedStats{}, err
	}
	ds, err := s.src.LoadDealerships()
	if err != nil {
		return SeedStats{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.reviews.ResetReviews(gctx, rs); err != nil {
			return fmt.Errorf("reset reviews: %w", err)
		}
		log.Info().Int("count", len(rs)).Msg("reviews initialized")
		return nil
	})
	g.Go(func() error {
		if err := s.dealers.ResetDealerships(gctx, ds); err != nil {
			return fmt.Errorf("reset dealerships: %w", err)
		}
		log.Info().Int("count", len(ds)).Msg("dealerships initialized")
		return nil
	})
	if err := g.Wait(); err != nil {
		return SeedStats{}, err
	}

	if s.cache != nil {
		for _, p := range []string{reviewsPrefix, dealersPrefix} {
			if err := s.cache.DelPrefix(ctx, p); err != nil {
				log.Warn().Err(err).Str("prefix", p).Msg("cache purge failed")
			}
		}
	}

	observability.ObserveSeed("reviews", len(rs))
	observability.ObserveSeed("dealerships", len(ds))
	return SeedStats{Reviews: len(rs), Dealerships: len(ds)}, nil
}
