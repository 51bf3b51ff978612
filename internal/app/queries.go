package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"dealership_reviews/internal/domain"
)

type QueryService struct {
	reviews  domain.ReviewRepository
	dealers  domain.DealershipRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewQueryService wires the read side. c may be nil to disable caching.
func NewQueryService(r domain.ReviewRepository, d domain.DealershipRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{reviews: r, dealers: d, cache: c, cacheTTL: ttl}
}

// cache key layout, shared with the insert and seed paths for invalidation
const (
	reviewsPrefix = "reviews:"
	dealersPrefix = "dealers:"
	allReviewsKey = reviewsPrefix + "all"
	allDealersKey = dealersPrefix + "all"
)

// maxReviewsTTL caps how long a review list may be served from cache. A read
// that loaded before an insert can store its list after the insert's Del, so
// the cap bounds how long such a stale list survives.
const maxReviewsTTL = 30 * time.Second

func dealerReviewsKey(id int64) string { return fmt.Sprintf("reviews:dealer:%d", id) }

func (s *QueryService) ListReviews(ctx context.Context) ([]domain.Review, error) {
	return readThrough(ctx, s, allReviewsKey, func() ([]domain.Review, error) {
		return s.reviews.ListReviews(ctx)
	})
}

// ListReviewsByDealer takes the dealer id exactly as it arrived on the path.
func (s *QueryService) ListReviewsByDealer(ctx context.Context, rawID string) ([]domain.Review, error) {
	id, err := castID(rawID)
	if err != nil {
		return nil, err
	}
	return readThrough(ctx, s, dealerReviewsKey(id), func() ([]domain.Review, error) {
		return s.reviews.ListReviewsByDealer(ctx, id)
	})
}

func (s *QueryService) ListDealerships(ctx context.Context) ([]domain.Dealership, error) {
	return readThrough(ctx, s, allDealersKey, func() ([]domain.Dealership, error) {
		return s.dealers.ListDealerships(ctx)
	})
}

func (s *QueryService) ListDealershipsByState(ctx context.Context, state string) ([]domain.Dealership, error) {
	return readThrough(ctx, s, "dealers:state:"+state, func() ([]domain.Dealership, error) {
		return s.dealers.ListDealershipsByState(ctx, state)
	})
}

// FindDealerships filters on the dealership's literal "id" field.
func (s *QueryService) FindDealerships(ctx context.Context, rawID string) ([]domain.Dealership, error) {
	id, err := castID(rawID)
	if err != nil {
		return nil, err
	}
	return readThrough(ctx, s, fmt.Sprintf("dealers:id:%d", id), func() ([]domain.Dealership, error) {
		return s.dealers.FindDealerships(ctx, id)
	})
}

// castID converts a path segment to the numeric type the collections index
// on. "15", " 15 " and "15.0" all name dealer 15.
func castID(raw string) (int64, error) {
	id, err := domain.ParseWholeNumber(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %v", domain.ErrInvalidInput, err)
	}
	return id, nil
}

// readThrough serves key from cache when possible and fills it on a miss.
// Cache failures are logged and never fail the request.
func readThrough[T any](ctx context.Context, s *QueryService, key string, load func() ([]T, error)) ([]T, error) {
	if s.cache != nil {
		var hit []T
		ok, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if ok && hit != nil {
			return hit, nil
		}
	}

	out, err := load()
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, ttlSeconds(key, s.cacheTTL)); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return out, nil
}

// ttlSeconds returns the cache lifetime for key. Dealer lists only change on
// seed, which purges them; review lists are capped at maxReviewsTTL.
func ttlSeconds(key string, ttl time.Duration) int {
	if strings.HasPrefix(key, reviewsPrefix) && ttl > maxReviewsTTL {
		ttl = maxReviewsTTL
	}
	return int(ttl.Seconds())
}
