package domain

import "context"

type ReviewRepository interface {
	// Write paths
	ResetReviews(ctx context.Context, rs []Review) error
	NextReviewID(ctx context.Context) (int64, error)
	InsertReview(ctx context.Context, r Review) error

	// Read paths
	ListReviews(ctx context.Context) ([]Review, error)
	ListReviewsByDealer(ctx context.Context, dealerID int64) ([]Review, error)
}

type DealershipRepository interface {
	ResetDealerships(ctx context.Context, ds []Dealership) error

	ListDealerships(ctx context.Context) ([]Dealership, error)
	ListDealershipsByState(ctx context.Context, state string) ([]Dealership, error)
	// FindDealerships matches the business key field "id", not the store's
	// internal document identifier.
	FindDealerships(ctx context.Context, id int64) ([]Dealership, error)
}

// Store is a document store holding both collections.
type Store interface {
	ReviewRepository
	DealershipRepository
	Close(ctx context.Context) error
}

type SeedSource interface {
	LoadReviews() ([]Review, error)
	LoadDealerships() ([]Dealership, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, keys ...string) error
	DelPrefix(ctx context.Context, prefix string) error
}
