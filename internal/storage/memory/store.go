// Package memory keeps both collections in process memory. Data is lost on
// restart. Safe for concurrent use.
package memory

import (
	"context"
	"sync"
	"time"

	"dealership_reviews/internal/adapters/observability"
	"dealership_reviews/internal/domain"
)

type Store struct {
	mu          sync.RWMutex
	reviews     []domain.Review
	dealerships []domain.Dealership
	seq         int64
}

func New() *Store { return &Store{} }

func (s *Store) ResetReviews(ctx context.Context, rs []domain.Review) (err error) {
	defer observability.ObserveStore("memory", "reset_reviews", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append([]domain.Review(nil), rs...)
	s.seq = domain.MaxReviewID(rs)
	return nil
}

// NextReviewID allocates under the write lock, so concurrent callers never share an id.
func (s *Store) NextReviewID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func (s *Store) InsertReview(ctx context.Context, r domain.Review) (err error) {
	defer observability.ObserveStore("memory", "insert_review", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, r)
	return nil
}

func (s *Store) ListReviews(ctx context.Context) ([]domain.Review, error) {
	return s.filterReviews(ctx, func(domain.Review) bool { return true })
}

func (s *Store) ListReviewsByDealer(ctx context.Context, dealerID int64) ([]domain.Review, error) {
	return s.filterReviews(ctx, func(r domain.Review) bool {
		return r.Dealership != nil && *r.Dealership == dealerID
	})
}

func (s *Store) filterReviews(ctx context.Context, keep func(domain.Review) bool) (out []domain.Review, err error) {
	defer observability.ObserveStore("memory", "find_reviews", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out = []domain.Review{}
	for _, r := range s.reviews {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ResetDealerships(ctx context.Context, ds []domain.Dealership) (err error) {
	defer observability.ObserveStore("memory", "reset_dealerships", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dealerships = make([]domain.Dealership, len(ds))
	for i, d := range ds {
		s.dealerships[i] = copyDealership(d)
	}
	return nil
}

func (s *Store) ListDealerships(ctx context.Context) ([]domain.Dealership, error) {
	return s.filterDealerships(ctx, func(domain.Dealership) bool { return true })
}

func (s *Store) ListDealershipsByState(ctx context.Context, state string) ([]domain.Dealership, error) {
	return s.filterDealerships(ctx, func(d domain.Dealership) bool { return d.State == state })
}

func (s *Store) FindDealerships(ctx context.Context, id int64) ([]domain.Dealership, error) {
	return s.filterDealerships(ctx, func(d domain.Dealership) bool { return d.ID == id })
}

func (s *Store) filterDealerships(ctx context.Context, keep func(domain.Dealership) bool) (out []domain.Dealership, err error) {
	defer observability.ObserveStore("memory", "find_dealerships", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out = []domain.Dealership{}
	for _, d := range s.dealerships {
		if keep(d) {
			out = append(out, copyDealership(d))
		}
	}
	return out, nil
}

func (s *Store) Close(ctx context.Context) error { return nil }

// copyDealership detaches the attribute map so callers cannot mutate stored state.
func copyDealership(d domain.Dealership) domain.Dealership {
	if d.Attributes == nil {
		return d
	}
	attrs := make(map[string]any, len(d.Attributes))
	for k, v := range d.Attributes {
		attrs[k] = v
	}
	d.Attributes = attrs
	return d
}
