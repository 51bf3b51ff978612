package app_test

import (
	"context"
	"errors"
	"testing"

	"dealership_reviews/internal/app"
	"dealership_reviews/internal/domain"
	"dealership_reviews/internal/storage/memory"
)

type fakeSource struct {
	rs    []domain.Review
	ds    []domain.Dealership
	dsErr error
}

func (f fakeSource) LoadReviews() ([]domain.Review, error)         { return f.rs, nil }
func (f fakeSource) LoadDealerships() ([]domain.Dealership, error) { return f.ds, f.dsErr }

func TestSeed_ReplacesExistingData(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	// pre-existing data is destroyed by the reset
	_ = s.InsertReview(ctx, domain.Review{ID: 100})

	src := fakeSource{
		rs: []domain.Review{{ID: 1}, {ID: 2}},
		ds: []domain.Dealership{{ID: 5, State: "NY"}},
	}
	cache := &fakeCache{}
	_ = cache.Set(ctx, "reviews:all", []domain.Review{{ID: 100}}, 60)

	svc := app.NewSeedService(src, s, s, cache)
	for i := 0; i < 2; i++ {
		stats, err := svc.Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if stats.Reviews != 2 || stats.Dealerships != 1 {
			t.Fatalf("unexpected stats: %+v", stats)
		}
	}

	rs, _ := s.ListReviews(ctx)
	ds, _ := s.ListDealerships(ctx)
	if len(rs) != 2 || len(ds) != 1 {
		t.Fatalf("expected 2 reviews and 1 dealer, got %d and %d", len(rs), len(ds))
	}
	if _, ok := cache.store["reviews:all"]; ok {
		t.Fatalf("stale cache entry survived the seed")
	}
}

func TestSeed_LoadFailureLeavesStoreUntouched(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	_ = s.ResetReviews(ctx, []domain.Review{{ID: 9}})

	boom := errors.New("bad file")
	svc := app.NewSeedService(fakeSource{rs: []domain.Review{{ID: 1}}, dsErr: boom}, s, s, nil)
	if _, err := svc.Run(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	rs, _ := s.ListReviews(ctx)
	if len(rs) != 1 || rs[0].ID != 9 {
		t.Fatalf("store changed despite load failure: %+v", rs)
	}
}
