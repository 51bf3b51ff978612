//go:build integration

package mysql_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"dealership_reviews/internal/domain"
	mysqlstore "dealership_reviews/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string  { return &s }
func pint64(v int64) *int64 { return &v }

// ---------- the test ----------
func TestStore_MySQL_ResetQueryInsert(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=dealerships",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/dealerships?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var store *mysqlstore.Store
	if err := pool.Retry(func() error {
		var e error
		store, e = mysqlstore.Open(context.Background(), dsn, 5*time.Second)
		return e
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	ctx := context.Background()

	// Arrange
	reviews := []domain.Review{
		{ID: 1, Name: pstr("Ana"), Dealership: pint64(15)},
		{ID: 7, Name: pstr("Bob"), Dealership: pint64(15)},
		{ID: 2, Name: pstr("Cy")},
	}
	dealers := []domain.Dealership{
		{ID: 5, State: "NY", Attributes: map[string]any{"city": "Albany"}},
		{ID: 15, State: "Texas"},
	}
	for i := 0; i < 2; i++ {
		if err := store.ResetReviews(ctx, reviews); err != nil {
			t.Fatalf("ResetReviews: %v", err)
		}
		if err := store.ResetDealerships(ctx, dealers); err != nil {
			t.Fatalf("ResetDealerships: %v", err)
		}
	}

	// Assert
	all, err := store.ListReviews(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListReviews: n=%d err=%v", len(all), err)
	}
	if all[2].Dealership != nil {
		t.Fatalf("absent dealership should stay absent: %+v", all[2])
	}
	byDealer, _ := store.ListReviewsByDealer(ctx, 15)
	if len(byDealer) != 2 {
		t.Fatalf("ListReviewsByDealer: %+v", byDealer)
	}
	ny, _ := store.ListDealershipsByState(ctx, "NY")
	if len(ny) != 1 || ny[0].ID != 5 || ny[0].Attributes["city"] != "Albany" {
		t.Fatalf("ListDealershipsByState: %+v", ny)
	}
	for _, state := range []string{"ny", "Ny", "texas"} {
		got, err := store.ListDealershipsByState(ctx, state)
		if err != nil || len(got) != 0 {
			t.Fatalf("state %q must not match case-insensitively: %+v err=%v", state, got, err)
		}
	}
	byID, _ := store.FindDealerships(ctx, 15)
	if len(byID) != 1 || byID[0].State != "Texas" {
		t.Fatalf("FindDealerships: %+v", byID)
	}

	id, err := store.NextReviewID(ctx)
	if err != nil || id != 8 {
		t.Fatalf("NextReviewID: got %d err=%v, want 8", id, err)
	}
	if err := store.InsertReview(ctx, domain.Review{ID: id, Name: pstr("Dee")}); err != nil {
		t.Fatalf("InsertReview: %v", err)
	}
	all, _ = store.ListReviews(ctx)
	if len(all) != 4 || all[3].ID != 8 {
		t.Fatalf("inserted review missing: %+v", all)
	}
}
