package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"dealership_reviews/internal/shared"
	"dealership_reviews/internal/storage"
	"dealership_reviews/internal/storage/memory"
	"dealership_reviews/internal/storage/sqlite"
)

func TestOpen_Memory(t *testing.T) {
	s, err := storage.Open(context.Background(), shared.Config{StoreBackend: "memory"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := s.(*memory.Store); !ok {
		t.Fatalf("expected *memory.Store, got %T", s)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := storage.Open(context.Background(), shared.Config{StoreBackend: "cassandra"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestOpen_SQLite(t *testing.T) {
	cfg := shared.Config{StoreBackend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "test.db")}
	s, err := storage.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer s.Close(context.Background())
	if _, ok := s.(*sqlite.Store); !ok {
		t.Fatalf("expected *sqlite.Store, got %T", s)
	}
}
