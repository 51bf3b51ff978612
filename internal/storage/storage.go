// Package storage selects the document store backend.
package storage

import (
	"context"
	"fmt"
	"time"

	"dealership_reviews/internal/domain"
	"dealership_reviews/internal/shared"
	"dealership_reviews/internal/storage/memory"
	mongostore "dealership_reviews/internal/storage/mongo"
	mysqlstore "dealership_reviews/internal/storage/mysql"
	"dealership_reviews/internal/storage/sqlite"
)

// Open creates a Store based on cfg.StoreBackend.
//
// Supported backends:
//
//	"mongo"  - MongoDB at cfg.MongoURI (default)
//	"mysql"  - MySQL at cfg.MySQLDSN, JSON document columns
//	"sqlite" - single file at cfg.SQLitePath
//	"memory" - in-process (ephemeral, for tests and local runs)
func Open(ctx context.Context, cfg shared.Config) (domain.Store, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	switch cfg.StoreBackend {
	case "mongo", "":
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB, timeout)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mysql":
		s, err := mysqlstore.Open(ctx, cfg.MySQLDSN, timeout)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: mongo, mysql, sqlite, memory)", cfg.StoreBackend)
	}
}

// defaultConnectTimeout bounds the startup handshake when none is configured.
const defaultConnectTimeout = 30 * time.Second
