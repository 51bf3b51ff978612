// Package sqlite stores both collections in a single SQLite file.
//
// Tables:
//
//	reviews(pk, id, dealership, doc)
//	dealerships(pk, id, state, doc)
//	id_sequences(name, seq)
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"dealership_reviews/internal/adapters/observability"
	"dealership_reviews/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS reviews (
	pk         INTEGER PRIMARY KEY AUTOINCREMENT,
	id         INTEGER NOT NULL,
	dealership INTEGER,
	doc        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reviews_dealership ON reviews (dealership);
CREATE TABLE IF NOT EXISTS dealerships (
	pk    INTEGER PRIMARY KEY AUTOINCREMENT,
	id    INTEGER NOT NULL,
	state TEXT NOT NULL,
	doc   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dealerships_id ON dealerships (id);
CREATE INDEX IF NOT EXISTS idx_dealerships_state ON dealerships (state);
CREATE TABLE IF NOT EXISTS id_sequences (
	name TEXT PRIMARY KEY,
	seq  INTEGER NOT NULL
);`

// The upsert and RETURNING run as one statement, so two inserts never read the same value.
const nextSequenceSQL = `
INSERT INTO id_sequences (name, seq) VALUES (?, 1)
ON CONFLICT(name) DO UPDATE SET seq = seq + 1
RETURNING seq`

const resetSequenceSQL = `
INSERT INTO id_sequences (name, seq) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET seq = excluded.seq`

const reviewSequence = "reviews"

type Store struct{ db *sql.DB }

// Open creates the file (and its directory) when missing and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer at a time; avoids SQLITE_BUSY under concurrent inserts
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close(ctx context.Context) error { return s.db.Close() }

func (s *Store) ResetReviews(ctx context.Context, rs []domain.Review) (err error) {
	defer observability.ObserveStore("sqlite", "reset_reviews", time.Now(), &err)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews`); err != nil {
			return fmt.Errorf("sqlite: delete reviews: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO reviews (id, dealership, doc) VALUES (?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, rv := range rs {
			doc, err := json.Marshal(rv)
			if err != nil {
				return fmt.Errorf("sqlite: encode review %d: %w", rv.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, rv.ID, rv.Dealership, string(doc)); err != nil {
				return fmt.Errorf("sqlite: insert review %d: %w", rv.ID, err)
			}
		}
		if _, err := tx.ExecContext(ctx, resetSequenceSQL, reviewSequence, domain.MaxReviewID(rs)); err != nil {
			return fmt.Errorf("sqlite: reset review sequence: %w", err)
		}
		return nil
	})
}

func (s *Store) NextReviewID(ctx context.Context) (id int64, err error) {
	defer observability.ObserveStore("sqlite", "next_review_id", time.Now(), &err)
	if err := s.db.QueryRowContext(ctx, nextSequenceSQL, reviewSequence).Scan(&id); err != nil {
		return 0, fmt.Errorf("sqlite: advance review sequence: %w", err)
	}
	return id, nil
}

func (s *Store) InsertReview(ctx context.Context, r domain.Review) (err error) {
	defer observability.ObserveStore("sqlite", "insert_review", time.Now(), &err)
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO reviews (id, dealership, doc) VALUES (?,?,?)`, r.ID, r.Dealership, string(doc)); err != nil {
		return fmt.Errorf("sqlite: insert review: %w", err)
	}
	return nil
}

func (s *Store) ListReviews(ctx context.Context) ([]domain.Review, error) {
	return queryDocs[domain.Review](ctx, s.db, "find_reviews", `SELECT doc FROM reviews ORDER BY pk`)
}

func (s *Store) ListReviewsByDealer(ctx context.Context, dealerID int64) ([]domain.Review, error) {
	return queryDocs[domain.Review](ctx, s.db, "find_reviews", `SELECT doc FROM reviews WHERE dealership = ? ORDER BY pk`, dealerID)
}

func (s *Store) ResetDealerships(ctx context.Context, ds []domain.Dealership) (err error) {
	defer observability.ObserveStore("sqlite", "reset_dealerships", time.Now(), &err)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dealerships`); err != nil {
			return fmt.Errorf("sqlite: delete dealerships: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO dealerships (id, state, doc) VALUES (?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, d := range ds {
			doc, err := json.Marshal(d)
			if err != nil {
				return fmt.Errorf("sqlite: encode dealership %d: %w", d.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, d.ID, d.State, string(doc)); err != nil {
				return fmt.Errorf("sqlite: insert dealership %d: %w", d.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) ListDealerships(ctx context.Context) ([]domain.Dealership, error) {
	return queryDocs[domain.Dealership](ctx, s.db, "find_dealerships", `SELECT doc FROM dealerships ORDER BY pk`)
}

func (s *Store) ListDealershipsByState(ctx context.Context, state string) ([]domain.Dealership, error) {
	return queryDocs[domain.Dealership](ctx, s.db, "find_dealerships", `SELECT doc FROM dealerships WHERE state = ? ORDER BY pk`, state)
}

// FindDealerships matches the business key column id, not the rowid.
func (s *Store) FindDealerships(ctx context.Context, id int64) ([]domain.Dealership, error) {
	return queryDocs[domain.Dealership](ctx, s.db, "find_dealerships", `SELECT doc FROM dealerships WHERE id = ? ORDER BY pk`, id)
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func queryDocs[T any](ctx context.Context, db *sql.DB, op, query string, args ...any) (out []T, err error) {
	defer observability.ObserveStore("sqlite", op, time.Now(), &err)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = []T{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("sqlite: decode %s: %w", op, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
