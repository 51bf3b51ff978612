package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"dealership_reviews/internal/adapters/observability"
	"dealership_reviews/internal/domain"
)

// rows per bulk INSERT; keeps statements well under max_allowed_packet
const insertBatch = 500

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// Store keeps each document as a JSON column next to the indexed lookup columns.
type Store struct{ db *sql.DB }

func New(db *sql.DB) *Store { return &Store{db: db} }

// Open connects, pings within timeout and applies migrations.
func Open(ctx context.Context, dsn string, timeout time.Duration) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: migrate: %w", err)
	}
	return New(db), nil
}

func (s *Store) Close(ctx context.Context) error { return s.db.Close() }

// ---- reviews ----

func (s *Store) ResetReviews(ctx context.Context, rs []domain.Review) (err error) {
	defer observability.ObserveStore("mysql", "reset_reviews", time.Now(), &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteReviewsSQL); err != nil {
		return fmt.Errorf("mysql: delete reviews: %w", err)
	}
	for start := 0; start < len(rs); start += insertBatch {
		end := min(start+insertBatch, len(rs))
		if err = insertReviews(ctx, tx, rs[start:end]); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, resetSequenceSQL, reviewSequence, domain.MaxReviewID(rs)); err != nil {
		return fmt.Errorf("mysql: reset review sequence: %w", err)
	}
	return tx.Commit()
}

func insertReviews(ctx context.Context, tx *sql.Tx, rs []domain.Review) error {
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*3)
	for _, rv := range rs {
		doc, err := json.Marshal(rv)
		if err != nil {
			return fmt.Errorf("mysql: encode review %d: %w", rv.ID, err)
		}
		values = append(values, "(?,?,?)")
		args = append(args, rv.ID, valInt64(rv.Dealership), string(doc))
	}
	if _, err := tx.ExecContext(ctx, insertReviewsPrefix+strings.Join(values, ","), args...); err != nil {
		return fmt.Errorf("mysql: insert reviews: %w", err)
	}
	return nil
}

func (s *Store) NextReviewID(ctx context.Context) (id int64, err error) {
	defer observability.ObserveStore("mysql", "next_review_id", time.Now(), &err)
	res, err := s.db.ExecContext(ctx, nextSequenceSQL, reviewSequence)
	if err != nil {
		return 0, fmt.Errorf("mysql: advance review sequence: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertReview(ctx context.Context, r domain.Review) (err error) {
	defer observability.ObserveStore("mysql", "insert_review", time.Now(), &err)
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, insertReviewsPrefix+"(?,?,?)", r.ID, valInt64(r.Dealership), string(doc))
	if err != nil {
		return fmt.Errorf("mysql: insert review: %w", err)
	}
	return nil
}

func (s *Store) ListReviews(ctx context.Context) ([]domain.Review, error) {
	return queryDocs[domain.Review](ctx, s.db, "find_reviews", listReviewsSQL)
}

func (s *Store) ListReviewsByDealer(ctx context.Context, dealerID int64) ([]domain.Review, error) {
	return queryDocs[domain.Review](ctx, s.db, "find_reviews", listReviewsByDealerSQL, dealerID)
}

// ---- dealerships ----

func (s *Store) ResetDealerships(ctx context.Context, ds []domain.Dealership) (err error) {
	defer observability.ObserveStore("mysql", "reset_dealerships", time.Now(), &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteDealershipsSQL); err != nil {
		return fmt.Errorf("mysql: delete dealerships: %w", err)
	}
	for start := 0; start < len(ds); start += insertBatch {
		end := min(start+insertBatch, len(ds))
		if err = insertDealerships(ctx, tx, ds[start:end]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertDealerships(ctx context.Context, tx *sql.Tx, ds []domain.Dealership) error {
	values := make([]string, 0, len(ds))
	args := make([]any, 0, len(ds)*3)
	for _, d := range ds {
		doc, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("mysql: encode dealership %d: %w", d.ID, err)
		}
		values = append(values, "(?,?,?)")
		args = append(args, d.ID, d.State, string(doc))
	}
	if _, err := tx.ExecContext(ctx, insertDealershipsPrefix+strings.Join(values, ","), args...); err != nil {
		return fmt.Errorf("mysql: insert dealerships: %w", err)
	}
	return nil
}

func (s *Store) ListDealerships(ctx context.Context) ([]domain.Dealership, error) {
	return queryDocs[domain.Dealership](ctx, s.db, "find_dealerships", listDealershipsSQL)
}

func (s *Store) ListDealershipsByState(ctx context.Context, state string) ([]domain.Dealership, error) {
	return queryDocs[domain.Dealership](ctx, s.db, "find_dealerships", listDealershipsByStateSQL, state)
}

func (s *Store) FindDealerships(ctx context.Context, id int64) ([]domain.Dealership, error) {
	return queryDocs[domain.Dealership](ctx, s.db, "find_dealerships", findDealershipsSQL, id)
}

// queryDocs runs a single-column "SELECT doc" query and decodes every row.
func queryDocs[T any](ctx context.Context, db *sql.DB, op, query string, args ...any) (out []T, err error) {
	defer observability.ObserveStore("mysql", op, time.Now(), &err)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = []T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("mysql: decode %s: %w", op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
