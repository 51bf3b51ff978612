package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"dealership_reviews/internal/adapters/observability"
	"dealership_reviews/internal/domain"
)

const (
	reviewsColl     = "reviews"
	dealershipsColl = "dealerships"
	countersColl    = "counters"
	reviewsCounter  = "reviews"
)

// Store is a MongoDB-backed document store. Review ids come from a counter
// document advanced with $inc, so concurrent inserts never collide.
type Store struct {
	client      *mongo.Client
	reviews     *mongo.Collection
	dealerships *mongo.Collection
	counters    *mongo.Collection
}

// Connect dials uri and pings the primary; the whole handshake is bounded by timeout.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return New(client, dbName), nil
}

func New(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		client:      client,
		reviews:     db.Collection(reviewsColl),
		dealerships: db.Collection(dealershipsColl),
		counters:    db.Collection(countersColl),
	}
}

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

// ---- reviews ----

func (s *Store) ResetReviews(ctx context.Context, rs []domain.Review) (err error) {
	defer observability.ObserveStore("mongo", "reset_reviews", time.Now(), &err)

	if _, err := s.reviews.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("mongo: delete reviews: %w", err)
	}
	if len(rs) > 0 {
		if _, err := s.reviews.InsertMany(ctx, rs); err != nil {
			return fmt.Errorf("mongo: insert reviews: %w", err)
		}
	}
	_, err = s.reviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "dealership", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: review indexes: %w", err)
	}

	// the counter restarts at the seeded maximum so the next insert gets max+1
	_, err = s.counters.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: reviewsCounter}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "seq", Value: domain.MaxReviewID(rs)}}}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo: reset review counter: %w", err)
	}
	return nil
}

func (s *Store) NextReviewID(ctx context.Context) (id int64, err error) {
	defer observability.ObserveStore("mongo", "next_review_id", time.Now(), &err)

	res := s.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: reviewsCounter}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	if err := res.Decode(&doc); err != nil {
		return 0, fmt.Errorf("mongo: advance review counter: %w", err)
	}
	return doc.Seq, nil
}

func (s *Store) InsertReview(ctx context.Context, r domain.Review) (err error) {
	defer observability.ObserveStore("mongo", "insert_review", time.Now(), &err)
	if _, err := s.reviews.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("mongo: insert review: %w", err)
	}
	return nil
}

func (s *Store) ListReviews(ctx context.Context) ([]domain.Review, error) {
	return s.findReviews(ctx, bson.D{})
}

func (s *Store) ListReviewsByDealer(ctx context.Context, dealerID int64) ([]domain.Review, error) {
	return s.findReviews(ctx, bson.D{{Key: "dealership", Value: dealerID}})
}

func (s *Store) findReviews(ctx context.Context, filter bson.D) (out []domain.Review, err error) {
	defer observability.ObserveStore("mongo", "find_reviews", time.Now(), &err)
	cur, err := s.reviews.Find(ctx, filter, withoutObjectID())
	if err != nil {
		return nil, fmt.Errorf("mongo: find reviews: %w", err)
	}
	out = []domain.Review{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode reviews: %w", err)
	}
	if out == nil {
		out = []domain.Review{}
	}
	return out, nil
}

// ---- dealerships ----

func (s *Store) ResetDealerships(ctx context.Context, ds []domain.Dealership) (err error) {
	defer observability.ObserveStore("mongo", "reset_dealerships", time.Now(), &err)

	if _, err := s.dealerships.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("mongo: delete dealerships: %w", err)
	}
	if len(ds) > 0 {
		if _, err := s.dealerships.InsertMany(ctx, ds); err != nil {
			return fmt.Errorf("mongo: insert dealerships: %w", err)
		}
	}
	_, err = s.dealerships.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "state", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: dealership indexes: %w", err)
	}
	return nil
}

func (s *Store) ListDealerships(ctx context.Context) ([]domain.Dealership, error) {
	return s.findDealerships(ctx, bson.D{})
}

func (s *Store) ListDealershipsByState(ctx context.Context, state string) ([]domain.Dealership, error) {
	return s.findDealerships(ctx, bson.D{{Key: "state", Value: state}})
}

func (s *Store) FindDealerships(ctx context.Context, id int64) ([]domain.Dealership, error) {
	return s.findDealerships(ctx, bson.D{{Key: "id", Value: id}})
}

func (s *Store) findDealerships(ctx context.Context, filter bson.D) (out []domain.Dealership, err error) {
	defer observability.ObserveStore("mongo", "find_dealerships", time.Now(), &err)
	cur, err := s.dealerships.Find(ctx, filter, withoutObjectID())
	if err != nil {
		return nil, fmt.Errorf("mongo: find dealerships: %w", err)
	}
	out = []domain.Dealership{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode dealerships: %w", err)
	}
	if out == nil {
		out = []domain.Dealership{}
	}
	return out, nil
}

// withoutObjectID hides the store's internal _id; only the business id is exposed.
func withoutObjectID() *options.FindOptionsBuilder {
	return options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}})
}
