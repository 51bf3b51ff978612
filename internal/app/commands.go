package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"dealership_reviews/internal/domain"
)

type InsertService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	validate *validator.Validate
}

// NewInsertService wires the write side. c may be nil.
func NewInsertService(r domain.ReviewRepository, c domain.Cache) *InsertService {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names in validation errors
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &InsertService{repo: r, cache: c, validate: v}
}

// Decode parses a raw payload into a ReviewInput. Malformed JSON, a
// non-object payload, or a failed field rule yields domain.ErrInvalidInput.
// Missing fields are allowed.
func (s *InsertService) Decode(body []byte) (domain.ReviewInput, error) {
	var in domain.ReviewInput
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return in, fmt.Errorf("%w: payload must be a JSON object", domain.ErrInvalidInput)
	}
	if err := json.Unmarshal(trimmed, &in); err != nil {
		return in, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return in, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, "; "))
		}
		return in, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return in, nil
}

// Insert allocates the next id from the store's atomic counter, then persists
// the review with every input field copied verbatim.
func (s *InsertService) Insert(ctx context.Context, in domain.ReviewInput) (domain.Review, error) {
	id, err := s.repo.NextReviewID(ctx)
	if err != nil {
		return domain.Review{}, fmt.Errorf("allocate review id: %w", err)
	}
	rv := in.ToReview(id)
	if err := s.repo.InsertReview(ctx, rv); err != nil {
		return domain.Review{}, fmt.Errorf("insert review %d: %w", id, err)
	}

	if s.cache != nil {
		keys := []string{allReviewsKey}
		if rv.Dealership != nil {
			keys = append(keys, dealerReviewsKey(*rv.Dealership))
		}
		if err := s.cache.Del(ctx, keys...); err != nil {
			log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
		}
	}
	return rv, nil
}

// InsertRaw decodes and inserts in one step.
func (s *InsertService) InsertRaw(ctx context.Context, body []byte) (domain.Review, error) {
	in, err := s.Decode(body)
	if err != nil {
		return domain.Review{}, err
	}
	return s.Insert(ctx, in)
}
