package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Review is a customer review of a dealership. Every field except ID is
// optional; absent fields stay absent in storage and in JSON output.
type Review struct {
	ID           int64   `json:"id" bson:"id"`
	Name         *string `json:"name,omitempty" bson:"name,omitempty"`
	Dealership   *int64  `json:"dealership,omitempty" bson:"dealership,omitempty"`
	Review       *string `json:"review,omitempty" bson:"review,omitempty"`
	Purchase     *bool   `json:"purchase,omitempty" bson:"purchase,omitempty"`
	PurchaseDate *string `json:"purchase_date,omitempty" bson:"purchase_date,omitempty"`
	CarMake      *string `json:"car_make,omitempty" bson:"car_make,omitempty"`
	CarModel     *string `json:"car_model,omitempty" bson:"car_model,omitempty"`
	CarYear      *int    `json:"car_year,omitempty" bson:"car_year,omitempty"`
}

// ReviewInput is the accepted shape of an insert_review payload.
// Unknown keys are ignored; any client-supplied id is never trusted.
type ReviewInput struct {
	Name         *string `json:"name" validate:"omitempty,max=200"`
	Dealership   *int64  `json:"dealership" validate:"omitempty,gt=0"`
	Review       *string `json:"review" validate:"omitempty,max=5000"`
	Purchase     *bool   `json:"purchase"`
	PurchaseDate *string `json:"purchase_date" validate:"omitempty,max=64"`
	CarMake      *string `json:"car_make" validate:"omitempty,max=100"`
	CarModel     *string `json:"car_model" validate:"omitempty,max=100"`
	CarYear      *int    `json:"car_year" validate:"omitempty,gte=1886,lte=2100"`
}

// UnmarshalJSON accepts numbers written as text ("15", "2023", "15.0") for
// dealership and car_year, and "true"/"false" for purchase. Text that does
// not convert is an error; an empty string counts as absent.
func (in *ReviewInput) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for key, conv := range map[string]func(string) (string, error){
		"dealership": wholeNumberText,
		"car_year":   wholeNumberText,
		"purchase":   boolText,
	} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		norm, err := normalizeScalar(v, conv)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		raw[key] = norm
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	type plain ReviewInput
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*in = ReviewInput(p)
	return nil
}

// normalizeScalar rewrites a quoted value, or a fractional number, into the
// JSON literal conv returns. Anything else is left for the typed decode.
func normalizeScalar(v json.RawMessage, conv func(string) (string, error)) (json.RawMessage, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return v, nil
	}
	var text string
	switch {
	case v[0] == '"':
		if err := json.Unmarshal(v, &text); err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			return json.RawMessage("null"), nil
		}
	case bytes.ContainsAny(v, ".eE") && (v[0] == '-' || (v[0] >= '0' && v[0] <= '9')):
		text = string(v)
	default:
		return v, nil
	}
	lit, err := conv(text)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(lit), nil
}

func wholeNumberText(s string) (string, error) {
	n, err := ParseWholeNumber(s)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}

func boolText(s string) (string, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%q is not a boolean", s)
	}
	return strconv.FormatBool(b), nil
}

// ToReview copies every field verbatim into a Review carrying the given id.
func (in ReviewInput) ToReview(id int64) Review {
	return Review{
		ID:           id,
		Name:         in.Name,
		Dealership:   in.Dealership,
		Review:       in.Review,
		Purchase:     in.Purchase,
		PurchaseDate: in.PurchaseDate,
		CarMake:      in.CarMake,
		CarModel:     in.CarModel,
		CarYear:      in.CarYear,
	}
}

// MaxReviewID returns the largest id in rs, or 0 when rs is empty.
func MaxReviewID(rs []Review) int64 {
	var max int64
	for _, r := range rs {
		if r.ID > max {
			max = r.ID
		}
	}
	return max
}
