package seedfile

import (
	"encoding/json"
	"fmt"
	"os"

	"dealership_reviews/internal/domain"
)

// Loader reads the two seed documents from disk. Each file is a JSON object
// holding a single top-level array: {"reviews":[...]} and {"dealerships":[...]}.
type Loader struct {
	reviewsPath     string
	dealershipsPath string
}

func New(reviewsPath, dealershipsPath string) *Loader {
	return &Loader{reviewsPath: reviewsPath, dealershipsPath: dealershipsPath}
}

func (l *Loader) LoadReviews() ([]domain.Review, error) {
	var doc struct {
		Reviews []domain.Review `json:"reviews"`
	}
	if err := readJSON(l.reviewsPath, &doc); err != nil {
		return nil, err
	}
	return doc.Reviews, nil
}

func (l *Loader) LoadDealerships() ([]domain.Dealership, error) {
	var doc struct {
		Dealerships []domain.Dealership `json:"dealerships"`
	}
	if err := readJSON(l.dealershipsPath, &doc); err != nil {
		return nil, err
	}
	return doc.Dealerships, nil
}

func readJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed %s: %w", path, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse seed %s: %w", path, err)
	}
	return nil
}
