package seedfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"dealership_reviews/internal/adapters/seedfile"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoader_ReadsBothCollections(t *testing.T) {
	dir := t.TempDir()
	rp := writeFile(t, dir, "reviews.json", `{"reviews":[
		{"id":1,"name":"Berkly Shepley","dealership":15,"review":"Total grid-enabled service-desk","purchase":true,"purchase_date":"07/11/2020","car_make":"Audi","car_model":"A6","car_year":2010},
		{"id":2,"name":"Gwenora Zettoi","dealership":23,"purchase":false}
	]}`)
	dp := writeFile(t, dir, "dealerships.json", `{"dealerships":[{"id":5,"state":"NY","city":"Albany"}]}`)

	l := seedfile.New(rp, dp)
	rs, err := l.LoadReviews()
	if err != nil {
		t.Fatalf("LoadReviews: %v", err)
	}
	if len(rs) != 2 || rs[0].ID != 1 || *rs[0].Dealership != 15 || *rs[0].CarYear != 2010 {
		t.Fatalf("unexpected reviews: %+v", rs)
	}
	if rs[1].Review != nil {
		t.Fatalf("absent review text should stay nil")
	}

	ds, err := l.LoadDealerships()
	if err != nil {
		t.Fatalf("LoadDealerships: %v", err)
	}
	if len(ds) != 1 || ds[0].ID != 5 || ds[0].State != "NY" || ds[0].Attributes["city"] != "Albany" {
		t.Fatalf("unexpected dealerships: %+v", ds)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	l := seedfile.New(filepath.Join(t.TempDir(), "nope.json"), "")
	if _, err := l.LoadReviews(); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoader_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	dp := writeFile(t, dir, "dealerships.json", `{"dealerships":[{"id":5,`)
	l := seedfile.New("", dp)
	if _, err := l.LoadDealerships(); err == nil {
		t.Fatalf("expected error for malformed json")
	}
}

func TestLoader_MissingKeyIsEmpty(t *testing.T) {
	dir := t.TempDir()
	rp := writeFile(t, dir, "reviews.json", `{"other":[]}`)
	rs, err := seedfile.New(rp, "").LoadReviews()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rs) != 0 {
		t.Fatalf("expected no reviews, got %d", len(rs))
	}
}

func TestLoader_BundledSeed(t *testing.T) {
	root := filepath.Join("..", "..", "..", "data")
	l := seedfile.New(filepath.Join(root, "reviews.json"), filepath.Join(root, "dealerships.json"))

	rs, err := l.LoadReviews()
	if err != nil || len(rs) != 7 {
		t.Fatalf("bundled reviews: n=%d err=%v", len(rs), err)
	}
	ds, err := l.LoadDealerships()
	if err != nil || len(ds) != 8 {
		t.Fatalf("bundled dealerships: n=%d err=%v", len(ds), err)
	}
	for _, d := range ds {
		if d.ID == 0 || d.State == "" || d.Attributes["full_name"] == nil {
			t.Fatalf("incomplete dealership: %+v", d)
		}
	}
}
