package domain_test

import (
	"encoding/json"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"dealership_reviews/internal/domain"
)

func TestDealership_CarriesUnknownFields(t *testing.T) {
	in := `{"id":15,"city":"El Paso","state":"Texas","st":"TX","zip":"88563","lat":31.6948,"long":-106.3,"short_name":"Holdlamis"}`

	var d domain.Dealership
	if err := json.Unmarshal([]byte(in), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.ID != 15 || d.State != "Texas" {
		t.Fatalf("unexpected dealership: %+v", d)
	}
	if d.Attributes["city"] != "El Paso" || d.Attributes["lat"] != 31.6948 {
		t.Fatalf("attributes not carried: %+v", d.Attributes)
	}
	if _, ok := d.Attributes["id"]; ok {
		t.Fatalf("id must not be duplicated into attributes")
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var flat map[string]any
	if err := json.Unmarshal(out, &flat); err != nil {
		t.Fatalf("unmarshal flat: %v", err)
	}
	if flat["id"] != float64(15) || flat["st"] != "TX" || flat["short_name"] != "Holdlamis" {
		t.Fatalf("unexpected flat output: %s", out)
	}
}

func TestDealership_RejectsNonNumericID(t *testing.T) {
	var d domain.Dealership
	if err := json.Unmarshal([]byte(`{"id":"abc","state":"NY"}`), &d); err == nil {
		t.Fatalf("expected error for string id")
	}
}

func TestReviewInput_ToReviewKeepsAbsentFields(t *testing.T) {
	name := "Berkly Shepley"
	r := domain.ReviewInput{Name: &name}.ToReview(3)
	if r.ID != 3 || r.Name == nil || *r.Name != name {
		t.Fatalf("unexpected review: %+v", r)
	}
	if r.Dealership != nil || r.CarYear != nil {
		t.Fatalf("absent fields must stay nil: %+v", r)
	}
	b, _ := json.Marshal(r)
	if string(b) != `{"id":3,"name":"Berkly Shepley"}` {
		t.Fatalf("unexpected json: %s", b)
	}
}

func TestMaxReviewID(t *testing.T) {
	if got := domain.MaxReviewID(nil); got != 0 {
		t.Fatalf("empty: got %d", got)
	}
	rs := []domain.Review{{ID: 3}, {ID: 7}, {ID: 5}}
	if got := domain.MaxReviewID(rs); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}

func TestDealership_AbsentKeysStayAbsent(t *testing.T) {
	var d domain.Dealership
	if err := json.Unmarshal([]byte(`{"id":5,"city":"X"}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.HasID() || d.HasState() {
		t.Fatalf("presence: id=%v state=%v", d.HasID(), d.HasState())
	}
	out, _ := json.Marshal(d)
	if string(out) != `{"city":"X","id":5}` {
		t.Fatalf("unexpected json: %s", out)
	}

	var noID domain.Dealership
	_ = json.Unmarshal([]byte(`{"state":"NY"}`), &noID)
	out, _ = json.Marshal(noID)
	if string(out) != `{"state":"NY"}` {
		t.Fatalf("unexpected json: %s", out)
	}
}

func TestDealership_LiteralHasBothKeys(t *testing.T) {
	out, _ := json.Marshal(domain.Dealership{ID: 0, State: ""})
	if string(out) != `{"id":0,"state":""}` {
		t.Fatalf("unexpected json: %s", out)
	}
}

func TestDealership_BSONRoundTrip(t *testing.T) {
	var src domain.Dealership
	if err := json.Unmarshal([]byte(`{"id":7,"city":"Albany","geo":{"lat":42.65}}`), &src); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, err := bson.Marshal(src)
	if err != nil {
		t.Fatalf("bson marshal: %v", err)
	}
	var back domain.Dealership
	if err := bson.Unmarshal(b, &back); err != nil {
		t.Fatalf("bson unmarshal: %v", err)
	}
	if back.ID != 7 || back.HasState() {
		t.Fatalf("unexpected dealership: %+v", back)
	}
	out, _ := json.Marshal(back)
	var flat map[string]any
	_ = json.Unmarshal(out, &flat)
	if _, ok := flat["state"]; ok {
		t.Fatalf("state must stay absent: %s", out)
	}
	geo, ok := flat["geo"].(map[string]any)
	if !ok || geo["lat"] != 42.65 {
		t.Fatalf("nested document not carried as an object: %s", out)
	}
}

func TestDealership_NumericTextID(t *testing.T) {
	var d domain.Dealership
	if err := json.Unmarshal([]byte(`{"id":"15","state":"TX"}`), &d); err != nil || d.ID != 15 {
		t.Fatalf("got %+v err=%v", d, err)
	}
	if err := json.Unmarshal([]byte(`{"id":15.5}`), &d); err == nil {
		t.Fatalf("expected error for fractional id")
	}
}

func TestParseWholeNumber(t *testing.T) {
	ok := map[string]int64{"15": 15, " 15 ": 15, "15.0": 15, "-3": -3, "1e1": 10}
	for in, want := range ok {
		got, err := domain.ParseWholeNumber(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %d err=%v, want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "abc", "15.5", "NaN", "Inf", "1e30"} {
		if _, err := domain.ParseWholeNumber(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestReviewInput_NumericText(t *testing.T) {
	var in domain.ReviewInput
	if err := json.Unmarshal([]byte(`{"dealership":"15","car_year":"2023","purchase":"false","name":"Ana"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if *in.Dealership != 15 || *in.CarYear != 2023 || *in.Purchase || *in.Name != "Ana" {
		t.Fatalf("unexpected input: %+v", in)
	}
	if err := json.Unmarshal([]byte(`{"dealership":"fifteen"}`), &in); err == nil {
		t.Fatalf("expected error for non-numeric dealership")
	}
}
