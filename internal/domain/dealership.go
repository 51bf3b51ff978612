package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Dealership is a dealer record. Only ID and State are interpreted; every
// other seed field is carried through verbatim in Attributes. A record whose
// source had no id or state key is written back without it.
type Dealership struct {
	ID         int64
	State      string
	Attributes map[string]any

	noID, noState bool
}

func (d Dealership) HasID() bool    { return !d.noID }
func (d Dealership) HasState() bool { return !d.noState }

// fields flattens Attributes next to id and state.
func (d Dealership) fields() map[string]any {
	out := make(map[string]any, len(d.Attributes)+2)
	for k, v := range d.Attributes {
		out[k] = v
	}
	if !d.noID {
		out["id"] = d.ID
	}
	if !d.noState {
		out["state"] = d.State
	}
	return out
}

func (d Dealership) MarshalJSON() ([]byte, error) { return json.Marshal(d.fields()) }

func (d Dealership) MarshalBSON() ([]byte, error) { return bson.Marshal(d.fields()) }

func (d *Dealership) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	return d.fromFields(raw)
}

// UnmarshalBSON decodes nested documents as maps so they encode back to JSON objects.
func (d *Dealership) UnmarshalBSON(b []byte) error {
	dec := bson.NewDecoder(bson.NewDocumentReader(bytes.NewReader(b)))
	dec.DefaultDocumentM()
	var raw bson.M
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	delete(raw, "_id")
	return d.fromFields(map[string]any(raw))
}

func (d *Dealership) fromFields(raw map[string]any) error {
	*d = Dealership{noID: true, noState: true}
	if v, ok := raw["id"]; ok {
		id, err := wholeNumber(v)
		if err != nil {
			return fmt.Errorf("dealership id: %w", err)
		}
		d.ID, d.noID = id, false
		delete(raw, "id")
	}
	if v, ok := raw["state"]; ok {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("dealership state: expected string, got %T", v)
		}
		d.State, d.noState = s, false
		delete(raw, "state")
	}
	if len(raw) > 0 {
		d.Attributes = raw
	}
	return nil
}

// wholeNumber accepts the numeric shapes JSON and BSON decoding produce, plus numeric text.
func wholeNumber(v any) (int64, error) {
	switch n := v.(type) {
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return ParseWholeNumber(fmt.Sprint(n))
	case string:
		return ParseWholeNumber(n)
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
