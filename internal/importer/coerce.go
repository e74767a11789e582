package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Spec declares how one entity's raw rows are coerced into domain
// records. One generic pipeline plus seven of these replaces a
// per-entity import handler each.
type Spec struct {
	Name     string   // entity name used in messages, e.g. "subject"
	Label    string   // column whose value names a row in error messages
	Required []string // fields that must be present and non-blank
	Lists    []string // comma-joined id lists, split and trimmed
	JSONs    []string // embedded JSON documents (single-quote tolerant)
	Dates    []string // date-valued fields
	Numbers  []string // numeric fields
	IDs      []string // single UUID references, validated when present

	// New maps a coerced record onto a typed model ready to persist.
	New func(Record) (any, error)
}

// Record is a coerced row: strings stay strings, declared fields carry
// []string, *time.Time, float64 or json.RawMessage values.
type Record map[string]any

func (r Record) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

func (r Record) Strs(key string) []string {
	if v, ok := r[key].([]string); ok {
		return v
	}
	return nil
}

func (r Record) Time(key string) *time.Time {
	if v, ok := r[key].(*time.Time); ok {
		return v
	}
	return nil
}

func (r Record) Float(key string) float64 {
	if v, ok := r[key].(float64); ok {
		return v
	}
	return 0
}

func (r Record) Raw(key string) json.RawMessage {
	if v, ok := r[key].(json.RawMessage); ok {
		return v
	}
	return nil
}

// FieldError reports why a single row field failed coercion.
type FieldError struct {
	Field   string
	Value   any
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %q with value %q: %s", e.Field, e.Value, e.Message)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Coerce turns a raw row into a typed record per the entity's spec.
// A failure only rejects this row; the batch carries on without it.
func Coerce(spec Spec, row Row) (Record, error) {
	for _, f := range spec.Required {
		if strings.TrimSpace(row[f]) == "" {
			return nil, FieldError{Field: f, Value: row[f], Message: "required field is missing"}
		}
	}

	rec := make(Record, len(row))
	for k, v := range row {
		rec[k] = strings.TrimSpace(v)
	}

	for _, f := range spec.Lists {
		raw := rec.Str(f)
		if raw == "" {
			continue
		}
		rec[f] = splitList(raw)
	}

	for _, f := range spec.JSONs {
		raw := rec.Str(f)
		if raw == "" {
			continue
		}
		// Upload tooling emits single-quoted JSON as often as not.
		normalized := strings.ReplaceAll(raw, "'", `"`)
		if !json.Valid([]byte(normalized)) {
			return nil, FieldError{Field: f, Value: raw, Message: "invalid JSON"}
		}
		rec[f] = json.RawMessage(normalized)
	}

	for _, f := range spec.Dates {
		raw := rec.Str(f)
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			return nil, FieldError{Field: f, Value: raw, Message: "invalid date"}
		}
		rec[f] = t
	}

	for _, f := range spec.Numbers {
		raw := rec.Str(f)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, FieldError{Field: f, Value: raw, Message: "not a number"}
		}
		rec[f] = n
	}

	for _, f := range spec.IDs {
		raw := rec.Str(f)
		if raw == "" {
			continue
		}
		if _, err := uuid.Parse(raw); err != nil {
			return nil, FieldError{Field: f, Value: raw, Message: "invalid id"}
		}
	}

	return rec, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDate(raw string) (*time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", raw)
}
