package engine

import (
	"strconv"

	"github.com/google/uuid"

	"mockforge/internal/store"
)

// IsUUIDPrimaryKey reports whether any existing record carries a primary-key
// value in canonical UUID textual form. A collection with at least one UUID
// key is treated as UUID-keyed for all future generation.
func IsUUIDPrimaryKey(records []store.Record, primaryKey string) bool {
	for _, rec := range records {
		if s, ok := rec[primaryKey].(string); ok {
			if len(s) == 36 {
				if _, err := uuid.Parse(s); err == nil {
					return true
				}
			}
		}
	}
	return false
}

// GenerateID produces the next primary-key value for a collection. UUID-keyed
// collections get a fresh random v4; uniqueness rides on randomness and is not
// checked against existing records. Otherwise keys are treated as integers:
// non-numeric values are ignored and the result is max + 1, with an empty or
// fully non-numeric collection starting at 1. Zero and negative existing IDs
// participate in the max.
func GenerateID(records []store.Record, primaryKey string) any {
	if IsUUIDPrimaryKey(records, primaryKey) {
		return uuid.NewString()
	}

	max := 0.0
	found := false
	for _, rec := range records {
		n, ok := numericID(rec[primaryKey])
		if !ok {
			continue
		}
		if !found || n > max {
			max = n
			found = true
		}
	}
	if !found {
		return float64(1)
	}
	return max + 1
}

// numericID extracts a numeric key value. Numeric strings count: a collection
// seeded with {"id": "3"} still increments sequentially.
func numericID(v any) (float64, bool) {
	if f, ok := toFloat64(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
