package store

// Record is one document within a collection. Values are the JSON scalar,
// array, and object types produced by encoding/json.
type Record map[string]any

// CopyRecord returns a deep copy of a record. Records crossing the store
// boundary are always copied so callers can never alias canonical state.
func CopyRecord(r Record) Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = copyValue(v)
	}
	return out
}

// CopyRecords returns a deep copy of a record slice.
func CopyRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = CopyRecord(r)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = copyValue(inner)
		}
		return out
	case Record:
		return map[string]any(CopyRecord(val))
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = copyValue(inner)
		}
		return out
	default:
		// Scalars (string, float64, bool, nil) are immutable.
		return v
	}
}
