package engine

import (
	"sort"
	"strings"

	"mockforge/internal/store"
)

// Defaults applied when pagination parameters are left unset.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

type Filter struct {
	Field    string
	Operator string // eq, ne, gt, gte, lt, lte, in, startsWith, endsWith, contains
	Value    any
}

type SortClause struct {
	Field string
	Dir   string // asc or desc
}

// QueryOptions describes one query over a collection. Nil pagination fields
// mean "unset"; ApplyOptions substitutes the defaults only when at least one
// of them is present, so the zero value is the identity query.
type QueryOptions struct {
	Filters []Filter
	Sorts   []SortClause
	Page    *int
	PerPage *int
	Fields  []string
	Expand  []string

	// IncludePrimaryKey forces the primary key into a Fields projection.
	// The engine never includes it silently.
	IncludePrimaryKey bool
}

// ApplyOptions runs the full pipeline: filter, sort, paginate, project.
// Expansion is the resolver's job and is not handled here.
func ApplyOptions(records []store.Record, opts *QueryOptions, primaryKey string) []store.Record {
	if opts == nil {
		return records
	}
	out := ApplyFilters(records, opts.Filters)
	out = ApplySorting(out, opts.Sorts)
	if opts.Page != nil || opts.PerPage != nil {
		page, perPage := DefaultPage, DefaultPerPage
		if opts.Page != nil {
			page = *opts.Page
		}
		if opts.PerPage != nil {
			perPage = *opts.PerPage
		}
		out = ApplyPagination(out, page, perPage)
	}
	if len(opts.Fields) > 0 {
		out = SelectFields(out, opts.Fields, primaryKey, opts.IncludePrimaryKey)
	}
	return out
}

// ApplyFilters returns the records matching every filter in the list (AND
// semantics, no grouping). An empty or nil list is the identity.
func ApplyFilters(records []store.Record, filters []Filter) []store.Record {
	if len(filters) == 0 {
		return records
	}

	out := make([]store.Record, 0, len(records))
	for _, rec := range records {
		if matchesAll(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesAll(rec store.Record, filters []Filter) bool {
	for _, f := range filters {
		if !Matches(rec, f) {
			return false
		}
	}
	return true
}

// Matches evaluates a single filter against a record. Absent fields fail
// every operator; type mismatches never match rather than erroring, keeping
// the function total.
func Matches(rec store.Record, f Filter) bool {
	val, ok := rec[f.Field]
	if !ok {
		return false
	}

	switch f.Operator {
	case "eq", "":
		return equalValues(val, f.Value)
	case "ne":
		return !equalValues(val, f.Value)
	case "gt":
		a, b, ok := numericPair(val, f.Value)
		return ok && a > b
	case "gte":
		a, b, ok := numericPair(val, f.Value)
		return ok && a >= b
	case "lt":
		a, b, ok := numericPair(val, f.Value)
		return ok && a < b
	case "lte":
		a, b, ok := numericPair(val, f.Value)
		return ok && a <= b
	case "in":
		set, ok := f.Value.([]any)
		if !ok {
			return false
		}
		for _, candidate := range set {
			if equalValues(val, candidate) {
				return true
			}
		}
		return false
	case "startsWith":
		s, t, ok := stringPair(val, f.Value)
		return ok && strings.HasPrefix(s, t)
	case "endsWith":
		s, t, ok := stringPair(val, f.Value)
		return ok && strings.HasSuffix(s, t)
	case "contains":
		s, t, ok := stringPair(val, f.Value)
		return ok && strings.Contains(s, t)
	default:
		return false
	}
}

// ApplySorting stable-sorts records by the given clauses. Ties and records
// missing the sort field keep their original relative order. The input slice
// is not modified.
func ApplySorting(records []store.Record, sorts []SortClause) []store.Record {
	if len(sorts) == 0 {
		return records
	}

	out := make([]store.Record, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		for _, clause := range sorts {
			cmp := compareValues(out[i][clause.Field], out[j][clause.Field])
			if cmp == 0 {
				continue
			}
			if strings.EqualFold(clause.Dir, "desc") {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return out
}

// ApplyPagination slices out the 1-indexed page. page <= 0 is clamped to 1;
// perPage <= 0 and pages past the end yield an empty result. The source slice
// is never mutated.
func ApplyPagination(records []store.Record, page, perPage int) []store.Record {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		return []store.Record{}
	}

	start := (page - 1) * perPage
	if start >= len(records) {
		return []store.Record{}
	}
	end := start + perPage
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// SelectFields projects each record to the named fields. The primary key is
// included only when includePK is set; the engine never forces it in.
func SelectFields(records []store.Record, fields []string, primaryKey string, includePK bool) []store.Record {
	if len(fields) == 0 {
		return records
	}

	keep := make(map[string]bool, len(fields)+1)
	for _, f := range fields {
		keep[f] = true
	}
	if includePK {
		keep[primaryKey] = true
	}

	out := make([]store.Record, len(records))
	for i, rec := range records {
		projected := make(store.Record, len(keep))
		for k, v := range rec {
			if keep[k] {
				projected[k] = v
			}
		}
		out[i] = projected
	}
	return out
}

// equalValues compares two JSON values. Numbers compare numerically across
// int/float representations; arrays and objects compare element-wise.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := toFloat64(a); aok {
		bf, bok := toFloat64(b)
		return bok && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			inner, present := bv[k]
			if !present || !equalValues(v, inner) {
				return false
			}
		}
		return true
	}
	return false
}

func numericPair(a, b any) (float64, float64, bool) {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	return af, bf, aok && bok
}

func stringPair(a, b any) (string, string, bool) {
	as, aok := a.(string)
	bs, bok := b.(string)
	return as, bs, aok && bok
}

// compareValues orders two field values for sorting: -1, 0, or +1.
// Numbers order numerically, strings and booleans by their natural order, and
// nil/missing values sort before everything else.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if af, aok := toFloat64(a); aok {
		if bf, bok := toFloat64(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs)
		}
	}

	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}

	// Mixed types keep their original order.
	return 0
}

// toFloat64 converts numeric types to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
