package engine

import (
	"reflect"
	"testing"

	"mockforge/internal/store"
)

func priceFixtures() []store.Record {
	return []store.Record{
		{"id": float64(1), "name": "cheap", "price": float64(25)},
		{"id": float64(2), "name": "mid", "price": float64(100)},
		{"id": float64(3), "name": "high", "price": float64(250)},
		{"id": float64(4), "name": "free"},
	}
}

func TestApplyFilters_Identity(t *testing.T) {
	records := priceFixtures()

	got := ApplyFilters(records, nil)
	if !reflect.DeepEqual(got, records) {
		t.Fatal("nil filter list must be the identity")
	}

	got = ApplyFilters(records, []Filter{})
	if !reflect.DeepEqual(got, records) {
		t.Fatal("empty filter list must be the identity")
	}
}

func TestApplyFilters_GteScenario(t *testing.T) {
	records := priceFixtures()

	got := ApplyFilters(records, []Filter{{Field: "price", Operator: "gte", Value: float64(100)}})
	if len(got) != 2 {
		t.Fatalf("expected 2 records with price >= 100, got %d", len(got))
	}
	if got[0]["id"] != float64(2) || got[1]["id"] != float64(3) {
		t.Fatalf("expected records 2,3 in original order, got %v", got)
	}
}

func TestApplyFilters_AndSemantics(t *testing.T) {
	records := priceFixtures()

	got := ApplyFilters(records, []Filter{
		{Field: "price", Operator: "gte", Value: float64(100)},
		{Field: "name", Operator: "eq", Value: "mid"},
	})
	if len(got) != 1 || got[0]["id"] != float64(2) {
		t.Fatalf("expected only record 2, got %v", got)
	}
}

func TestApplyFilters_AbsentFieldFailsEveryOperator(t *testing.T) {
	records := []store.Record{{"id": float64(1)}}

	for _, op := range []string{"eq", "ne", "gt", "gte", "lt", "lte", "in", "startsWith"} {
		got := ApplyFilters(records, []Filter{{Field: "missing", Operator: op, Value: "x"}})
		if len(got) != 0 {
			t.Fatalf("operator %s must fail on absent field", op)
		}
	}
}

func TestApplyFilters_NumericOperatorsIgnoreNonNumeric(t *testing.T) {
	records := []store.Record{
		{"id": float64(1), "price": "expensive"},
		{"id": float64(2), "price": float64(10)},
	}

	got := ApplyFilters(records, []Filter{{Field: "price", Operator: "gt", Value: float64(5)}})
	if len(got) != 1 || got[0]["id"] != float64(2) {
		t.Fatalf("non-numeric field values must never match gt, got %v", got)
	}
}

func TestApplyFilters_In(t *testing.T) {
	records := priceFixtures()

	got := ApplyFilters(records, []Filter{{Field: "name", Operator: "in", Value: []any{"cheap", "high"}}})
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
}

func TestApplyFilters_StringOperators(t *testing.T) {
	records := []store.Record{
		{"id": float64(1), "name": "alpha"},
		{"id": float64(2), "name": "beta"},
		{"id": float64(3), "name": float64(42)},
	}

	got := ApplyFilters(records, []Filter{{Field: "name", Operator: "startsWith", Value: "al"}})
	if len(got) != 1 || got[0]["id"] != float64(1) {
		t.Fatalf("startsWith: got %v", got)
	}

	got = ApplyFilters(records, []Filter{{Field: "name", Operator: "endsWith", Value: "ta"}})
	if len(got) != 1 || got[0]["id"] != float64(2) {
		t.Fatalf("endsWith: got %v", got)
	}

	got = ApplyFilters(records, []Filter{{Field: "name", Operator: "contains", Value: "e"}})
	if len(got) != 1 || got[0]["id"] != float64(2) {
		t.Fatalf("contains must only match strings, got %v", got)
	}
}

func TestApplySorting_Stable(t *testing.T) {
	records := []store.Record{
		{"id": float64(1), "group": "b"},
		{"id": float64(2), "group": "a"},
		{"id": float64(3), "group": "a"},
		{"id": float64(4), "group": "b"},
	}

	got := ApplySorting(records, []SortClause{{Field: "group", Dir: "asc"}})
	ids := []any{got[0]["id"], got[1]["id"], got[2]["id"], got[3]["id"]}
	want := []any{float64(2), float64(3), float64(1), float64(4)}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("stable sort order wrong: got %v want %v", ids, want)
	}

	// Input order must be untouched.
	if records[0]["id"] != float64(1) {
		t.Fatal("ApplySorting mutated its input")
	}
}

func TestApplySorting_Desc(t *testing.T) {
	records := priceFixtures()

	got := ApplySorting(records, []SortClause{{Field: "price", Dir: "desc"}})
	if got[0]["id"] != float64(3) {
		t.Fatalf("expected highest price first, got %v", got[0])
	}
	// Record without the field sorts before everything ascending, so last here.
	if got[3]["id"] != float64(4) {
		t.Fatalf("expected missing-field record last on desc, got %v", got[3])
	}
}

func TestApplyPagination_ClampsPage(t *testing.T) {
	records := priceFixtures()

	for _, page := range []int{0, -1, -10} {
		got := ApplyPagination(records, page, 2)
		want := ApplyPagination(records, 1, 2)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("page %d must behave like page 1", page)
		}
	}
}

func TestApplyPagination_Bounds(t *testing.T) {
	records := priceFixtures()

	if got := ApplyPagination(records, 1, 0); len(got) != 0 {
		t.Fatalf("perPage=0 must yield empty, got %v", got)
	}
	if got := ApplyPagination(records, 99, 10); len(got) != 0 {
		t.Fatalf("page past the end must yield empty, got %v", got)
	}
	if got := ApplyPagination(records, 2, 3); len(got) != 1 || got[0]["id"] != float64(4) {
		t.Fatalf("partial last page wrong: %v", got)
	}
}

func TestApplyPagination_DoesNotMutateInput(t *testing.T) {
	records := priceFixtures()
	snapshot := store.CopyRecords(records)

	ApplyPagination(records, 2, 2)
	ApplyPagination(records, 0, 0)

	if !reflect.DeepEqual(records, snapshot) {
		t.Fatal("ApplyPagination mutated its input")
	}
}

func TestSelectFields(t *testing.T) {
	records := []store.Record{{"id": float64(1), "name": "Ann", "email": "ann@example.com"}}

	got := SelectFields(records, []string{"name"}, "id", false)
	if len(got[0]) != 1 || got[0]["name"] != "Ann" {
		t.Fatalf("projection without PK wrong: %v", got[0])
	}

	got = SelectFields(records, []string{"name"}, "id", true)
	if len(got[0]) != 2 || got[0]["id"] != float64(1) {
		t.Fatalf("projection with PK wrong: %v", got[0])
	}

	// Source record untouched.
	if len(records[0]) != 3 {
		t.Fatal("SelectFields mutated its input")
	}
}

func TestApplyOptions_ZeroValueIsIdentity(t *testing.T) {
	records := priceFixtures()

	got := ApplyOptions(records, &QueryOptions{}, "id")
	if !reflect.DeepEqual(got, records) {
		t.Fatal("zero-value options must be the identity")
	}

	got = ApplyOptions(records, nil, "id")
	if !reflect.DeepEqual(got, records) {
		t.Fatal("nil options must be the identity")
	}
}

func TestApplyOptions_DefaultsPagination(t *testing.T) {
	var records []store.Record
	for i := 1; i <= 25; i++ {
		records = append(records, store.Record{"id": float64(i)})
	}

	page := 2
	got := ApplyOptions(records, &QueryOptions{Page: &page}, "id")
	if len(got) != DefaultPerPage {
		t.Fatalf("expected default page size %d, got %d", DefaultPerPage, len(got))
	}
	if got[0]["id"] != float64(11) {
		t.Fatalf("expected page 2 to start at 11, got %v", got[0]["id"])
	}
}
