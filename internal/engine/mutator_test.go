package engine

import (
	"testing"

	"mockforge/internal/metadata"
	"mockforge/internal/store"
)

func newMutator(t *testing.T, resources ...*metadata.Resource) (*Mutator, *store.Store) {
	t.Helper()
	st := store.New("", false)
	reg := metadata.NewRegistry()
	reg.Load(resources)
	return NewMutator(st, reg, ValidatorConfig{}), st
}

func TestCreate_AssignsSequentialID(t *testing.T) {
	m, st := newMutator(t, &metadata.Resource{Name: "items"})

	first, appErr := m.Create("items", store.Record{"name": "a"})
	if appErr != nil {
		t.Fatalf("create: %v", appErr)
	}
	if first["id"] != float64(1) {
		t.Fatalf("expected id 1, got %v", first["id"])
	}

	second, appErr := m.Create("items", store.Record{"name": "b"})
	if appErr != nil {
		t.Fatalf("create: %v", appErr)
	}
	if second["id"] != float64(2) {
		t.Fatalf("expected id 2, got %v", second["id"])
	}

	if st.Count("items") != 2 {
		t.Fatalf("expected 2 stored records, got %d", st.Count("items"))
	}
}

func TestCreate_KeepsProvidedID(t *testing.T) {
	m, _ := newMutator(t, &metadata.Resource{Name: "items"})

	rec, appErr := m.Create("items", store.Record{"id": float64(42), "name": "a"})
	if appErr != nil {
		t.Fatalf("create: %v", appErr)
	}
	if rec["id"] != float64(42) {
		t.Fatalf("expected provided id preserved, got %v", rec["id"])
	}
}

func TestCreate_RejectsDuplicateProvidedID(t *testing.T) {
	m, st := newMutator(t, &metadata.Resource{Name: "items"})

	if _, appErr := m.Create("items", store.Record{"id": float64(1), "name": "a"}); appErr != nil {
		t.Fatalf("create: %v", appErr)
	}

	_, appErr := m.Create("items", store.Record{"id": float64(1), "name": "b"})
	if appErr == nil || appErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED for colliding id, got %v", appErr)
	}
	if len(appErr.Details) != 1 || appErr.Details[0].Field != "id" || appErr.Details[0].Rule != "unique" {
		t.Fatalf("expected unique violation on id, got %v", appErr.Details)
	}

	if st.Count("items") != 1 {
		t.Fatalf("colliding create must not store anything, count=%d", st.Count("items"))
	}
	rec, found := st.GetRecord("items", "id", float64(1))
	if !found || rec["name"] != "a" {
		t.Fatalf("original record must survive untouched: %v", rec)
	}

	// Route IDs arrive as strings; a numeric-string collision is still caught.
	if _, appErr := m.Create("items", store.Record{"id": "1", "name": "c"}); appErr == nil {
		t.Fatal("expected VALIDATION_FAILED for string form of an existing numeric id")
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	m, st := newMutator(t, &metadata.Resource{
		Name:   "items",
		Fields: []metadata.Field{{Name: "name", Type: "string", Required: true}},
	})

	_, appErr := m.Create("items", store.Record{})
	if appErr == nil || appErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %v", appErr)
	}
	if st.Count("items") != 0 {
		t.Fatal("failed create must not store anything")
	}
}

func TestCreate_CustomPrimaryKey(t *testing.T) {
	m, _ := newMutator(t, &metadata.Resource{Name: "items", PrimaryKey: "sku"})

	rec, appErr := m.Create("items", store.Record{"name": "a"})
	if appErr != nil {
		t.Fatalf("create: %v", appErr)
	}
	if rec["sku"] != float64(1) {
		t.Fatalf("expected sku assigned, got %v", rec)
	}
}

func TestUpdate_MergePreservesOtherFields(t *testing.T) {
	m, _ := newMutator(t, &metadata.Resource{Name: "items"})
	if _, appErr := m.Create("items", store.Record{"name": "a", "color": "red"}); appErr != nil {
		t.Fatalf("create: %v", appErr)
	}

	rec, found, appErr := m.Update("items", float64(1), store.Record{"color": "blue"}, true)
	if appErr != nil || !found {
		t.Fatalf("update: found=%v err=%v", found, appErr)
	}
	if rec["name"] != "a" || rec["color"] != "blue" {
		t.Fatalf("merge semantics wrong: %v", rec)
	}
}

func TestUpdate_ReplaceDropsOtherFields(t *testing.T) {
	m, _ := newMutator(t, &metadata.Resource{Name: "items"})
	if _, appErr := m.Create("items", store.Record{"name": "a", "color": "red"}); appErr != nil {
		t.Fatalf("create: %v", appErr)
	}

	rec, found, appErr := m.Update("items", float64(1), store.Record{"size": "L"}, false)
	if appErr != nil || !found {
		t.Fatalf("update: found=%v err=%v", found, appErr)
	}
	if _, present := rec["name"]; present {
		t.Fatalf("replace must drop unlisted fields: %v", rec)
	}
	if rec["size"] != "L" {
		t.Fatalf("replace lost patch fields: %v", rec)
	}
}

func TestUpdate_PrimaryKeyForced(t *testing.T) {
	m, _ := newMutator(t, &metadata.Resource{Name: "items"})
	if _, appErr := m.Create("items", store.Record{"name": "a"}); appErr != nil {
		t.Fatalf("create: %v", appErr)
	}

	// A patch trying to change the PK is overridden, in both modes.
	rec, _, appErr := m.Update("items", float64(1), store.Record{"id": float64(99)}, true)
	if appErr != nil {
		t.Fatalf("update: %v", appErr)
	}
	if rec["id"] != float64(1) {
		t.Fatalf("merge must force PK back to 1, got %v", rec["id"])
	}

	rec, _, appErr = m.Update("items", float64(1), store.Record{"id": float64(99), "name": "b"}, false)
	if appErr != nil {
		t.Fatalf("update: %v", appErr)
	}
	if rec["id"] != float64(1) {
		t.Fatalf("replace must force PK back to 1, got %v", rec["id"])
	}
}

func TestUpdate_MissingRecordIsNotFoundNotError(t *testing.T) {
	m, _ := newMutator(t, &metadata.Resource{Name: "items"})

	rec, found, appErr := m.Update("items", float64(1), store.Record{"name": "x"}, true)
	if appErr != nil {
		t.Fatalf("missing record must not be an error: %v", appErr)
	}
	if found || rec != nil {
		t.Fatalf("expected found=false, got %v %v", found, rec)
	}
}

func TestUpdate_AutoCreatesCollection(t *testing.T) {
	m, st := newMutator(t, &metadata.Resource{Name: "items"})

	_, found, appErr := m.Update("ghosts", float64(1), store.Record{}, true)
	if appErr != nil || found {
		t.Fatalf("expected not-found on fresh collection: found=%v err=%v", found, appErr)
	}

	names := st.CollectionNames()
	seen := false
	for _, n := range names {
		if n == "ghosts" {
			seen = true
		}
	}
	if !seen {
		t.Fatal("update must auto-create the collection")
	}
}

func TestDelete_RemovesAndIsIdempotent(t *testing.T) {
	m, st := newMutator(t, &metadata.Resource{Name: "items"})
	if _, appErr := m.Create("items", store.Record{"name": "a"}); appErr != nil {
		t.Fatalf("create: %v", appErr)
	}

	deleted, appErr := m.Delete("items", float64(1))
	if appErr != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, appErr)
	}
	if st.Count("items") != 0 {
		t.Fatal("record not removed")
	}

	deleted, appErr = m.Delete("items", float64(1))
	if appErr != nil {
		t.Fatalf("second delete must not error: %v", appErr)
	}
	if deleted {
		t.Fatal("second delete must be a no-op")
	}
}

func TestMutator_AliasingSafety(t *testing.T) {
	m, st := newMutator(t, &metadata.Resource{Name: "items"})

	input := store.Record{"name": "a", "meta": map[string]any{"k": "v"}}
	created, appErr := m.Create("items", input)
	if appErr != nil {
		t.Fatalf("create: %v", appErr)
	}

	// Mutating the input after create must not touch stored state.
	input["name"] = "changed"
	input["meta"].(map[string]any)["k"] = "changed"

	// Mutating the returned record must not touch stored state either.
	created["name"] = "also changed"
	created["meta"].(map[string]any)["k"] = "also changed"

	stored, found := st.GetRecord("items", "id", float64(1))
	if !found {
		t.Fatal("record missing")
	}
	if stored["name"] != "a" {
		t.Fatalf("store state aliased through caller references: %v", stored)
	}
	if stored["meta"].(map[string]any)["k"] != "v" {
		t.Fatalf("nested store state aliased: %v", stored)
	}
}

func TestCreate_UniquenessSerializedUnderLock(t *testing.T) {
	m, _ := newMutator(t, &metadata.Resource{
		Name:   "items",
		Fields: []metadata.Field{{Name: "email", Type: "string", Unique: true}},
	})

	if _, appErr := m.Create("items", store.Record{"email": "a@x.com"}); appErr != nil {
		t.Fatalf("create: %v", appErr)
	}
	_, appErr := m.Create("items", store.Record{"email": "a@x.com"})
	if appErr == nil || appErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected unique violation, got %v", appErr)
	}
}
