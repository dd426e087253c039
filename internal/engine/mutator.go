package engine

import (
	"fmt"

	"mockforge/internal/metadata"
	"mockforge/internal/store"
)

// Mutator applies create/update/delete operations to a collection, running ID
// generation and validation inside the store's write lock so concurrent
// writers cannot race on generated IDs or uniqueness checks.
type Mutator struct {
	store     *store.Store
	registry  *metadata.Registry
	validator ValidatorConfig
}

func NewMutator(s *store.Store, reg *metadata.Registry, cfg ValidatorConfig) *Mutator {
	return &Mutator{store: s, registry: reg, validator: cfg}
}

// resourceFor returns the declared resource spec for a collection, or a
// minimal default for collections used without one.
func (m *Mutator) resourceFor(collection string) *metadata.Resource {
	if res := m.registry.GetResource(collection); res != nil {
		return res
	}
	return &metadata.Resource{Name: collection}
}

// Create assigns a primary key when absent, validates the record in creation
// mode, and appends it. A caller-supplied primary key that collides with an
// existing record fails validation; keys stay unique across every mutation.
// The returned record is an independent copy.
func (m *Mutator) Create(collection string, record store.Record) (store.Record, *AppError) {
	res := m.resourceFor(collection)
	pk := res.PK()

	candidate := store.CopyRecord(record)
	var appErr *AppError

	err := m.store.Mutate(collection, func(records []store.Record) ([]store.Record, error) {
		if _, hasID := candidate[pk]; !hasID {
			candidate[pk] = GenerateID(records, pk)
		} else if indexOf(records, pk, candidate[pk]) >= 0 {
			appErr = ValidationError([]ErrorDetail{{
				Field:   pk,
				Rule:    "unique",
				Message: fmt.Sprintf("%s %v already exists", pk, candidate[pk]),
			}})
			return records, appErr
		}

		details := ValidateRecord(m.validator, candidate, res.Fields, records, pk, false)
		details = append(details, EvaluateRules(res.Rules, candidate, nil, false)...)
		if len(details) > 0 {
			appErr = ValidationError(details)
			return records, appErr
		}

		return append(records, candidate), nil
	})
	if appErr != nil {
		return nil, appErr
	}
	if err != nil {
		return nil, NewAppError("STORE_ERROR", 500, err.Error())
	}
	return store.CopyRecord(candidate), nil
}

// Update modifies the record matching id. With merge set, patch fields are
// shallow-merged over the existing record; otherwise the record is replaced
// wholesale. Either way the primary key keeps its stored value. A missing
// collection is auto-created and a missing record reports found=false, not an
// error.
func (m *Mutator) Update(collection string, id any, patch store.Record, merge bool) (store.Record, bool, *AppError) {
	res := m.resourceFor(collection)
	pk := res.PK()

	var (
		updated store.Record
		found   bool
		appErr  *AppError
	)

	err := m.store.Mutate(collection, func(records []store.Record) ([]store.Record, error) {
		idx := indexOf(records, pk, id)
		if idx < 0 {
			return records, nil
		}
		found = true
		existing := records[idx]

		var next store.Record
		if merge {
			next = store.CopyRecord(existing)
			for k, v := range store.CopyRecord(patch) {
				next[k] = v
			}
		} else {
			next = store.CopyRecord(patch)
		}
		next[pk] = existing[pk]

		details := ValidateRecord(m.validator, next, res.Fields, records, pk, true)
		details = append(details, EvaluateRules(res.Rules, next, existing, true)...)
		if len(details) > 0 {
			appErr = ValidationError(details)
			return records, appErr
		}

		records[idx] = next
		updated = next
		return records, nil
	})
	if appErr != nil {
		return nil, true, appErr
	}
	if err != nil {
		return nil, false, NewAppError("STORE_ERROR", 500, err.Error())
	}
	if !found {
		return nil, false, nil
	}
	return store.CopyRecord(updated), true, nil
}

// Delete removes the record matching id. Deleting an absent record is a
// no-op; the returned flag reports whether anything was removed.
func (m *Mutator) Delete(collection string, id any) (bool, *AppError) {
	res := m.resourceFor(collection)
	pk := res.PK()

	var deleted bool
	err := m.store.Mutate(collection, func(records []store.Record) ([]store.Record, error) {
		idx := indexOf(records, pk, id)
		if idx < 0 {
			return records, nil
		}
		deleted = true
		return append(records[:idx], records[idx+1:]...), nil
	})
	if err != nil {
		return false, NewAppError("STORE_ERROR", 500, err.Error())
	}
	return deleted, nil
}

func indexOf(records []store.Record, pk string, id any) int {
	for i, rec := range records {
		if store.KeysEqual(rec[pk], id) {
			return i
		}
	}
	return -1
}
