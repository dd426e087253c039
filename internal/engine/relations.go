package engine

import (
	"fmt"

	"mockforge/internal/metadata"
	"mockforge/internal/store"
)

// FindRelationship looks up a declared relationship by name on a resource.
func FindRelationship(res *metadata.Resource, name string) (*metadata.Relation, *AppError) {
	rel := res.GetRelationship(name)
	if rel == nil {
		return nil, RelationshipNotFoundError(res.Name, name)
	}
	return rel, nil
}

// ExpandRecords resolves one relationship for each input record and attaches
// the related data under the relationship name. Records with no related data
// are left untouched; the field is simply absent, never an error. Absent
// source and target collections resolve to empty sets via the store's
// auto-create policy.
func ExpandRecords(s *store.Store, reg *metadata.Registry, res *metadata.Resource, records []store.Record, relName string) *AppError {
	if len(records) == 0 {
		return nil
	}

	rel, appErr := FindRelationship(res, relName)
	if appErr != nil {
		return appErr
	}

	switch rel.Type {
	case metadata.HasOne, metadata.HasMany:
		return expandHas(s, res, rel, records, relName)
	case metadata.BelongsTo:
		return expandBelongsTo(s, reg, rel, records, relName)
	case metadata.ManyToMany:
		return expandManyToMany(s, reg, res, rel, records, relName)
	default:
		return UnsupportedRelationshipTypeError(rel.Type)
	}
}

// expandHas resolves hasOne and hasMany: target records whose foreignKey
// equals the source record's primary key. hasMany attaches the full matching
// sequence, hasOne only the first match.
func expandHas(s *store.Store, res *metadata.Resource, rel *metadata.Relation, records []store.Record, relName string) *AppError {
	targets := s.GetCollection(rel.Resource)

	// Group targets by foreign-key value.
	grouped := make(map[string][]store.Record)
	for _, target := range targets {
		fk, ok := target[rel.ForeignKey]
		if !ok || fk == nil {
			continue
		}
		key := keyString(fk)
		grouped[key] = append(grouped[key], target)
	}

	pkField := res.PK()
	for _, rec := range records {
		pk, ok := rec[pkField]
		if !ok || pk == nil {
			continue
		}
		matches := grouped[keyString(pk)]
		if len(matches) == 0 {
			continue
		}
		if rel.IsHasOne() {
			rec[relName] = matches[0]
		} else {
			rec[relName] = matches
		}
	}
	return nil
}

// expandBelongsTo resolves the inverse direction: the source record carries
// the foreign key, pointing at the target's key field. A nil or absent
// foreign key attaches nothing.
func expandBelongsTo(s *store.Store, reg *metadata.Registry, rel *metadata.Relation, records []store.Record, relName string) *AppError {
	targets := s.GetCollection(rel.Resource)
	targetKey := rel.ResolvedTargetKey(targetPrimaryKey(reg, rel.Resource))

	indexed := make(map[string]store.Record, len(targets))
	for _, target := range targets {
		if v, ok := target[targetKey]; ok && v != nil {
			indexed[keyString(v)] = target
		}
	}

	for _, rec := range records {
		fk, ok := rec[rel.ForeignKey]
		if !ok || fk == nil {
			continue
		}
		if target, found := indexed[keyString(fk)]; found {
			rec[relName] = target
		}
	}
	return nil
}

// expandManyToMany resolves the two-hop indirection through the join
// collection: join rows matching the source primary key supply target-key
// values, and targets whose primary key is in that set are attached.
func expandManyToMany(s *store.Store, reg *metadata.Registry, res *metadata.Resource, rel *metadata.Relation, records []store.Record, relName string) *AppError {
	if rel.Through == "" {
		return MissingThroughError(rel.Name)
	}

	joins := s.GetCollection(rel.Through)
	targets := s.GetCollection(rel.Resource)
	targetPK := targetPrimaryKey(reg, rel.Resource)

	targetByPK := make(map[string]store.Record, len(targets))
	for _, target := range targets {
		if v, ok := target[targetPK]; ok && v != nil {
			targetByPK[keyString(v)] = target
		}
	}

	// Map source key -> related targets, preserving join order. Duplicate
	// join rows collapse: membership is a set.
	sourceToTargets := make(map[string][]store.Record)
	seen := make(map[string]bool)
	for _, join := range joins {
		src, ok := join[rel.ForeignKey]
		if !ok || src == nil {
			continue
		}
		tgt, ok := join[rel.TargetKey]
		if !ok || tgt == nil {
			continue
		}
		pair := keyString(src) + "\x00" + keyString(tgt)
		if seen[pair] {
			continue
		}
		seen[pair] = true
		if target, found := targetByPK[keyString(tgt)]; found {
			key := keyString(src)
			sourceToTargets[key] = append(sourceToTargets[key], target)
		}
	}

	pkField := res.PK()
	for _, rec := range records {
		pk, ok := rec[pkField]
		if !ok || pk == nil {
			continue
		}
		if related, found := sourceToTargets[keyString(pk)]; found {
			rec[relName] = related
		}
	}
	return nil
}

// FindRelatedRecords verifies the source record exists, resolves its
// relationship, and returns the related target set with the query options
// applied to it (filters combine with the membership constraint under the
// same AND semantics as collection queries).
func FindRelatedRecords(s *store.Store, reg *metadata.Registry, res *metadata.Resource, id any, relName string, opts *QueryOptions) ([]store.Record, *AppError) {
	rel, appErr := FindRelationship(res, relName)
	if appErr != nil {
		return nil, appErr
	}

	source, found := s.GetRecord(res.Name, res.PK(), id)
	if !found {
		return nil, RecordNotFoundError(res.Name, id)
	}

	related, appErr := relatedSet(s, reg, res, rel, source)
	if appErr != nil {
		return nil, appErr
	}

	targetPK := targetPrimaryKey(reg, rel.Resource)
	return ApplyOptions(related, opts, targetPK), nil
}

func relatedSet(s *store.Store, reg *metadata.Registry, res *metadata.Resource, rel *metadata.Relation, source store.Record) ([]store.Record, *AppError) {
	switch rel.Type {
	case metadata.HasOne, metadata.HasMany:
		pk, ok := source[res.PK()]
		if !ok || pk == nil {
			return []store.Record{}, nil
		}
		var out []store.Record
		for _, target := range s.GetCollection(rel.Resource) {
			if fk, present := target[rel.ForeignKey]; present && store.KeysEqual(fk, pk) {
				out = append(out, target)
				if rel.IsHasOne() {
					break
				}
			}
		}
		if out == nil {
			out = []store.Record{}
		}
		return out, nil

	case metadata.BelongsTo:
		fk, ok := source[rel.ForeignKey]
		if !ok || fk == nil {
			return []store.Record{}, nil
		}
		targetKey := rel.ResolvedTargetKey(targetPrimaryKey(reg, rel.Resource))
		for _, target := range s.GetCollection(rel.Resource) {
			if v, present := target[targetKey]; present && store.KeysEqual(v, fk) {
				return []store.Record{target}, nil
			}
		}
		return []store.Record{}, nil

	case metadata.ManyToMany:
		if rel.Through == "" {
			return nil, MissingThroughError(rel.Name)
		}
		pk, ok := source[res.PK()]
		if !ok || pk == nil {
			return []store.Record{}, nil
		}

		// First hop: join rows for this source.
		memberIDs := make(map[string]bool)
		var order []string
		for _, join := range s.GetCollection(rel.Through) {
			if src, present := join[rel.ForeignKey]; present && store.KeysEqual(src, pk) {
				if tgt, tok := join[rel.TargetKey]; tok && tgt != nil {
					key := keyString(tgt)
					if !memberIDs[key] {
						memberIDs[key] = true
						order = append(order, key)
					}
				}
			}
		}

		// Second hop: targets whose primary key is in the member set.
		targetPK := targetPrimaryKey(reg, rel.Resource)
		byPK := make(map[string]store.Record)
		for _, target := range s.GetCollection(rel.Resource) {
			if v, present := target[targetPK]; present && v != nil {
				byPK[keyString(v)] = target
			}
		}
		out := make([]store.Record, 0, len(order))
		for _, key := range order {
			if target, found := byPK[key]; found {
				out = append(out, target)
			}
		}
		return out, nil

	default:
		return nil, UnsupportedRelationshipTypeError(rel.Type)
	}
}

// targetPrimaryKey returns the primary key of a target collection, defaulting
// to "id" for collections with no declared resource spec.
func targetPrimaryKey(reg *metadata.Registry, collection string) string {
	if target := reg.GetResource(collection); target != nil {
		return target.PK()
	}
	return metadata.DefaultPrimaryKey
}

// keyString normalizes a key value for map indexing. Numeric values of
// different Go types print identically, matching KeysEqual semantics.
func keyString(v any) string {
	if f, ok := toFloat64(v); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}
