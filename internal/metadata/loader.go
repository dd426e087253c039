package metadata

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

var validFieldTypes = map[string]bool{
	TypeString:  true,
	TypeNumber:  true,
	TypeBoolean: true,
	TypeArray:   true,
	TypeObject:  true,
	TypeDate:    true,
	TypeUUID:    true,
}

var validRelationTypes = map[string]bool{
	HasOne:     true,
	HasMany:    true,
	BelongsTo:  true,
	ManyToMany: true,
}

// specFile is the on-disk shape of a resource spec. Both a bare array of
// resources and a {"resources": [...]} wrapper are accepted.
type specFile struct {
	Resources []*Resource `json:"resources"`
}

// LoadFile reads and validates a resource spec file, then populates the registry.
func LoadFile(path string, reg *Registry) error {
	resources, err := ParseFile(path)
	if err != nil {
		return err
	}
	reg.Load(resources)
	log.Printf("Loaded %d resources into registry", len(resources))
	return nil
}

// ParseFile reads a resource spec file and returns the validated resources.
func ParseFile(path string) ([]*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resource spec: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a resource spec document.
func Parse(data []byte) ([]*Resource, error) {
	var resources []*Resource
	if err := json.Unmarshal(data, &resources); err != nil {
		var wrapped specFile
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decode resource spec: %w", err)
		}
		resources = wrapped.Resources
	}

	if err := Validate(resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// Validate checks the structural rules of a resource spec: unique resource
// names, known field and relationship types, and a join collection for every
// manyToMany relationship. Relationship targets may name collections that are
// not declared as resources; the store auto-creates those on first use.
func Validate(resources []*Resource) error {
	seen := make(map[string]bool, len(resources))
	for _, res := range resources {
		if res.Name == "" {
			return fmt.Errorf("resource with empty name")
		}
		if seen[res.Name] {
			return fmt.Errorf("duplicate resource name: %s", res.Name)
		}
		seen[res.Name] = true

		for _, f := range res.Fields {
			if f.Name == "" {
				return fmt.Errorf("resource %s: field with empty name", res.Name)
			}
			if f.Type != "" && !validFieldTypes[f.Type] {
				return fmt.Errorf("resource %s: field %s has unknown type %q", res.Name, f.Name, f.Type)
			}
		}

		for _, rel := range res.Relationships {
			if rel.Name == "" {
				return fmt.Errorf("resource %s: relationship with empty name", res.Name)
			}
			if !validRelationTypes[rel.Type] {
				return fmt.Errorf("resource %s: relationship %s has unknown type %q", res.Name, rel.Name, rel.Type)
			}
			if rel.Resource == "" {
				return fmt.Errorf("resource %s: relationship %s has no target resource", res.Name, rel.Name)
			}
			if rel.ForeignKey == "" {
				return fmt.Errorf("resource %s: relationship %s has no foreignKey", res.Name, rel.Name)
			}
			if rel.Type == ManyToMany && rel.Through == "" {
				return fmt.Errorf("resource %s: manyToMany relationship %s has no through collection", res.Name, rel.Name)
			}
		}
	}
	return nil
}
