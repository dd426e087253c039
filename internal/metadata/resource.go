package metadata

const DefaultPrimaryKey = "id"

type Resource struct {
	Name          string     `json:"name"`
	PrimaryKey    string     `json:"primaryKey,omitempty"`
	Fields        []Field    `json:"fields"`
	Relationships []Relation `json:"relationships,omitempty"`
	Rules         []Rule     `json:"rules,omitempty"`
}

// PK returns the configured primary-key field name, defaulting to "id".
func (r *Resource) PK() string {
	if r.PrimaryKey == "" {
		return DefaultPrimaryKey
	}
	return r.PrimaryKey
}

// GetField returns a pointer to the field with the given name, or nil.
func (r *Resource) GetField(name string) *Field {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			return &r.Fields[i]
		}
	}
	return nil
}

// HasField returns true if the resource declares a field with the given name.
func (r *Resource) HasField(name string) bool {
	return r.GetField(name) != nil
}

// FieldNames returns all declared field names.
func (r *Resource) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// GetRelationship returns the declared relationship with the given name, or nil.
func (r *Resource) GetRelationship(name string) *Relation {
	for i := range r.Relationships {
		if r.Relationships[i].Name == name {
			return &r.Relationships[i]
		}
	}
	return nil
}
