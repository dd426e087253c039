package metadata

// Relationship kinds.
const (
	HasOne     = "hasOne"
	HasMany    = "hasMany"
	BelongsTo  = "belongsTo"
	ManyToMany = "manyToMany"
)

type Relation struct {
	Name       string `json:"name"`
	Type       string `json:"type"` // hasOne, hasMany, belongsTo, manyToMany
	Resource   string `json:"resource"`
	ForeignKey string `json:"foreignKey"`
	TargetKey  string `json:"targetKey,omitempty"`
	Through    string `json:"through,omitempty"` // join collection, manyToMany only
}

func (r *Relation) IsHasOne() bool     { return r.Type == HasOne }
func (r *Relation) IsHasMany() bool    { return r.Type == HasMany }
func (r *Relation) IsBelongsTo() bool  { return r.Type == BelongsTo }
func (r *Relation) IsManyToMany() bool { return r.Type == ManyToMany }

// ResolvedTargetKey returns the target-side key, defaulting to the target
// resource's primary key for belongsTo lookups.
func (r *Relation) ResolvedTargetKey(targetPrimaryKey string) string {
	if r.TargetKey != "" {
		return r.TargetKey
	}
	return targetPrimaryKey
}
