package metadata

// Field types accepted in a resource spec.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeDate    = "date"
	TypeUUID    = "uuid"
)

type Field struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Required  bool     `json:"required,omitempty"`
	Unique    bool     `json:"unique,omitempty"`
	Enum      []any    `json:"enum,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// IsNumeric returns true for fields whose min/max constraints apply.
func (f Field) IsNumeric() bool {
	return f.Type == TypeNumber
}

// IsTextual returns true for fields whose length/pattern constraints apply.
func (f Field) IsTextual() bool {
	return f.Type == TypeString || f.Type == TypeDate || f.Type == TypeUUID
}

// HasConstraints returns true if any validation rule is declared on the field.
func (f Field) HasConstraints() bool {
	return f.Required || f.Unique || len(f.Enum) > 0 ||
		f.Min != nil || f.Max != nil ||
		f.MinLength != nil || f.MaxLength != nil || f.Pattern != ""
}
