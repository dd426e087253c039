package metadata

// Rule is an expression-based validation rule attached to a resource.
// The expression is evaluated against {record, old, action} and the rule is
// violated when it yields true.
type Rule struct {
	Expression string `json:"expression"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message,omitempty"`

	// Compiled holds the cached compiled program (set lazily by the engine).
	Compiled any `json:"-"`
}
