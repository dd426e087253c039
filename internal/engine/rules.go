package engine

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"mockforge/internal/metadata"
	"mockforge/internal/store"
)

// EvaluateRules runs a resource's expression rules against a candidate record.
// The environment exposes record, old (previous state on update, nil on
// create), and action ("create" or "update"). A rule is violated when its
// expression yields true. All violations are collected.
func EvaluateRules(rules []metadata.Rule, record store.Record, old store.Record, isUpdate bool) []ErrorDetail {
	if len(rules) == 0 {
		return nil
	}

	action := "create"
	if isUpdate {
		action = "update"
	}

	env := map[string]any{
		"record": map[string]any(record),
		"old":    map[string]any(old),
		"action": action,
	}

	var errs []ErrorDetail
	for i := range rules {
		if detail := evaluateRule(&rules[i], env); detail != nil {
			errs = append(errs, *detail)
		}
	}
	return errs
}

func evaluateRule(rule *metadata.Rule, env map[string]any) *ErrorDetail {
	prog, ok := rule.Compiled.(*vm.Program)
	if !ok || prog == nil {
		compiled, err := CompileRule(rule.Expression)
		if err != nil {
			return &ErrorDetail{Field: rule.Field, Rule: "expression", Message: fmt.Sprintf("compile error: %v", err)}
		}
		rule.Compiled = compiled
		prog = compiled
	}

	result, err := expr.Run(prog, env)
	if err != nil {
		return &ErrorDetail{Field: rule.Field, Rule: "expression", Message: fmt.Sprintf("rule evaluation error: %v", err)}
	}

	violated, ok := result.(bool)
	if !ok || !violated {
		return nil
	}

	msg := rule.Message
	if msg == "" {
		msg = "Expression rule violated"
	}
	return &ErrorDetail{Field: rule.Field, Rule: "expression", Message: msg}
}

// CompileRule compiles a rule expression into an expr-lang program.
func CompileRule(expression string) (*vm.Program, error) {
	prog, err := expr.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile expression: %w", err)
	}
	return prog, nil
}
