package core

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// EvaluateCondition compiles and evaluates a string expression against the
// SystemContext. Returns true if the condition is met (or empty), false
// otherwise. Conditions see the context fields directly, so manifests can
// write things like `Target == "ramips" && Release startsWith "23."`.
func EvaluateCondition(condition string, ctx *SystemContext) (bool, error) {
	if condition == "" {
		return true, nil
	}

	program, err := expr.Compile(condition, expr.Env(ctx))
	if err != nil {
		return false, fmt.Errorf("invalid condition '%s': %v", condition, err)
	}

	output, err := expr.Run(program, ctx)
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %v", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition must return a boolean, got %T", output)
	}

	return result, nil
}
