package runtime

import (
	"encoding/base64"
	"fmt"

	"github.com/Jeffail/gabs/v2"
	"github.com/expr-lang/expr"
)

// Custom expression functions available in all parameter expressions
var exprFunctions = []expr.Option{
	expr.Function("base64_encode", func(params ...any) (any, error) {
		s, _ := params[0].(string)
		return base64.StdEncoding.EncodeToString([]byte(s)), nil
	}),
	expr.Function("base64_decode", func(params ...any) (any, error) {
		s, _ := params[0].(string)
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}),
}

// ExprEvaluator evaluates expressions using the expr-lang library.
// Member access works directly on the item maps (json.email, json.address.city).
type ExprEvaluator struct{}

func NewExprEvaluator() *ExprEvaluator {
	return &ExprEvaluator{}
}

func (e *ExprEvaluator) Eval(expression string, scope map[string]any) (any, error) {
	env := make(map[string]any, len(scope)+1)
	for k, v := range scope {
		env[k] = v
	}
	// null as alias for nil (JSON/YAML compatibility)
	env["null"] = nil

	// defined("json.field") distinguishes a missing key from a null value
	definedFn := expr.Function(
		"defined",
		func(params ...any) (any, error) {
			path, ok := params[0].(string)
			if !ok {
				return false, fmt.Errorf("defined() expects string path argument, got %T", params[0])
			}
			return gabs.Wrap(scope).ExistsP(path), nil
		},
		new(func(string) bool),
	)

	// NOTE: expr.Env MUST come before AllowUndefinedVariables for it to work
	opts := []expr.Option{
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		definedFn,
	}
	opts = append(opts, exprFunctions...)

	program, err := expr.Compile(expression, opts...)
	if err != nil {
		return nil, err
	}
	return expr.Run(program, env)
}
