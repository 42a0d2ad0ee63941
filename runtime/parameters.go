package runtime

import (
	"fmt"
	"regexp"
	"strings"
)

// expressionPattern matches ${ ... } segments inside a parameter string.
var expressionPattern = regexp.MustCompile(`\$\{(.+?)\}`)

// Expression scope keys exposed to parameter expressions.
const (
	ScopeJSON  = "json"
	ScopeIndex = "index"
)

// ParameterResolver turns the raw parameter set of a node into per-item values.
//
// String values are resolved in this order:
//   - ${ENV_VAR} / ${ENV_VAR:default}: kept as literal text. Parameters may
//     come from HTTP callers, so the environment is only read where operator
//     files are loaded (ParseWorkflow, InitializeConfig, CredentialSet).
//   - "${ expr }" as the whole value: the typed result of expr
//   - text with embedded ${ expr } segments: string interpolation
//   - anything else: literal
//
// Maps and slices are resolved recursively.
type ParameterResolver struct {
	raw       map[string]any
	evaluator ExpressionEvaluator
}

func NewParameterResolver(raw map[string]any, evaluator ExpressionEvaluator) *ParameterResolver {
	if raw == nil {
		raw = map[string]any{}
	}
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	return &ParameterResolver{raw: raw, evaluator: evaluator}
}

// Has reports whether the parameter was supplied at all.
func (r *ParameterResolver) Has(name string) bool {
	_, ok := r.raw[name]
	return ok
}

// Resolve returns one parameter evaluated for the given item.
// Unknown parameters resolve to nil.
func (r *ParameterResolver) Resolve(name string, item Item, index int) (any, error) {
	v, ok := r.raw[name]
	if !ok {
		return nil, nil
	}
	resolved, err := r.resolveValue(v, scopeFor(item, index))
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", name, err)
	}
	return resolved, nil
}

// ResolveAll returns every parameter evaluated for the given item.
func (r *ParameterResolver) ResolveAll(item Item, index int) (map[string]any, error) {
	scope := scopeFor(item, index)
	out := make(map[string]any, len(r.raw))
	for name, v := range r.raw {
		resolved, err := r.resolveValue(v, scope)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out[name] = resolved
	}
	return out, nil
}

func scopeFor(item Item, index int) map[string]any {
	if item == nil {
		item = Item{}
	}
	return map[string]any{
		ScopeJSON:  item,
		ScopeIndex: index,
	}
}

func (r *ParameterResolver) resolveValue(value any, scope map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		return r.resolveString(v, scope)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			resolved, err := r.resolveValue(item, scope)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			resolved, err := r.resolveValue(item, scope)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

func (r *ParameterResolver) resolveString(s string, scope map[string]any) (any, error) {
	if _, ok := ParseEnvRef(s); ok {
		return s, nil
	}

	matches := expressionPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	// A value that is exactly one expression keeps the expression's type.
	trimmed := strings.TrimSpace(s)
	if len(matches) == 1 && matches[0][0] == strings.Index(s, trimmed) && matches[0][1]-matches[0][0] == len(trimmed) {
		return r.evaluator.Eval(strings.TrimSpace(s[matches[0][2]:matches[0][3]]), scope)
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		result, err := r.evaluator.Eval(strings.TrimSpace(s[m[2]:m[3]]), scope)
		if err != nil {
			return nil, err
		}
		if result != nil {
			fmt.Fprint(&b, result)
		}
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}
