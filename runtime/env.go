package runtime

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${VAR} and ${VAR:default} syntax
var envVarPattern = regexp.MustCompile(`^\$\{([A-Z_][A-Z0-9_]*)(:[^}]*)?\}$`)

// EnvRef describes a value written as an environment variable reference.
type EnvRef struct {
	Name       string
	HasDefault bool
	Default    string
}

// ParseEnvRef reports whether value is an environment reference and parses it.
//
//	ParseEnvRef("${CM_API_KEY}")          -> required "CM_API_KEY"
//	ParseEnvRef("${CM_LIST:abc123}")      -> "CM_LIST" with default "abc123"
//	ParseEnvRef("${ json.email }")        -> not a reference (expression)
func ParseEnvRef(value string) (EnvRef, bool) {
	matches := envVarPattern.FindStringSubmatch(value)
	if matches == nil {
		return EnvRef{}, false
	}

	ref := EnvRef{Name: matches[1]}
	if matches[2] != "" {
		ref.HasDefault = true
		ref.Default = strings.TrimPrefix(matches[2], ":")
	}
	return ref, true
}

// Lookup resolves the reference against the process environment.
func (r EnvRef) Lookup() (string, error) {
	if v, ok := os.LookupEnv(r.Name); ok {
		return v, nil
	}
	if r.HasDefault {
		return r.Default, nil
	}
	return "", fmt.Errorf("required environment variable not set: %s", r.Name)
}

// ResolveEnv replaces environment references found in value. Maps and slices
// are walked recursively; values that are not references are returned as-is.
func ResolveEnv(value any) (any, error) {
	switch v := value.(type) {
	case string:
		ref, ok := ParseEnvRef(v)
		if !ok {
			return v, nil
		}
		return ref.Lookup()
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			resolved, err := ResolveEnv(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			resolved, err := ResolveEnv(item)
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

// ResolveEnvMap is ResolveEnv for the common map case.
func ResolveEnvMap(m map[string]any) (map[string]any, error) {
	if m == nil {
		return map[string]any{}, nil
	}
	resolved, err := ResolveEnv(m)
	if err != nil {
		return nil, err
	}
	return resolved.(map[string]any), nil
}
