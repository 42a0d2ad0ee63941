package runtime

import "context"

// WorkflowLoader loads workflow definitions from files.
type WorkflowLoader interface {
	Extensions() []string
	Load(filePath string) (Workflow, error)
}

// ExpressionEvaluator evaluates a parameter expression against the scope of
// the item being processed.
type ExpressionEvaluator interface {
	Eval(expression string, scope map[string]any) (any, error)
}

// CredentialStore hands out named credential records. Nodes read them on
// every call and never cache the result.
type CredentialStore interface {
	Get(ctx context.Context, name string) (map[string]any, error)
}
