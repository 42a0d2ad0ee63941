package runtime

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCredentialsNotFound   = errors.New("credentials not found")
	ErrNodeNotFound          = errors.New("node not found")
	ErrOptionsMethodNotFound = errors.New("options method not found")
)

// ErrorKind classifies node failures.
type ErrorKind string

const (
	// ErrorKindCredential means the request could not be signed. Always fatal.
	ErrorKindCredential ErrorKind = "credential"
	// ErrorKindAPI covers transport failures, non-2xx responses and unreadable bodies.
	ErrorKindAPI ErrorKind = "api"
	// ErrorKindParameter covers missing or invalid node parameters.
	ErrorKindParameter ErrorKind = "parameter"
)

// NodeError wraps a failure raised while a node processes its items.
// Item is -1 when the failure is not tied to a single input item.
type NodeError struct {
	Kind      ErrorKind
	Node      string
	Resource  string
	Operation string
	Item      int
	Err       error
	Metadata  map[string]any
}

func NewNodeError(kind ErrorKind, node string, err error) *NodeError {
	return &NodeError{
		Kind:     kind,
		Node:     node,
		Item:     -1,
		Err:      err,
		Metadata: make(map[string]any),
	}
}

func (e *NodeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Node)
	if e.Resource != "" || e.Operation != "" {
		fmt.Fprintf(&b, " %s.%s", e.Resource, e.Operation)
	}
	if e.Item >= 0 {
		fmt.Fprintf(&b, " (item %d)", e.Item)
	}
	b.WriteString(": ")
	b.WriteString(e.Message())
	return b.String()
}

// Message is the underlying failure text without node context. It is what
// ends up in {error: ...} records.
func (e *NodeError) Message() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind) + " error"
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *NodeError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error must abort the batch even when the
// workflow continues on failure.
func (e *NodeError) Fatal() bool {
	return e.Kind == ErrorKindCredential
}

// WithOperation records the resource/operation being dispatched.
func (e *NodeError) WithOperation(resource, operation string) *NodeError {
	e.Resource = resource
	e.Operation = operation
	return e
}

// WithItem records the input item index.
func (e *NodeError) WithItem(index int) *NodeError {
	e.Item = index
	return e
}

// WithMetadata adds metadata to the error
func (e *NodeError) WithMetadata(key string, value any) *NodeError {
	e.Metadata[key] = value
	return e
}

// ErrorMessage returns the record-level message for err.
func ErrorMessage(err error) string {
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) {
		return nodeErr.Message()
	}
	return err.Error()
}

// IsFatal reports whether err carries a NodeError that must abort the batch.
func IsFatal(err error) bool {
	var nodeErr *NodeError
	return errors.As(err, &nodeErr) && nodeErr.Fatal()
}
