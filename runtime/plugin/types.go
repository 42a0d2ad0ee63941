package plugin

import "github.com/sflowg/campaignmonitor/runtime"

// NodeError is the error type understood by the host item loop.
type NodeError = runtime.NodeError

// ErrorKind classifies a NodeError.
type ErrorKind = runtime.ErrorKind

const (
	ErrorKindCredential = runtime.ErrorKindCredential
	ErrorKindAPI        = runtime.ErrorKindAPI
	ErrorKindParameter  = runtime.ErrorKindParameter
)

// ErrCredentialsNotFound is returned by the credential store on a miss.
var ErrCredentialsNotFound = runtime.ErrCredentialsNotFound

// NewNodeError creates a NodeError not yet tied to an item.
func NewNodeError(kind ErrorKind, node string, err error) *NodeError {
	return runtime.NewNodeError(kind, node, err)
}

// DecodeParameters fills a typed parameter struct (json tags) from resolved
// parameters, applying `default` tags and `validate` rules.
func DecodeParameters(raw map[string]any, target any) error {
	return runtime.DecodeParameters(raw, target)
}

// ErrorMessage returns the record-level message of err.
func ErrorMessage(err error) string {
	return runtime.ErrorMessage(err)
}

// IsFatal reports whether err must abort the run regardless of
// continue-on-failure.
func IsFatal(err error) bool {
	return runtime.IsFatal(err)
}
