package runtime

import "context"

// Node is a host plugin that turns a batch of input items into output records.
type Node interface {
	Execute(exec *Execution) ([]Record, error)
}

// Initializer interface allows nodes to perform startup initialization.
// Nodes implementing this interface will have Initialize called at container startup.
type Initializer interface {
	// Initialize is called once when the container starts up.
	// Config is already prepared and validated on the node struct.
	Initialize(ctx context.Context) error
}

// Shutdowner interface allows nodes to perform graceful shutdown.
// Nodes implementing this interface will have Shutdown called during graceful shutdown.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// OperationLister is implemented by nodes that can enumerate the
// resource.operation pairs they dispatch.
type OperationLister interface {
	Operations() []string
}
