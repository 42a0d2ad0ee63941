package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var _ context.Context = &Execution{}

// Item is one input JSON record handed to a node.
type Item = map[string]any

// Record is one output JSON record produced by a node.
type Record = map[string]any

// Option is one entry of a host dropdown populated by a node.
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ExecutionOptions describe a single node invocation.
type ExecutionOptions struct {
	Node           string
	Parameters     map[string]any
	Items          []Item
	ContinueOnFail bool
	Credentials    CredentialStore
	Logger         *slog.Logger
	Evaluator      ExpressionEvaluator
}

// Execution is the host context passed to a node for one invocation.
// It implements context.Context so it can be handed to any blocking call.
type Execution struct {
	ID             string
	Node           string
	Items          []Item
	ContinueOnFail bool
	Logger         *slog.Logger
	StartedAt      time.Time

	parameters  *ParameterResolver
	credentials CredentialStore
	ctx         context.Context // real context carrying deadline/cancellation
}

// NewExecution builds an Execution. A run without input items has nothing
// to process.
func NewExecution(ctx context.Context, opts ExecutionOptions) *Execution {
	if ctx == nil {
		ctx = context.Background()
	}

	items := opts.Items
	if items == nil {
		items = []Item{}
	}

	credentials := opts.Credentials
	if credentials == nil {
		credentials = CredentialSet{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	id := uuid.New().String()
	return &Execution{
		ID:             id,
		Node:           opts.Node,
		Items:          items,
		ContinueOnFail: opts.ContinueOnFail,
		Logger:         logger.With("execution_id", id, "node", opts.Node),
		StartedAt:      time.Now(),
		parameters:     NewParameterResolver(opts.Parameters, opts.Evaluator),
		credentials:    credentials,
		ctx:            ctx,
	}
}

// context.Context implementation delegates to the embedded ctx so that real
// timeouts and cancellations propagate to slog and HTTP calls.

func (e *Execution) Deadline() (deadline time.Time, ok bool) {
	return e.ctx.Deadline()
}

func (e *Execution) Done() <-chan struct{} {
	return e.ctx.Done()
}

func (e *Execution) Err() error {
	return e.ctx.Err()
}

func (e *Execution) Value(key any) any {
	return e.ctx.Value(key)
}

// WithContext returns a shallow copy of the Execution with a new embedded
// context. Mirrors the http.Request.WithContext pattern.
func (e *Execution) WithContext(ctx context.Context) *Execution {
	copy := *e
	copy.ctx = ctx
	return &copy
}

// Parameter returns the value of one parameter for the item at index.
func (e *Execution) Parameter(name string, index int) (any, error) {
	item, err := e.item(index)
	if err != nil {
		return nil, err
	}
	return e.parameters.Resolve(name, item, index)
}

// Parameters returns every parameter resolved for the item at index.
func (e *Execution) Parameters(index int) (map[string]any, error) {
	item, err := e.item(index)
	if err != nil {
		return nil, err
	}
	return e.parameters.ResolveAll(item, index)
}

// CurrentParameter resolves a parameter outside of any item, as option-list
// providers do while the host renders the node form.
func (e *Execution) CurrentParameter(name string) (any, error) {
	return e.parameters.Resolve(name, Item{}, 0)
}

// StringParameter resolves a parameter outside of any item as a string.
func (e *Execution) StringParameter(name string) (string, error) {
	v, err := e.CurrentParameter(name)
	if err != nil {
		return "", err
	}
	return stringValue(v), nil
}

// Credentials reads a credential record from the host store.
func (e *Execution) Credentials(name string) (map[string]any, error) {
	return e.credentials.Get(e, name)
}

func (e *Execution) item(index int) (Item, error) {
	if index < 0 || index >= len(e.Items) {
		return nil, fmt.Errorf("item index %d out of range (%d items)", index, len(e.Items))
	}
	return e.Items[index], nil
}
