package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Executor runs node executions and option lookups against a Container.
type Executor struct {
	l           *slog.Logger
	container   *Container
	credentials CredentialStore
	evaluator   ExpressionEvaluator
}

func NewExecutor(l *slog.Logger, container *Container, credentials CredentialStore) *Executor {
	if credentials == nil {
		credentials = CredentialSet{}
	}
	return &Executor{
		l:           l,
		container:   container,
		credentials: credentials,
		evaluator:   NewExprEvaluator(),
	}
}

// Request is a host request to run a node over a batch of items.
type Request struct {
	Node           string         `json:"node"`
	Parameters     map[string]any `json:"parameters"`
	Items          []Item         `json:"items"`
	ContinueOnFail bool           `json:"continueOnFail"`
	// Credentials layered over the executor's store; used for workflow files
	// carrying their own credential block.
	Credentials CredentialSet `json:"-"`
}

// Result is the outcome of a node run.
type Result struct {
	ExecutionID string        `json:"executionId"`
	Records     []Record      `json:"records"`
	Duration    time.Duration `json:"-"`
}

// RequestFromWorkflow adapts a workflow definition into a Request. A
// workflow without items runs once over a single empty item, the way a
// manually triggered workflow does.
func RequestFromWorkflow(w Workflow) Request {
	items := w.Items
	if len(items) == 0 {
		items = []Item{{}}
	}
	return Request{
		Node:           w.Node,
		Parameters:     w.Parameters,
		Items:          items,
		ContinueOnFail: w.ContinueOnFail,
		Credentials:    w.Credentials,
	}
}

// Run executes the node named in req and returns its records in input order.
func (e *Executor) Run(ctx context.Context, req Request) (Result, error) {
	node, err := e.container.GetNode(req.Node)
	if err != nil {
		return Result{}, err
	}

	exec := e.newExecution(ctx, req)
	e.l.InfoContext(exec, "Starting node execution",
		"execution_id", exec.ID,
		"node", req.Node,
		"items", len(exec.Items),
		"continue_on_fail", exec.ContinueOnFail)

	records, err := node.Execute(exec)
	duration := time.Since(exec.StartedAt)
	if err != nil {
		e.l.ErrorContext(exec, "Node execution failed",
			"execution_id", exec.ID,
			"node", req.Node,
			"duration", duration,
			"error", err)
		return Result{ExecutionID: exec.ID, Duration: duration}, fmt.Errorf("error executing node %s: %w", req.Node, err)
	}

	e.l.InfoContext(exec, "Node execution finished",
		"execution_id", exec.ID,
		"node", req.Node,
		"records", len(records),
		"duration", duration)

	if records == nil {
		records = []Record{}
	}
	return Result{ExecutionID: exec.ID, Records: records, Duration: duration}, nil
}

// LoadOptions runs an option provider of a node with the given parameters.
func (e *Executor) LoadOptions(ctx context.Context, req Request, method string) ([]Option, error) {
	provider, err := e.container.Options(req.Node, method)
	if err != nil {
		return nil, err
	}

	exec := e.newExecution(ctx, req)
	options, err := provider(exec)
	if err != nil {
		e.l.ErrorContext(exec, "Loading options failed",
			"node", req.Node,
			"method", method,
			"error", err)
		return nil, fmt.Errorf("error loading %s options for %s: %w", method, req.Node, err)
	}

	e.l.DebugContext(exec, "Options loaded",
		"node", req.Node,
		"method", method,
		"count", len(options))

	if options == nil {
		options = []Option{}
	}
	return options, nil
}

func (e *Executor) newExecution(ctx context.Context, req Request) *Execution {
	var credentials CredentialStore = e.credentials
	if len(req.Credentials) > 0 {
		credentials = layeredCredentials{primary: req.Credentials, fallback: e.credentials}
	}

	return NewExecution(ctx, ExecutionOptions{
		Node:           req.Node,
		Parameters:     req.Parameters,
		Items:          req.Items,
		ContinueOnFail: req.ContinueOnFail,
		Credentials:    credentials,
		Logger:         e.l,
		Evaluator:      e.evaluator,
	})
}

// layeredCredentials consults primary first and falls back on a miss.
type layeredCredentials struct {
	primary  CredentialStore
	fallback CredentialStore
}

func (l layeredCredentials) Get(ctx context.Context, name string) (map[string]any, error) {
	record, err := l.primary.Get(ctx, name)
	if err == nil || !errors.Is(err, ErrCredentialsNotFound) {
		return record, err
	}
	return l.fallback.Get(ctx, name)
}
