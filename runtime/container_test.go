package runtime

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
)

// echoNode returns one record per item carrying its resolved message.
type echoNode struct {
	name    string
	events  *[]string
	initErr error
	stopErr error
}

func (n *echoNode) Execute(exec *Execution) ([]Record, error) {
	records := make([]Record, 0, len(exec.Items))
	for i := range exec.Items {
		msg, err := exec.Parameter("message", i)
		if err != nil {
			return nil, err
		}
		if msg == "fail" {
			return nil, NewNodeError(ErrorKindAPI, n.name, errors.New("boom")).WithItem(i)
		}
		records = append(records, Record{"message": msg, "index": i})
	}
	return records, nil
}

func (n *echoNode) GetColors(exec *Execution) ([]Option, error) {
	prefix, err := exec.StringParameter("prefix")
	if err != nil {
		return nil, err
	}
	return []Option{{Name: prefix + "red", Value: "red"}, {Name: prefix + "blue", Value: "blue"}}, nil
}

func (n *echoNode) GetSecret(exec *Execution) ([]Option, error) {
	creds, err := exec.Credentials("echoApi")
	if err != nil {
		return nil, err
	}
	return []Option{{Name: "key", Value: fmt.Sprint(creds["apiKey"])}}, nil
}

// Not option providers: wrong signatures.
func (n *echoNode) Describe() string                    { return n.name }
func (n *echoNode) GetNothing(exec *Execution) []Option { return nil }

func (n *echoNode) Operations() []string {
	return []string{"echo.say"}
}

func (n *echoNode) Initialize(ctx context.Context) error {
	if n.events != nil {
		*n.events = append(*n.events, "init:"+n.name)
	}
	return n.initErr
}

func (n *echoNode) Shutdown(ctx context.Context) error {
	if n.events != nil {
		*n.events = append(*n.events, "shutdown:"+n.name)
	}
	return n.stopErr
}

// bareNode implements only Node.
type bareNode struct{}

func (bareNode) Execute(exec *Execution) ([]Record, error) { return nil, nil }

func TestContainer_RegisterNode(t *testing.T) {
	c := NewContainer()

	if err := c.RegisterNode("echo", &echoNode{name: "echo"}); err != nil {
		t.Fatalf("RegisterNode failed: %v", err)
	}
	if err := c.RegisterNode("bare", bareNode{}); err != nil {
		t.Fatalf("RegisterNode failed: %v", err)
	}

	tests := []struct {
		name string
		node string
		impl Node
	}{
		{"duplicate", "echo", &echoNode{}},
		{"empty name", "", &echoNode{}},
		{"nil node", "other", nil},
	}
	for _, tt := range tests {
		if err := c.RegisterNode(tt.node, tt.impl); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	if got := c.Nodes(); !slices.Equal(got, []string{"bare", "echo"}) {
		t.Errorf("Nodes() = %v", got)
	}
}

func TestContainer_GetNode(t *testing.T) {
	c := NewContainer()
	c.RegisterNode("echo", &echoNode{name: "echo"})

	if _, err := c.GetNode("echo"); err != nil {
		t.Errorf("GetNode(echo) error = %v", err)
	}
	if _, err := c.GetNode("missing"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("GetNode(missing) error = %v, want ErrNodeNotFound", err)
	}
}

func TestContainer_DiscoversOptionProviders(t *testing.T) {
	c := NewContainer()
	c.RegisterNode("echo", &echoNode{name: "echo"})
	c.RegisterNode("bare", bareNode{})

	if got := c.OptionMethods("echo"); !slices.Equal(got, []string{"getColors", "getSecret"}) {
		t.Errorf("OptionMethods(echo) = %v", got)
	}
	if got := c.OptionMethods("bare"); len(got) != 0 {
		t.Errorf("OptionMethods(bare) = %v, want none", got)
	}

	provider, err := c.Options("echo", "getColors")
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	exec := NewExecution(context.Background(), ExecutionOptions{Parameters: map[string]any{"prefix": "dark "}})
	options, err := provider(exec)
	if err != nil {
		t.Fatalf("provider failed: %v", err)
	}
	if len(options) != 2 || options[0] != (Option{Name: "dark red", Value: "red"}) {
		t.Errorf("options = %v", options)
	}

	if _, err := c.Options("echo", "getNothing"); !errors.Is(err, ErrOptionsMethodNotFound) {
		t.Errorf("Options(getNothing) error = %v, want ErrOptionsMethodNotFound", err)
	}
	if _, err := c.Options("missing", "getColors"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Options(missing) error = %v, want ErrNodeNotFound", err)
	}
}

func TestContainer_ProviderErrorsPropagate(t *testing.T) {
	c := NewContainer()
	c.RegisterNode("echo", &echoNode{name: "echo"})

	provider, _ := c.Options("echo", "getSecret")
	_, err := provider(NewExecution(context.Background(), ExecutionOptions{}))
	if !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("provider error = %v, want ErrCredentialsNotFound", err)
	}
}

func TestContainer_Lifecycle(t *testing.T) {
	var events []string
	c := NewContainer()
	c.RegisterNode("first", &echoNode{name: "first", events: &events})
	c.RegisterNode("bare", bareNode{})
	c.RegisterNode("second", &echoNode{name: "second", events: &events})

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	want := []string{"init:first", "init:second", "shutdown:second", "shutdown:first"}
	if !slices.Equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestContainer_InitializeStopsOnFirstError(t *testing.T) {
	var events []string
	initErr := errors.New("bad config")
	c := NewContainer()
	c.RegisterNode("first", &echoNode{name: "first", events: &events, initErr: initErr})
	c.RegisterNode("second", &echoNode{name: "second", events: &events})

	err := c.Initialize(context.Background())
	if !errors.Is(err, initErr) {
		t.Fatalf("Initialize error = %v, want %v", err, initErr)
	}
	if !slices.Equal(events, []string{"init:first"}) {
		t.Errorf("events = %v, second node must not initialize", events)
	}
}

func TestContainer_ShutdownJoinsErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	c := NewContainer()
	c.RegisterNode("a", &echoNode{name: "a", stopErr: errA})
	c.RegisterNode("b", &echoNode{name: "b", stopErr: errB})

	err := c.Shutdown(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Shutdown error = %v, want both errors", err)
	}
}
