package runtime

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// OptionsProvider populates a host dropdown by querying the upstream service.
type OptionsProvider func(exec *Execution) ([]Option, error)

type Container struct {
	nodes   map[string]Node
	options map[string]map[string]OptionsProvider // node -> method -> provider
	order   []string                              // registration order, used for lifecycle
}

func NewContainer() *Container {
	return &Container{
		nodes:   make(map[string]Node),
		options: make(map[string]map[string]OptionsProvider),
	}
}

// RegisterNode registers a node instance and auto-discovers its option providers.
func (c *Container) RegisterNode(name string, node Node) error {
	if node == nil {
		return fmt.Errorf("node cannot be nil")
	}
	if name == "" {
		return fmt.Errorf("node name cannot be empty")
	}
	if _, exists := c.nodes[name]; exists {
		return fmt.Errorf("node %q already registered", name)
	}

	c.nodes[name] = node
	c.order = append(c.order, name)
	c.options[name] = discoverOptionProviders(node)

	return nil
}

// GetNode returns a registered node by name.
func (c *Container) GetNode(name string) (Node, error) {
	node, ok := c.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	return node, nil
}

// Nodes returns registered node names, sorted.
func (c *Container) Nodes() []string {
	names := make([]string, 0, len(c.nodes))
	for name := range c.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options returns the option provider registered under node/method.
func (c *Container) Options(node, method string) (OptionsProvider, error) {
	providers, ok := c.options[node]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, node)
	}
	provider, ok := providers[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrOptionsMethodNotFound, node, method)
	}
	return provider, nil
}

// OptionMethods lists the option providers of a node, sorted.
func (c *Container) OptionMethods(node string) []string {
	methods := make([]string, 0, len(c.options[node]))
	for name := range c.options[node] {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// Initialize calls Initialize on every node implementing Initializer, in
// registration order. The first failure stops startup.
func (c *Container) Initialize(ctx context.Context) error {
	for _, name := range c.order {
		if initializer, ok := c.nodes[name].(Initializer); ok {
			if err := initializer.Initialize(ctx); err != nil {
				return fmt.Errorf("node %s initialization failed: %w", name, err)
			}
		}
	}
	return nil
}

// Shutdown calls Shutdown on every node implementing Shutdowner.
// Nodes are shut down in reverse order of registration.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	for _, name := range slices.Backward(c.order) {
		if shutdowner, ok := c.nodes[name].(Shutdowner); ok {
			if err := shutdowner.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("node %s shutdown failed: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// discoverOptionProviders finds exported methods with the signature
// func(*Execution) ([]Option, error) and registers them under their
// lower-first name (GetLists -> getLists).
func discoverOptionProviders(node Node) map[string]OptionsProvider {
	providers := make(map[string]OptionsProvider)

	nodeType := reflect.TypeOf(node)
	nodeValue := reflect.ValueOf(node)

	for i := 0; i < nodeType.NumMethod(); i++ {
		method := nodeType.Method(i)
		if !method.IsExported() || !isValidOptionsSignature(method.Type) {
			continue
		}
		providers[toLowerFirst(method.Name)] = createOptionsProvider(nodeValue, method)
	}

	return providers
}

// isValidOptionsSignature checks for func(recv, *Execution) ([]Option, error)
func isValidOptionsSignature(methodType reflect.Type) bool {
	if methodType.NumIn() != 2 || methodType.NumOut() != 2 {
		return false
	}

	executionPtrType := reflect.TypeOf((*Execution)(nil))
	optionsType := reflect.TypeOf([]Option(nil))
	errorType := reflect.TypeOf((*error)(nil)).Elem()

	return methodType.In(1) == executionPtrType &&
		methodType.Out(0) == optionsType &&
		methodType.Out(1) == errorType
}

// toLowerFirst converts first character of string to lowercase
func toLowerFirst(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func createOptionsProvider(nodeValue reflect.Value, method reflect.Method) OptionsProvider {
	return func(exec *Execution) ([]Option, error) {
		results := method.Func.Call([]reflect.Value{
			nodeValue,
			reflect.ValueOf(exec),
		})

		options, _ := results[0].Interface().([]Option)

		var err error
		if !results[1].IsNil() {
			err = results[1].Interface().(error)
		}

		return options, err
	}
}
