package campaignmonitor

import (
	"context"
	"errors"
	"time"

	"github.com/sflowg/campaignmonitor/runtime/plugin"
)

// NodeName is the name the node is registered under in the host container.
const NodeName = "campaignmonitor"

// Config holds the node configuration with declarative tags
type Config struct {
	BaseURL   string        `yaml:"base_url" default:"https://api.createsend.com/api/v3.2" validate:"required,url_format"`
	Timeout   time.Duration `yaml:"timeout" default:"30s" validate:"gte=1s"`
	RateLimit float64       `yaml:"rate_limit" default:"0" validate:"gte=0"` // requests per second, 0 = unlimited
	RateBurst int           `yaml:"rate_burst" default:"1" validate:"gte=1"`
	UserAgent string        `yaml:"user_agent" default:"sflowg-campaignmonitor"`
	Debug     bool          `yaml:"debug" default:"false"`
}

// Node dispatches member, campaign and transactional operations against the
// Campaign Monitor API.
type Node struct {
	Config Config // Exported so the host can prepare it before Initialize
	client *Client
}

var (
	_ plugin.Node            = (*Node)(nil)
	_ plugin.Initializer     = (*Node)(nil)
	_ plugin.Shutdowner      = (*Node)(nil)
	_ plugin.OperationLister = (*Node)(nil)
)

var errNotInitialized = errors.New("node is not initialized")

// Initialize implements the plugin.Initializer interface
// Config is already validated by the host before this is called
func (n *Node) Initialize(ctx context.Context) error {
	n.client = NewClient(n.Config)
	return nil
}

// Shutdown implements the plugin.Shutdowner interface
func (n *Node) Shutdown(ctx context.Context) error {
	n.client = nil
	return nil
}

// Operations implements the plugin.OperationLister interface
func (n *Node) Operations() []string {
	return OperationNames()
}

// Execute runs the selected resource.operation once per input item, in order.
// With continue-on-failure a failing item yields {error: message} and the
// loop moves on; otherwise the first failure aborts the batch. Credential
// failures always abort.
func (n *Node) Execute(exec *plugin.Execution) ([]plugin.Record, error) {
	if n.client == nil {
		return nil, plugin.NewNodeError(plugin.ErrorKindAPI, NodeName, errNotInitialized)
	}
	if len(exec.Items) == 0 {
		return []plugin.Record{}, nil
	}

	sel, err := readSelection(exec)
	if err != nil {
		return nil, err
	}
	h, err := lookupOperation(sel.Resource, sel.Operation)
	if err != nil {
		return nil, err
	}

	records := make([]plugin.Record, 0, len(exec.Items))
	for i := range exec.Items {
		resp, err := n.executeItem(exec, h, sel, i)
		if err != nil {
			if exec.ContinueOnFail && !plugin.IsFatal(err) {
				exec.Logger.WarnContext(exec, "Item failed, continuing",
					"resource", sel.Resource,
					"operation", sel.Operation,
					"item", i,
					"error", err)
				records = append(records, plugin.Record{"error": plugin.ErrorMessage(err)})
				continue
			}
			return nil, err
		}
		records = appendResponse(records, resp)
	}

	return records, nil
}

// selectionParameters are the only parameters read before the item loop.
var selectionParameters = []string{"authentication", "resource", "operation"}

// readSelection reads resource, operation and authentication from the first
// item; they are the same for the whole batch. Every other parameter is
// resolved per item, so a failure there stays with its item.
func readSelection(exec *plugin.Execution) (selection, error) {
	var sel selection

	params := make(map[string]any, len(selectionParameters))
	for _, name := range selectionParameters {
		v, err := exec.Parameter(name, 0)
		if err != nil {
			return sel, plugin.NewNodeError(plugin.ErrorKindParameter, NodeName, err)
		}
		if v != nil {
			params[name] = v
		}
	}
	if err := plugin.DecodeParameters(params, &sel); err != nil {
		return sel, plugin.NewNodeError(plugin.ErrorKindParameter, NodeName, err)
	}
	if err := checkAuthentication(sel.Authentication); err != nil {
		return sel, err
	}
	return sel, nil
}

func (n *Node) executeItem(exec *plugin.Execution, h handler, sel selection, i int) (any, error) {
	c := &call{
		exec:      exec,
		client:    n.client,
		resource:  sel.Resource,
		operation: sel.Operation,
		item:      i,
	}

	params, err := exec.Parameters(i)
	if err != nil {
		return nil, c.nodeError(plugin.ErrorKindParameter, err)
	}
	return h(c, params)
}

// appendResponse flattens array responses into one record per element. An
// empty response becomes {success: true}.
func appendResponse(records []plugin.Record, resp any) []plugin.Record {
	switch v := resp.(type) {
	case nil:
		return append(records, success())
	case map[string]any:
		return append(records, v)
	case []any:
		for _, elem := range v {
			records = appendElement(records, elem)
		}
		return records
	default:
		return append(records, plugin.Record{"value": v})
	}
}

func appendElement(records []plugin.Record, elem any) []plugin.Record {
	if record, ok := elem.(map[string]any); ok {
		return append(records, record)
	}
	return append(records, plugin.Record{"value": elem})
}
