// Package plugin provides the minimal surface for writing sflowg host nodes.
//
// Node authors import only this package, never the parent "runtime"
// package:
//
//	import "github.com/sflowg/campaignmonitor/runtime/plugin"
//
// # Node Structure
//
// A node is a struct with an Execute method:
//
//	type EchoNode struct{}
//
//	func (n *EchoNode) Execute(exec *plugin.Execution) ([]plugin.Record, error) {
//	    records := make([]plugin.Record, 0, len(exec.Items))
//	    for i := range exec.Items {
//	        msg, err := exec.Parameter("message", i)
//	        if err != nil {
//	            return nil, err
//	        }
//	        records = append(records, plugin.Record{"message": msg})
//	    }
//	    return records, nil
//	}
//
// # Configuration
//
// Nodes can define a Config struct with declarative tags. The host applies
// defaults, merges the node section of its config file and validates before
// Initialize is called:
//
//	type Config struct {
//	    BaseURL string        `yaml:"base_url" default:"https://api.example.com" validate:"required,url_format"`
//	    Timeout time.Duration `yaml:"timeout" default:"30s" validate:"gte=1s"`
//	}
//
// # Parameters
//
// Parameter values are resolved per item by the host. Literal values pass
// through, ${ expr } values are evaluated against the item (json.<field>,
// index) and ${ENV_VAR} values come from the environment. Typed parameter
// structs are filled with DecodeParameters:
//
//	type sendParams struct {
//	    Email string `json:"email" validate:"required"`
//	}
//
//	raw, _ := exec.Parameters(i)
//	var p sendParams
//	if err := plugin.DecodeParameters(raw, &p); err != nil { ... }
//
// # Option Providers
//
// Exported methods with the signature
//
//	func (n *MyNode) GetThings(exec *plugin.Execution) ([]plugin.Option, error)
//
// are discovered at registration and served as "getThings" to populate host
// dropdowns.
//
// # Lifecycle
//
// Nodes may implement Initializer and Shutdowner. Initialize runs once at
// container startup in registration order; Shutdown runs in reverse order.
//
// # Errors
//
// Return a *NodeError to tell the host how to treat a failure. Credential
// errors always abort the run; other kinds are recorded as {error: message}
// when the workflow continues on failure.
package plugin
