package campaignmonitor

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/Jeffail/gabs/v2"
	"github.com/sflowg/campaignmonitor/runtime/plugin"
)

// GetClients lists the clients of the account.
func (n *Node) GetClients(exec *plugin.Execution) ([]plugin.Option, error) {
	c, err := n.optionsCall(exec, "getClients")
	if err != nil {
		return nil, err
	}

	clients, err := c.do(Request{Method: http.MethodGet, Path: "/clients.json"})
	if err != nil {
		return nil, err
	}
	return toOptions(clients, "Name", "ClientID"), nil
}

// GetLists lists the subscriber lists of the selected client.
func (n *Node) GetLists(exec *plugin.Execution) ([]plugin.Option, error) {
	c, client, err := n.optionsCallFor(exec, "getLists", "client")
	if err != nil || client == "" {
		return []plugin.Option{}, err
	}

	lists, err := c.do(Request{
		Method: http.MethodGet,
		Path:   "/clients/" + url.PathEscape(client) + "/lists.json",
	})
	if err != nil {
		return nil, err
	}
	return toOptions(lists, "Name", "ListID"), nil
}

// GetSmartEmails lists the active smart emails of the selected client.
func (n *Node) GetSmartEmails(exec *plugin.Execution) ([]plugin.Option, error) {
	c, client, err := n.optionsCallFor(exec, "getSmartEmails", "client")
	if err != nil || client == "" {
		return []plugin.Option{}, err
	}

	emails, err := c.do(Request{
		Method: http.MethodGet,
		Path:   "/transactional/smartEmail",
		Query:  url.Values{"status": {"active"}, "clientID": {client}},
	})
	if err != nil {
		return nil, err
	}
	return toOptions(emails, "Name", "ID"), nil
}

// GetSmartEmailCustomFields lists the template variables of the selected
// smart email.
func (n *Node) GetSmartEmailCustomFields(exec *plugin.Execution) ([]plugin.Option, error) {
	c, smartEmail, err := n.optionsCallFor(exec, "getSmartEmailCustomFields", "smartEmail")
	if err != nil || smartEmail == "" {
		return []plugin.Option{}, err
	}

	details, err := c.do(Request{
		Method: http.MethodGet,
		Path:   "/transactional/smartEmail/" + url.PathEscape(smartEmail),
	})
	if err != nil {
		return nil, err
	}

	options := []plugin.Option{}
	for _, variable := range gabs.Wrap(details).Path("Properties.Content.EmailVariables").Children() {
		name := text(variable.Data())
		options = append(options, plugin.Option{Name: name, Value: name})
	}
	return options, nil
}

// GetCampaigns lists the sent campaigns of the selected client followed by
// its drafts.
func (n *Node) GetCampaigns(exec *plugin.Execution) ([]plugin.Option, error) {
	c, client, err := n.optionsCallFor(exec, "getCampaigns", "client")
	if err != nil || client == "" {
		return []plugin.Option{}, err
	}

	options := []plugin.Option{}
	for _, listing := range []string{campaignListings[CampaignStatusSent], campaignListings[CampaignStatusDraft]} {
		campaigns, err := c.do(Request{
			Method: http.MethodGet,
			Path:   "/clients/" + url.PathEscape(client) + "/" + listing,
		})
		if err != nil {
			return nil, err
		}
		options = append(options, toOptions(campaigns, "Name", "CampaignID")...)
	}
	return options, nil
}

func (n *Node) optionsCall(exec *plugin.Execution, method string) (*call, error) {
	if n.client == nil {
		return nil, plugin.NewNodeError(plugin.ErrorKindAPI, NodeName, errNotInitialized)
	}

	auth, err := exec.StringParameter("authentication")
	if err != nil {
		return nil, plugin.NewNodeError(plugin.ErrorKindParameter, NodeName, err)
	}
	if err := checkAuthentication(auth); err != nil {
		return nil, err
	}

	return &call{
		exec:      exec,
		client:    n.client,
		resource:  "options",
		operation: method,
		item:      -1,
	}, nil
}

// optionsCallFor also reads the current value of the parameter the listing
// depends on. An empty value means there is nothing to list yet.
func (n *Node) optionsCallFor(exec *plugin.Execution, method, param string) (*call, string, error) {
	c, err := n.optionsCall(exec, method)
	if err != nil {
		return nil, "", err
	}

	value, err := exec.StringParameter(param)
	if err != nil {
		return nil, "", c.nodeError(plugin.ErrorKindParameter, err)
	}
	return c, value, nil
}

// toOptions maps an array response to options using the given name and value
// fields.
func toOptions(resp any, nameField, valueField string) []plugin.Option {
	options := []plugin.Option{}
	for _, child := range gabs.Wrap(resp).Children() {
		options = append(options, plugin.Option{
			Name:  text(child.Path(nameField).Data()),
			Value: text(child.Path(valueField).Data()),
		})
	}
	return options
}

func text(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
