package campaignmonitor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/sflowg/campaignmonitor/runtime/plugin"
)

type operationKey struct {
	Resource  string
	Operation string
}

func (k operationKey) String() string {
	return k.Resource + "." + k.Operation
}

// handler serves one item of a resource.operation. The returned value is the
// decoded response: an array is flattened into the output, anything else is
// one record.
type handler func(c *call, params map[string]any) (any, error)

var operations = map[operationKey]handler{
	{ResourceMember, OperationCreate}: createMember,
	{ResourceMember, OperationGet}:    getMember,
	{ResourceMember, OperationGetAll}: listMembers,
	{ResourceMember, OperationUpdate}: updateMember,
	{ResourceMember, OperationDelete}: deleteMember,

	{ResourceCampaign, OperationGetAll}: listCampaigns,
	{ResourceCampaign, OperationGet}:    getCampaign,
	{ResourceCampaign, OperationSend}:   sendCampaign,
	{ResourceCampaign, OperationDelete}: deleteCampaign,

	{ResourceTransactional, OperationSend}: sendSmartEmail,
}

// OperationNames lists every supported resource.operation pair, sorted.
func OperationNames() []string {
	names := make([]string, 0, len(operations))
	for key := range operations {
		names = append(names, key.String())
	}
	sort.Strings(names)
	return names
}

func lookupOperation(resource, operation string) (handler, error) {
	h, ok := operations[operationKey{resource, operation}]
	if !ok {
		return nil, plugin.NewNodeError(plugin.ErrorKindParameter, NodeName,
			fmt.Errorf("the operation %q is not known for resource %q", operation, resource)).
			WithOperation(resource, operation)
	}
	return h, nil
}

// call binds one item's requests to the execution that issued them.
type call struct {
	exec      *plugin.Execution
	client    *Client
	resource  string
	operation string
	item      int
}

func (c *call) nodeError(kind plugin.ErrorKind, err error) *plugin.NodeError {
	return plugin.NewNodeError(kind, NodeName, err).
		WithOperation(c.resource, c.operation).
		WithItem(c.item)
}

// decode fills a typed parameter struct; failures are parameter errors.
func (c *call) decode(params map[string]any, target any) error {
	if err := plugin.DecodeParameters(params, target); err != nil {
		return c.nodeError(plugin.ErrorKindParameter, err)
	}
	return nil
}

// do signs a request with a freshly read API key and sends it.
func (c *call) do(req Request) (any, error) {
	key, err := apiKey(c.exec)
	if err != nil {
		return nil, err
	}

	c.exec.Logger.DebugContext(c.exec, "Campaign Monitor request",
		"method", req.Method,
		"path", req.Path,
		"resource", c.resource,
		"operation", c.operation,
		"item", c.item)

	resp, err := c.client.Do(c.exec, key, req)
	if err != nil {
		return nil, c.nodeError(plugin.ErrorKindAPI, err).
			WithMetadata("method", req.Method).
			WithMetadata("path", req.Path)
	}
	return resp, nil
}

func (c *call) fetchAll(req Request, field string) ([]any, error) {
	return fetchAll(c.exec, func(_ context.Context, r Request) (any, error) {
		return c.do(r)
	}, req, field)
}

// success is the record of calls whose response carries nothing of interest.
func success() map[string]any {
	return map[string]any{"success": true}
}

func createMember(c *call, params map[string]any) (any, error) {
	var p createMemberParams
	var cf customFieldParams
	if err := c.decode(params, &p); err != nil {
		return nil, err
	}
	if err := c.decode(params, &cf); err != nil {
		return nil, err
	}

	return c.do(Request{
		Method: http.MethodPost,
		Path:   "/subscribers/" + url.PathEscape(p.List) + ".json",
		Body:   newCreateSubscriberBody(p, cf),
	})
}

func getMember(c *call, params map[string]any) (any, error) {
	var p memberParams
	if err := c.decode(params, &p); err != nil {
		return nil, err
	}

	return c.do(Request{
		Method: http.MethodGet,
		Path:   "/subscribers/" + url.PathEscape(p.List) + ".json",
		Query: url.Values{
			"email":                     {p.Email},
			"includetrackingpreference": {"true"},
		},
	})
}

func listMembers(c *call, params map[string]any) (any, error) {
	var p listMembersParams
	if err := c.decode(params, &p); err != nil {
		return nil, err
	}

	members, err := c.fetchAll(Request{
		Method: http.MethodGet,
		Path:   "/lists/" + url.PathEscape(p.List) + "/active.json",
	}, "Results")
	if err != nil {
		return nil, err
	}
	if !p.ReturnAll && len(members) > p.Limit {
		members = members[:p.Limit]
	}
	if members == nil {
		members = []any{}
	}
	return members, nil
}

func updateMember(c *call, params map[string]any) (any, error) {
	var p updateMemberParams
	var cf customFieldParams
	if err := c.decode(params, &p); err != nil {
		return nil, err
	}
	if err := c.decode(params, &cf); err != nil {
		return nil, err
	}

	return c.do(Request{
		Method: http.MethodPut,
		Path:   "/subscribers/" + url.PathEscape(p.List) + ".json",
		Query:  url.Values{"email": {p.Email}},
		Body:   newUpdateSubscriberBody(p, cf),
	})
}

func deleteMember(c *call, params map[string]any) (any, error) {
	var p memberParams
	if err := c.decode(params, &p); err != nil {
		return nil, err
	}

	if _, err := c.do(Request{
		Method: http.MethodDelete,
		Path:   "/subscribers/" + url.PathEscape(p.List) + ".json",
		Query:  url.Values{"email": {p.Email}},
	}); err != nil {
		return nil, err
	}
	return success(), nil
}

var campaignListings = map[string]string{
	CampaignStatusSent:      "campaigns.json",
	CampaignStatusScheduled: "scheduled.json",
	CampaignStatusDraft:     "drafts.json",
}

func listCampaigns(c *call, params map[string]any) (any, error) {
	var p listCampaignsParams
	if err := c.decode(params, &p); err != nil {
		return nil, err
	}

	listing, ok := campaignListings[p.CampaignStatus]
	if !ok {
		return nil, c.nodeError(plugin.ErrorKindParameter,
			fmt.Errorf("unknown campaign status %q", p.CampaignStatus))
	}

	return c.do(Request{
		Method: http.MethodGet,
		Path:   "/clients/" + url.PathEscape(p.Client) + "/" + listing,
	})
}

func getCampaign(c *call, params map[string]any) (any, error) {
	var p campaignParams
	if err := c.decode(params, &p); err != nil {
		return nil, err
	}

	return c.do(Request{
		Method: http.MethodGet,
		Path:   "/campaigns/" + url.PathEscape(p.Campaign) + "/summary.json",
	})
}

func sendCampaign(c *call, params map[string]any) (any, error) {
	var p sendCampaignParams
	if err := c.decode(params, &p); err != nil {
		return nil, err
	}

	if _, err := c.do(Request{
		Method: http.MethodPost,
		Path:   "/campaigns/" + url.PathEscape(p.Campaign) + "/send.json",
		Body:   newSendCampaignBody(p),
	}); err != nil {
		return nil, err
	}
	return success(), nil
}

func deleteCampaign(c *call, params map[string]any) (any, error) {
	var p campaignParams
	if err := c.decode(params, &p); err != nil {
		return nil, err
	}

	return c.do(Request{
		Method: http.MethodDelete,
		Path:   "/campaigns/" + url.PathEscape(p.Campaign) + ".json",
	})
}

func sendSmartEmail(c *call, params map[string]any) (any, error) {
	var p sendSmartEmailParams
	if err := c.decode(params, &p); err != nil {
		return nil, err
	}

	return c.do(Request{
		Method: http.MethodPost,
		Path:   "/transactional/smartEmail/" + url.PathEscape(p.SmartEmail) + "/send",
		Body:   newSmartEmailBody(p),
	})
}
