package campaignmonitor

import (
	"encoding/json"
)

// CustomField is one subscriber custom field value.
type CustomField struct {
	Key   string `json:"Key"`
	Value any    `json:"Value"`
}

// SubscriberBody is the payload of subscriber create and update calls.
type SubscriberBody struct {
	EmailAddress                           string        `json:"EmailAddress"`
	Name                                   string        `json:"Name"`
	Resubscribe                            bool          `json:"Resubscribe"`
	RestartSubscriptionBasedAutoresponders bool          `json:"RestartSubscriptionBasedAutoresponders"`
	ConsentToTrack                         string        `json:"ConsentToTrack"`
	CustomFields                           any           `json:"CustomFields,omitempty"` // []CustomField, or the JSON-mode value as given
}

// SendCampaignBody schedules a draft campaign for immediate delivery.
type SendCampaignBody struct {
	ConfirmationEmail string `json:"ConfirmationEmail"`
	SendDate          string `json:"SendDate"`
}

// SmartEmailBody is the payload of a transactional smart email send. CC and
// BCC serialise as null when no address is given.
type SmartEmailBody struct {
	To                  []string       `json:"To"`
	CC                  []string       `json:"CC"`
	BCC                 []string       `json:"BCC"`
	Data                map[string]any `json:"Data"`
	AddRecipientsToList bool           `json:"AddRecipientsToList"`
	ConsentToTrack      string         `json:"ConsentToTrack"`
}

func consent(track bool) string {
	if track {
		return "Yes"
	}
	return "No"
}

func newCreateSubscriberBody(p createMemberParams, cf customFieldParams) SubscriberBody {
	return SubscriberBody{
		EmailAddress:                           p.Email,
		Name:                                   p.Name,
		Resubscribe:                            p.Resubscribe,
		RestartSubscriptionBasedAutoresponders: p.RestartSubscriptionBasedAutoresponders,
		ConsentToTrack:                         consent(p.ConsentToTrack),
		CustomFields:                           cf.customFields(),
	}
}

// Updates always consent, resubscribe and skip autoresponders.
func newUpdateSubscriberBody(p updateMemberParams, cf customFieldParams) SubscriberBody {
	return SubscriberBody{
		EmailAddress:                           p.Email,
		Name:                                   p.Name,
		Resubscribe:                            true,
		RestartSubscriptionBasedAutoresponders: false,
		ConsentToTrack:                         consent(true),
		CustomFields:                           cf.customFields(),
	}
}

func newSendCampaignBody(p sendCampaignParams) SendCampaignBody {
	return SendCampaignBody{
		ConfirmationEmail: p.Email,
		SendDate:          "Immediately",
	}
}

func newSmartEmailBody(p sendSmartEmailParams) SmartEmailBody {
	body := SmartEmailBody{
		To:                  []string{p.Email},
		Data:                make(map[string]any, len(p.SmartEmailFields.Values)),
		AddRecipientsToList: false,
		ConsentToTrack:      consent(true),
	}
	if p.CCEmail != "" {
		body.CC = []string{p.CCEmail}
	}
	if p.BCCEmail != "" {
		body.BCC = []string{p.BCCEmail}
	}
	for _, field := range p.SmartEmailFields.Values {
		body.Data[field.Name] = field.Value
	}
	return body
}

// customFields returns the fields of the active mode, or nil when there are
// none. In JSON mode any parsed value other than null, false, 0 or "" is
// sent as-is; unparseable JSON is treated as no custom fields.
func (p customFieldParams) customFields() any {
	if p.JSONParameters {
		return parseCustomFieldsJSON(p.MergeFieldsJSON)
	}

	if len(p.MergeFieldsUI.Values) == 0 {
		return nil
	}
	fields := make([]CustomField, 0, len(p.MergeFieldsUI.Values))
	for _, v := range p.MergeFieldsUI.Values {
		fields = append(fields, CustomField{Key: v.Name, Value: v.Value})
	}
	return fields
}

func parseCustomFieldsJSON(raw any) any {
	value := raw
	if text, ok := raw.(string); ok {
		var parsed any
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			return nil
		}
		value = parsed
	}
	if !truthy(value) {
		return nil
	}
	return value
}

// truthy reports whether a decoded JSON value counts as set.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	default:
		return true
	}
}
