package campaignmonitor

// Resource and operation names accepted by the dispatcher.
const (
	ResourceMember        = "member"
	ResourceCampaign      = "campaign"
	ResourceTransactional = "transactional"

	OperationCreate = "create"
	OperationGet    = "get"
	OperationGetAll = "getAll"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationSend   = "send"
)

// Campaign listing filters for campaign.getAll.
const (
	CampaignStatusSent      = "sent"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusDraft     = "draft"
)

// selection is read from the first item and applies to the whole batch.
type selection struct {
	Authentication string `json:"authentication" default:"apiKey"`
	Resource       string `json:"resource" default:"campaign" validate:"required"`
	Operation      string `json:"operation" validate:"required"`
}

// nameValue is one row of a fixed-collection parameter.
type nameValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type mergeFieldsUI struct {
	Values []nameValue `json:"mergeFieldsValues"`
}

type smartEmailFieldsUI struct {
	Values []nameValue `json:"smartEmailFieldsValues"`
}

// customFieldParams selects between the structured list and raw JSON text.
// It is decoded alongside createMemberParams and updateMemberParams.
type customFieldParams struct {
	JSONParameters  bool          `json:"jsonParameters" default:"false"`
	MergeFieldsUI   mergeFieldsUI `json:"mergeFieldsUi"`
	MergeFieldsJSON any           `json:"mergeFieldsJson"`
}

type createMemberParams struct {
	List                                   string `json:"list" validate:"required"`
	Email                                  string `json:"email" validate:"required"`
	Name                                   string `json:"name"`
	ConsentToTrack                         bool   `json:"consentToTrack" default:"true"`
	Resubscribe                            bool   `json:"resubscribe" default:"true"`
	RestartSubscriptionBasedAutoresponders bool   `json:"restartSubscriptionBasedAutoresponders" default:"false"`
}

type updateMemberParams struct {
	List  string `json:"list" validate:"required"`
	Email string `json:"email" validate:"required"`
	Name  string `json:"name"`
}

type memberParams struct {
	List  string `json:"list" validate:"required"`
	Email string `json:"email" validate:"required"`
}

type listMembersParams struct {
	List      string `json:"list" validate:"required"`
	ReturnAll bool   `json:"returnAll" default:"false"`
	Limit     int    `json:"limit" default:"500" validate:"gte=1,lte=1000"`
}

type listCampaignsParams struct {
	Client         string `json:"client" validate:"required"`
	CampaignStatus string `json:"campaignStatus" default:"sent"`
}

type campaignParams struct {
	Campaign string `json:"campaign" validate:"required"`
}

type sendCampaignParams struct {
	Campaign string `json:"campaign" validate:"required"`
	Email    string `json:"email" validate:"required"`
}

type sendSmartEmailParams struct {
	SmartEmail       string             `json:"smartEmail" validate:"required"`
	Email            string             `json:"email" validate:"required"`
	CCEmail          string             `json:"ccemail"`
	BCCEmail         string             `json:"bccemail"`
	SmartEmailFields smartEmailFieldsUI `json:"smartEmailFields"`
}
