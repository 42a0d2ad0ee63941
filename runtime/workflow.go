package runtime

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Workflow describes one node run: which node, with which parameters, over
// which items.
//
//	id: add-subscribers
//	node: campaignmonitor
//	continueOnFail: true
//	parameters:
//	  resource: member
//	  operation: create
//	  list: ${CM_LIST_ID}
//	  email: ${ json.email }
//	credentials:
//	  campaignMonitorApi:
//	    apiKey: ${CM_API_KEY}
//	items:
//	  - email: jane@example.com
type Workflow struct {
	ID             string         `yaml:"id" json:"id"`
	Node           string         `yaml:"node" json:"node"`
	ContinueOnFail bool           `yaml:"continueOnFail" json:"continueOnFail"`
	Parameters     map[string]any `yaml:"parameters" json:"parameters"`
	Credentials    CredentialSet  `yaml:"credentials" json:"-"`
	Items          []Item         `yaml:"items" json:"items"`
}

// Validate checks that the workflow names a node.
func (w Workflow) Validate() error {
	if w.Node == "" {
		return fmt.Errorf("workflow %q: node is required", w.ID)
	}
	return nil
}

// YAMLLoader loads workflow definitions from YAML files.
type YAMLLoader struct{}

var _ WorkflowLoader = &YAMLLoader{}

func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

func (l *YAMLLoader) Extensions() []string {
	return []string{"*.yaml", "*.yml"}
}

func (l *YAMLLoader) Load(filePath string) (Workflow, error) {
	yamlFile, err := os.ReadFile(filePath)
	if err != nil {
		return Workflow{}, fmt.Errorf("error reading YAML file: %w", err)
	}

	return ParseWorkflow(yamlFile)
}

// ParseWorkflow decodes and validates a YAML workflow document. Environment
// references in parameters are resolved here, once.
func ParseWorkflow(data []byte) (Workflow, error) {
	var workflow Workflow
	if err := yaml.Unmarshal(data, &workflow); err != nil {
		return Workflow{}, fmt.Errorf("error unmarshalling YAML: %w", err)
	}

	if err := workflow.Validate(); err != nil {
		return Workflow{}, err
	}

	params, err := ResolveEnvMap(workflow.Parameters)
	if err != nil {
		return Workflow{}, fmt.Errorf("workflow %q parameters: %w", workflow.ID, err)
	}
	workflow.Parameters = params

	return workflow, nil
}
