package cmd

import (
	"fmt"

	"github.com/sflowg/campaignmonitor/runtime"
	"github.com/spf13/cobra"
)

var optionsFile string

var optionsCmd = &cobra.Command{
	Use:   "options <method>",
	Short: "Query an option list of the node",
	Long: `Options runs one option provider (getClients, getLists, getSmartEmails,
getSmartEmailCustomFields, getCampaigns) with the parameters and credentials
of a workflow file and prints the entries as JSON.

Example:
  sflowg-cm options getClients
  sflowg-cm options getLists -f workflows/add-subscribers.yaml
`,
	Args: cobra.ExactArgs(1),
	RunE: runOptions,
}

func init() {
	optionsCmd.Flags().StringVarP(&optionsFile, "file", "f", "", "workflow file supplying parameters and credentials")
}

func runOptions(cmd *cobra.Command, args []string) error {
	req := runtime.Request{Node: nodeName}
	if optionsFile != "" {
		workflow, err := runtime.NewYAMLLoader().Load(optionsFile)
		if err != nil {
			return fmt.Errorf("%s: %w", optionsFile, err)
		}
		req = runtime.RequestFromWorkflow(workflow)
	}

	h, err := newHost(cmd.Context(), logger, hostConfig)
	if err != nil {
		return err
	}
	defer h.Close(cmd.Context())

	options, err := h.executor.LoadOptions(cmd.Context(), req, args[0])
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), "", options)
}
