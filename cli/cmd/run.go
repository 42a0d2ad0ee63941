package cmd

import (
	"fmt"

	"github.com/sflowg/campaignmonitor/runtime"
	"github.com/spf13/cobra"
)

var (
	workflowFile string
	outputFile   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a workflow file once",
	Long: `Run loads a workflow file, executes its node over the listed items and
prints the output records as JSON.

Example:
  sflowg-cm run -f workflows/add-subscribers.yaml
  sflowg-cm run -f workflows/list-members.yaml -o members.json
`,
	Args: cobra.NoArgs,
	RunE: runWorkflow,
}

func init() {
	runCmd.Flags().StringVarP(&workflowFile, "file", "f", "", "workflow file to execute")
	runCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write records to a file instead of stdout")
	runCmd.MarkFlagRequired("file")
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	workflow, err := runtime.NewYAMLLoader().Load(workflowFile)
	if err != nil {
		return fmt.Errorf("%s: %w", workflowFile, err)
	}

	h, err := newHost(cmd.Context(), logger, hostConfig)
	if err != nil {
		return err
	}
	defer h.Close(cmd.Context())

	result, err := h.executor.Run(cmd.Context(), runtime.RequestFromWorkflow(workflow))
	if err != nil {
		return err
	}

	logger.Debug("Workflow finished",
		"workflow", workflow.ID,
		"execution_id", result.ExecutionID,
		"records", len(result.Records),
		"duration", result.Duration)

	return writeJSON(cmd.OutOrStdout(), outputFile, result.Records)
}
