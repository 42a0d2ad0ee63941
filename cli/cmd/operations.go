package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/sflowg/campaignmonitor/plugins/campaignmonitor"
	"github.com/spf13/cobra"
)

const nodeName = campaignmonitor.NodeName

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List the resource.operation pairs the node dispatches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NODE\tOPERATION")
		for _, op := range campaignmonitor.OperationNames() {
			fmt.Fprintf(w, "%s\t%s\n", nodeName, op)
		}
		return w.Flush()
	},
}
