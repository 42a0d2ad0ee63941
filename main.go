package main

import (
	"os"

	"github.com/sflowg/campaignmonitor/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
