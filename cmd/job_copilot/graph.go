package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-copilot/internal/workflow"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the workflow graph structure as JSON",
	RunE: func(_ *cobra.Command, _ []string) error {
		out, err := json.MarshalIndent(workflow.Describe(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal graph structure: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
