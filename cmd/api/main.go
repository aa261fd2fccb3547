package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agent-crm",
	Short: "Client relationship manager for sales agents",
	Long: `agent-crm serves the CRM web app and JSON API.

Running without a subcommand is the same as "serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createAgentCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
