package main

import (
	"os"

	_ "github.com/crewdigital/promptgate/docs" // Load swagger docs
	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "promptgate",
	Short: "promptgate - authenticated gateway to a local LLM backend",
	Long: `promptgate runs the prompt gateway server and talks to it as a client.

Prompts are sent to an Ollama-compatible backend on behalf of authenticated
accounts; every request and response is stored and audited.`,
	Example: `  # Run a server with demo accounts
  promptgate migrate
  promptgate seed --demo-users
  promptgate serve

  # Use it
  promptgate login http://localhost:8000 --email user@example.com
  promptgate prompt "Why is the sky blue?"
  promptgate invoice ./invoice.txt`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "client", Title: "Client Commands:"},
		&cobra.Group{ID: "admin", Title: "Admin Commands:"},
		&cobra.Group{ID: "server", Title: "Server Commands:"},
	)

	loginCmd.GroupID = "client"
	registerCmd.GroupID = "client"
	logoutCmd.GroupID = "client"
	whoamiCmd.GroupID = "client"
	promptCmd.GroupID = "client"
	promptsCmd.GroupID = "client"
	invoiceCmd.GroupID = "client"

	adminCmd.GroupID = "admin"

	serveCmd.GroupID = "server"
	migrateCmd.GroupID = "server"
	seedCmd.GroupID = "server"

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(invoiceCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
