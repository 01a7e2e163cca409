package main

import (
	"fmt"
	"os"

	"github.com/crewdigital/promptgate/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort   int
	serveConfig string
)

// @title promptgate API
// @version 1.0
// @description Authenticated prompt gateway with role based access control
// @host localhost:8000
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a promptgate server instance",
	Long: `Start the promptgate API server.

Examples:
  promptgate serve                  # Use config.yaml and environment
  promptgate serve --port 8080      # Override port
  promptgate serve -c prod.yaml     # Explicit config file

Environment variables:
  PROMPTGATE_SERVER_PORT           Server port (default: 8000)
  PROMPTGATE_DATABASE_DRIVER       Database driver: sqlite, postgres
  PROMPTGATE_DATABASE_DSN          Database connection string
  PROMPTGATE_AUTH_JWT_SECRET       Token signing secret
  PROMPTGATE_LLM_BASE_URL          Ollama base URL
  PROMPTGATE_EVENTS_TYPE           Prompt events: none, valkey
  PROMPTGATE_BOOTSTRAP_ADMIN_EMAIL Bootstrap admin email`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Config file (default: ./config.yaml or /etc/promptgate/config.yaml)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := server.Config{
		ConfigFile: serveConfig,
		Port:       servePort,
		Version:    Version,
	}

	if err := server.RunWithSignalHandling(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
