package main

import (
	"context"
	"fmt"
	"os"

	"github.com/crewdigital/promptgate/internal/cliclient"
	"github.com/spf13/cobra"
)

var invoiceModel string

var invoiceCmd = &cobra.Command{
	Use:   "invoice <file|->",
	Short: "Extract structured invoice data from a text file",
	Long: `Sends invoice text to the server's extraction agent and prints the
extracted JSON. Use "-" to read from stdin.

If the model output cannot be parsed the result is {"error", "raw"} and
the command exits non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0], os.Stdin)
		if err != nil {
			return err
		}

		client, err := getAuthenticatedClient()
		if err != nil {
			return err
		}

		result, err := client.ExtractInvoice(context.Background(), cliclient.ExtractInvoiceRequest{
			TextContent: text,
			ModelName:   defaultModel(invoiceModel),
		})
		if err != nil {
			return err
		}

		if err := printJSON(result); err != nil {
			return err
		}
		if msg, ok := result["error"].(string); ok {
			if _, hasRaw := result["raw"]; hasRaw {
				return fmt.Errorf("extraction failed: %s", msg)
			}
		}
		return nil
	},
}

func init() {
	invoiceCmd.Flags().StringVarP(&invoiceModel, "model", "m", "", "Model name (default: server default)")
}
