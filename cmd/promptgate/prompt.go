package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/crewdigital/promptgate/internal/cliclient"
	"github.com/spf13/cobra"
)

var (
	promptModel string
	promptJSON  bool

	promptsSkip  int
	promptsLimit int
	promptsJSON  bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt <text>...",
	Short: "Send a prompt and print the response",
	Long: `Sends a prompt to the server, which runs it through the generation
backend and stores the result.

Examples:
  promptgate prompt "Summarize the plot of Hamlet"
  promptgate prompt --model mistral "Translate 'hello' to French"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrompt,
}

var promptsCmd = &cobra.Command{
	Use:   "prompts [id]",
	Short: "List your prompts, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPrompts,
}

func init() {
	promptCmd.Flags().StringVarP(&promptModel, "model", "m", "", "Model name (default: server default)")
	promptCmd.Flags().BoolVar(&promptJSON, "json", false, "Print the full stored record as JSON")

	promptsCmd.Flags().IntVar(&promptsSkip, "skip", 0, "Number of prompts to skip")
	promptsCmd.Flags().IntVar(&promptsLimit, "limit", 0, "Maximum number of prompts (default: 20)")
	promptsCmd.Flags().BoolVar(&promptsJSON, "json", false, "Output as JSON")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	client, err := getAuthenticatedClient()
	if err != nil {
		return err
	}

	prompt, err := client.CreatePrompt(context.Background(), cliclient.CreatePromptRequest{
		PromptText: strings.Join(args, " "),
		ModelName:  defaultModel(promptModel),
	})
	if err != nil {
		return err
	}

	if promptJSON {
		return printJSON(prompt)
	}
	fmt.Println(derefString(prompt.ResponseText))
	return nil
}

func runPrompts(cmd *cobra.Command, args []string) error {
	client, err := getAuthenticatedClient()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if len(args) == 1 {
		var id uint
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid prompt id %q", args[0])
		}
		prompt, err := client.GetPrompt(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(prompt)
	}

	prompts, err := client.ListPrompts(ctx, cliclient.ListOptions{Skip: promptsSkip, Limit: promptsLimit})
	if err != nil {
		return err
	}
	if promptsJSON {
		return printJSON(prompts)
	}
	return printPromptTable(prompts, false)
}

func printPromptTable(prompts []cliclient.Prompt, withOwner bool) error {
	if len(prompts) == 0 {
		fmt.Fprintln(os.Stderr, "No prompts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if withOwner {
		fmt.Fprintln(w, "ID\tUSER\tMODEL\tMS\tCREATED\tPROMPT")
	} else {
		fmt.Fprintln(w, "ID\tMODEL\tMS\tCREATED\tPROMPT")
	}
	for _, p := range prompts {
		var ms int64
		if p.ProcessingTimeMs != nil {
			ms = *p.ProcessingTimeMs
		}
		created := p.CreatedAt.Local().Format("2006-01-02 15:04")
		if withOwner {
			owner := "-"
			if p.UserID != nil {
				owner = fmt.Sprintf("%d", *p.UserID)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", p.ID, owner, p.ModelName, ms, created, truncate(p.PromptText, 50))
		} else {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", p.ID, p.ModelName, ms, created, truncate(p.PromptText, 50))
		}
	}
	return w.Flush()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
