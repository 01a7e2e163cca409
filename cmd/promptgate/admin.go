package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/crewdigital/promptgate/internal/cliclient"
	"github.com/spf13/cobra"
)

var (
	adminSkip  int
	adminLimit int
	adminJSON  bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Cross-account listings (requires admin permissions)",
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List all accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getAuthenticatedClient()
		if err != nil {
			return err
		}
		users, err := client.ListUsers(context.Background(), cliclient.ListOptions{Skip: adminSkip, Limit: adminLimit})
		if err != nil {
			return err
		}
		if adminJSON {
			return printJSON(users)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tACTIVE\tROLE\tPERMISSIONS")
		for _, u := range users {
			role := derefString(u.Role)
			if role == "" {
				role = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%t\t%s\t%s\n", u.ID, u.Email, u.IsActive, role, strings.Join(u.Permissions, ","))
		}
		return w.Flush()
	},
}

var adminPromptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List prompts across all accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getAuthenticatedClient()
		if err != nil {
			return err
		}
		prompts, err := client.ListAllPrompts(context.Background(), cliclient.ListOptions{Skip: adminSkip, Limit: adminLimit})
		if err != nil {
			return err
		}
		if adminJSON {
			return printJSON(prompts)
		}
		return printPromptTable(prompts, true)
	},
}

func init() {
	adminCmd.PersistentFlags().IntVar(&adminSkip, "skip", 0, "Number of records to skip")
	adminCmd.PersistentFlags().IntVar(&adminLimit, "limit", 0, "Maximum number of records (default: 100)")
	adminCmd.PersistentFlags().BoolVar(&adminJSON, "json", false, "Output as JSON")

	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminPromptsCmd)
}
