package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/crewdigital/promptgate/internal/cliclient"
	"github.com/crewdigital/promptgate/internal/localstore"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginEmail string
	loginToken string

	registerRole string
)

var loginCmd = &cobra.Command{
	Use:   "login [server-url]",
	Short: "Log in to a promptgate server",
	Long: `Authenticates with a promptgate server and stores the access token in
the OS keyring. The server URL is remembered in the CLI config.

Examples:
  promptgate login http://localhost:8000
  promptgate login https://pg.company.com --email me@company.com
  promptgate login --token <access-token>`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := localstore.LoadConfig()
		if err != nil {
			return err
		}
		if err := localstore.DeleteToken(cfg.Server()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Logged out of %s\n", cfg.Server())
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getAuthenticatedClient()
		if err != nil {
			return err
		}
		user, err := client.Me(context.Background())
		if err != nil {
			return err
		}

		role := derefString(user.Role)
		if role == "" {
			role = "(none)"
		}
		fmt.Printf("%s\nrole: %s\npermissions: %s\n", user.Email, role, strings.Join(user.Permissions, ", "))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account on the configured server",
	Long: `Creates an account and prints it. Log in afterwards with 'promptgate login'.

Examples:
  promptgate register me@company.com
  promptgate register ops@company.com --role admin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := localstore.LoadConfig()
		if err != nil {
			return err
		}

		fmt.Print("Password: ")
		passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		user, err := cliclient.NewWithoutAuth(cfg.Server()).Register(context.Background(), cliclient.RegisterRequest{
			Email:    args[0],
			Password: string(passBytes),
			Role:     registerRole,
		})
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Fprintf(os.Stderr, "Registered %s with role %s on %s\n", user.Email, derefString(user.Role), cfg.Server())
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerRole, "role", "", "Role name (default: server default)")
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email (prompted if omitted)")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Access token (skip interactive login)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := localstore.LoadConfig()
	if err != nil {
		return err
	}

	serverURL := cfg.Server()
	if len(args) == 1 {
		if serverURL, err = normalizeServerURL(args[0]); err != nil {
			return err
		}
	}

	token := loginToken
	email := loginEmail
	if token == "" {
		if email == "" {
			fmt.Print("Email: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading email: %w", err)
			}
			email = strings.TrimSpace(line)
		}

		fmt.Print("Password: ")
		passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		client := cliclient.NewWithoutAuth(serverURL)
		resp, err := client.Login(context.Background(), email, string(passBytes))
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		token = resp.AccessToken
	}

	if err := localstore.SaveToken(serverURL, token); err != nil {
		return err
	}

	cfg.ServerURL = serverURL
	if email != "" {
		cfg.Email = email
	}
	if err := localstore.SaveConfig(cfg); err != nil {
		return err
	}

	who := email
	if who == "" {
		who = "(token)"
	}
	fmt.Fprintf(os.Stderr, "Logged in to %s as %s\n", serverURL, who)
	return nil
}
