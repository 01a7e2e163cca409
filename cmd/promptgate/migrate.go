package main

import (
	"fmt"
	"os"

	"github.com/crewdigital/promptgate/internal/db"
	"github.com/crewdigital/promptgate/internal/server"
	"github.com/spf13/cobra"
)

var (
	migrateConfig string

	seedConfig    string
	seedDemoUsers bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Applies the schema and seeds the default roles and permissions.

Safe to run repeatedly; roles and permissions are matched by name.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appCfg, err := server.LoadConfig(server.Config{ConfigFile: migrateConfig})
		if err != nil {
			return err
		}
		database, err := server.OpenDatabase(appCfg)
		if err != nil {
			return err
		}
		if sqlDB, err := database.DB(); err == nil {
			defer sqlDB.Close()
		}

		fmt.Fprintln(os.Stderr, "Migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed roles, permissions and optional accounts",
	Long: `Seeds the default roles and permissions, then creates the configured
bootstrap admin. With --demo-users it also creates:

  admin@example.com / adminpass  (admin)
  user@example.com  / userpass   (user)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appCfg, err := server.LoadConfig(server.Config{ConfigFile: seedConfig})
		if err != nil {
			return err
		}
		database, err := server.OpenDatabase(appCfg)
		if err != nil {
			return err
		}
		if sqlDB, err := database.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := db.CreateDefaultAdmin(database, appCfg.Bootstrap); err != nil {
			return fmt.Errorf("creating bootstrap admin: %w", err)
		}

		if seedDemoUsers {
			if err := db.SeedUsers(database, db.DemoAccounts); err != nil {
				return fmt.Errorf("seeding demo accounts: %w", err)
			}
			fmt.Fprintln(os.Stderr, "Demo accounts ready")
		}

		fmt.Fprintln(os.Stderr, "Seeding complete")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateConfig, "config", "c", "", "Config file")
	seedCmd.Flags().StringVarP(&seedConfig, "config", "c", "", "Config file")
	seedCmd.Flags().BoolVar(&seedDemoUsers, "demo-users", false, "Create demo admin and user accounts")
}
