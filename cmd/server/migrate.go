package main

import (
	"log/slog"

	"quantumeyes/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		slog.Info("migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Apply migrations and load demo data",
	Long: `Apply migrations and load demo data.

Seeding is idempotent: the demo organization and the admin account are
only created when missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := database.NewStore(db).Seed(cmd.Context(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return err
		}
		slog.Info("demo data seeded", "admin", cfg.AdminUsername)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
