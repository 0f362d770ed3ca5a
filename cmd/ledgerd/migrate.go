package main

import (
	"log/slog"

	"github.com/SscSPs/shop_ledger/migrations"
	"github.com/SscSPs/shop_ledger/pkg/database"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().IntP("steps", "n", 1, "Number of migrations to roll back")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		if err := database.RunMigrations(cfg.DatabaseURL, migrations.FS, logger); err != nil {
			return fail(logger, "Failed to apply migrations", err)
		}
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		logger.Info("Rolling back migrations", slog.Int("steps", steps))
		if err := database.RollbackMigrations(cfg.DatabaseURL, migrations.FS, steps, logger); err != nil {
			return fail(logger, "Failed to roll back migrations", err)
		}
		return nil
	},
}
