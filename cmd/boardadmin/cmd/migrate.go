package cmd

import (
	"database/sql"

	"github.com/boardadmin/boardadmin/internal/db"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrateCmd.AddCommand(
		migrateAction("up", "Apply all pending migrations", db.RunMigrations),
		migrateAction("down", "Roll back the most recent migration", db.MigrateDown),
		migrateAction("status", "Show applied and pending migrations", db.Status),
	)

	return migrateCmd
}

func migrateAction(use, short string, run func(database *sql.DB, driver string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(database) }()

			return run(database.DB, cfg.DBDriver)
		},
	}
}
