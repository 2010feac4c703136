package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/nyinsen/internal/db"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, closeDatabase, err := rt.openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase()

			applied, err := db.ApplyMigrations(database)
			if err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date (%d migrations applied)\n", rt.cfg.DBPath, len(applied))
			return nil
		},
	}
}
