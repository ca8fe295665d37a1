package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neboloop/runbook/internal/db"
	"github.com/neboloop/runbook/internal/db/migrations"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		migrateStep("up", "Apply all pending migrations", migrations.Run),
		migrateStep("down", "Roll back the latest migration", migrations.Down),
		&cobra.Command{
			Use:   "status",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(conn *sql.DB) error {
					v, err := migrations.Version(conn)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
					return nil
				})
			},
		},
	)
	return cmd
}

func migrateStep(use, short string, step func(*sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(conn *sql.DB) error {
				if err := step(conn); err != nil {
					return fmt.Errorf("migrate %s: %w", use, err)
				}
				v, err := migrations.Version(conn)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
				return nil
			})
		},
	}
}

// withDB opens the configured database without migrating it.
func withDB(fn func(*sql.DB) error) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	conn, err := db.Open(c.Database.SQLitePath)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}
