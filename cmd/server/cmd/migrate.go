package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/hackhub-dev/server/internal/storage/postgres"
	"github.com/spf13/cobra"
)

type migrateOptions struct {
	databaseURL string
	path        string
}

func (o migrateOptions) resolveURL() (string, error) {
	if o.databaseURL != "" {
		return o.databaseURL, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", errors.New("database url is required (--database-url or DATABASE_URL)")
}

func newMigrateCommand() *cobra.Command {
	opts := &migrateOptions{}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or roll back schema migrations.

Migrations are compiled into the binary. Pass --path to run them from a
directory instead.`,
	}
	migrate.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection string (default: $DATABASE_URL)")
	migrate.PersistentFlags().StringVar(&opts.path, "path", "", "migrations directory (default: embedded)")

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := opts.resolveURL()
			if err != nil {
				return err
			}
			if err := postgres.MigrateUp(url, opts.path); err != nil {
				return err
			}
			return printVersion(cmd, url, opts.path)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := opts.resolveURL()
			if err != nil {
				return err
			}
			if err := postgres.MigrateDown(url, opts.path, steps); err != nil {
				return err
			}
			return printVersion(cmd, url, opts.path)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	migrate.AddCommand(down)

	migrate.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := opts.resolveURL()
			if err != nil {
				return err
			}
			return printVersion(cmd, url, opts.path)
		},
	})

	return migrate
}

func printVersion(cmd *cobra.Command, url, path string) error {
	version, dirty, err := postgres.MigrationVersion(url, path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if dirty {
		fmt.Fprintf(out, "schema version %d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(out, "schema version %d\n", version)
	return nil
}
