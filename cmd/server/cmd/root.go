package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hackhub-dev/server/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const rootLong = `HackHub server is the registration backend for hackathons and tech events.

The server provides:
- Event browsing with filters, search, featured and upcoming feeds
- Capacity-aware registration with deadline enforcement
- User accounts, profiles and notification preferences
- JWT authentication with admin, moderator and member roles`

// newRootCommand builds the full command tree. Each call returns fresh
// commands so tests never share flag state.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "HackHub server - hackathon and tech event registration API",
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadDotEnv(".env")
		},
	}

	root.PersistentFlags().String("config", "", "config file path (optional, uses env vars by default)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().String("log-format", "", "log format (json, console) (default: json)")

	serve := newServeCommand()
	root.RunE = func(cmd *cobra.Command, args []string) error {
		// No subcommand means serve with default flags.
		return serve.RunE(cmd, args)
	}

	root.AddCommand(
		serve,
		newMigrateCommand(),
		newTokenCommand(),
		newVersionCommand(),
		newHealthcheckCommand(),
	)
	return root
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv reads a local env file without overriding variables that are
// already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// flagString reads a string flag if the command knows it. Subcommands built on
// their own (as in tests) have no persistent parent flags.
func flagString(cmd *cobra.Command, name string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(name)
	}
	if f == nil {
		f = cmd.InheritedFlags().Lookup(name)
	}
	if f == nil {
		return ""
	}
	return f.Value.String()
}

// loadConfig reads the config file named by --config (or the environment alone)
// and applies logging flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path := flagString(cmd, "config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, err
	}

	if level := flagString(cmd, "log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if format := flagString(cmd, "log-format"); format != "" {
		cfg.Logging.Format = format
	}
	return cfg, nil
}
