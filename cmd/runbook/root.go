// Package cli implements the runbook command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neboloop/runbook/internal/config"
	"github.com/neboloop/runbook/internal/local"
	"github.com/neboloop/runbook/internal/logging"
	"github.com/neboloop/runbook/internal/svc"
)

// Shared CLI flags
var (
	cfgFile  string
	verbose  bool
	userFlag string
)

// Version is set by main.
var Version = "dev"

// baseConfig holds the embedded configuration (set by SetupRootCmd).
var baseConfig config.Config

// SetupRootCmd configures the root command with all subcommands and flags
func SetupRootCmd(c *config.Config) *cobra.Command {
	baseConfig = *c

	rootCmd := &cobra.Command{
		Use:   "runbook",
		Short: "Runbook - chat with an LLM and keep the answers as runbooks",
		Long: `Runbook keeps every question and answer in a runbook you can revisit,
search and export as markdown.

Run 'runbook' or 'runbook serve' to start the web API.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetVerbose(verbose)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML file overlaid on the built-in configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	serve := serveCmd()
	rootCmd.RunE = serve.RunE
	rootCmd.Flags().AddFlagSet(serve.Flags())

	rootCmd.AddCommand(
		serve,
		migrateCmd(),
		runbooksCmd(),
		askCmd(),
		exportCmd(),
		docsCmd(),
		keyCmd(),
		versionCmd(),
	)
	return rootCmd
}

// localBase returns the embedded configuration with machine-local settings
// applied. Files given with --config are overlaid on top of it.
func localBase() (config.Config, error) {
	c := baseConfig
	dir, err := local.DataDir()
	if err != nil {
		return c, err
	}
	settings, err := local.LoadSettings(dir)
	if err != nil {
		return c, fmt.Errorf("load local settings: %w", err)
	}
	settings.Apply(&c, dir)
	return c, nil
}

// loadConfig returns the effective configuration.
func loadConfig() (config.Config, error) {
	c, err := localBase()
	if err != nil {
		return c, err
	}
	if cfgFile != "" {
		if c, err = config.LoadFile(c, cfgFile); err != nil {
			return c, err
		}
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// openService loads the configuration and wires the services.
func openService() (*svc.ServiceContext, error) {
	c, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return svc.NewServiceContext(c, svc.WithVersion(Version))
}

// username resolves --user, falling back to the configured chat user.
func username(c config.Config) string {
	if userFlag != "" {
		return userFlag
	}
	return c.Chat.Username
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
