// Package cmd implements the mcp-nexus CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dslh/mcp-nexus/internal/config"
	"github.com/dslh/mcp-nexus/internal/logging"
	"github.com/dslh/mcp-nexus/internal/tools"
)

// NewRootCmd builds the command tree. Running the root command without a
// subcommand serves the gateway.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mcp-nexus",
		Short:         "Aggregate many MCP servers behind one",
		Long:          "mcp-nexus connects to every MCP server in a server list and exposes their tools through four gateway tools.",
		Version:       tools.ServerVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newServeCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup resolves settings from flags and the environment and builds the
// logger they describe
func setup(cmd *cobra.Command) (config.Settings, *zap.SugaredLogger, error) {
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return config.Settings{}, nil, err
	}
	settings := config.SettingsFrom(v)

	logger, err := logging.New(settings.LogLevel, settings.LogFormat)
	if err != nil {
		return config.Settings{}, nil, err
	}
	return settings, logger, nil
}
