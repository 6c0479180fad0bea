package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dslh/mcp-nexus/internal/catalog"
	"github.com/dslh/mcp-nexus/internal/config"
	"github.com/dslh/mcp-nexus/internal/proxy"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Connect to every configured server and list its tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return ListServers(cmd.Context(), cmd.OutOrStdout(), settings, logger)
		},
	}
}

// ListServers connects to every server in the server list and writes a
// status table followed by the tools each connected server exposes
func ListServers(ctx context.Context, out io.Writer, settings config.Settings, logger *zap.SugaredLogger, opts ...proxy.Option) error {
	descriptors, err := config.Load(settings.ServerList)
	if err != nil {
		if errors.Is(err, config.ErrLocationUnset) || errors.Is(err, config.ErrNotFound) {
			fmt.Fprintln(out, "Downstream Servers:")
			fmt.Fprintln(out, "  (no MCP server configuration found)")
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts = append([]proxy.Option{proxy.WithLogger(logger), proxy.WithQuietMode()}, opts...)
	manager := proxy.NewManager(opts...)
	manager.ConnectAll(ctx, descriptors)
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Warnw("Failed to close downstream sessions", "error", err)
		}
	}()

	aggregator := catalog.NewAggregator(manager,
		catalog.WithLogger(logger),
		catalog.WithConcurrency(settings.CatalogConcurrency),
	)
	catalogs := make(map[string]catalog.ServerCatalog)
	for _, c := range aggregator.Catalogs(ctx) {
		catalogs[c.Session.Name] = c
	}

	if err := renderStatusTable(out, manager.Statuses(), catalogs); err != nil {
		return err
	}

	for _, name := range manager.Names() {
		tools := catalogs[name].Tools
		if len(tools) == 0 {
			continue
		}
		fmt.Fprintf(out, "\nTools from '%s':\n", name)
		for _, tool := range tools {
			fmt.Fprintf(out, "  • %s - %s\n", tool.Name, strings.ReplaceAll(tool.Description, "\n", " "))
		}
	}
	return nil
}

func renderStatusTable(out io.Writer, statuses []proxy.ServerStatus, catalogs map[string]catalog.ServerCatalog) error {
	if len(statuses) == 0 {
		fmt.Fprintln(out, "No downstream servers configured.")
		return nil
	}

	headers := []string{"Server", "State", "Version", "Tools", "Error"}
	table := tablewriter.NewWriter(out)
	table.Options(
		tablewriter.WithHeader(headers),
		tablewriter.WithRendition(
			tw.Rendition{
				Borders: tw.Border{
					Left:   tw.State(1),
					Top:    tw.State(1),
					Right:  tw.State(1),
					Bottom: tw.State(1),
				},
			},
		),
		tablewriter.WithAlignment(tw.MakeAlign(len(headers), tw.AlignLeft)),
	)

	for _, status := range statuses {
		version, tools, reason := "-", "-", ""
		if status.State == proxy.StateConnected {
			version = status.Version
			if c := catalogs[status.Name]; c.Err != nil {
				reason = c.Reason()
			} else {
				tools = strconv.Itoa(len(c.Tools))
			}
		}
		if status.Err != nil {
			reason = status.Err.Error()
		}
		if err := table.Append([]string{status.Name, string(status.State), version, tools, reason}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
