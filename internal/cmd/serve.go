package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dslh/mcp-nexus/internal/app"
	"github.com/dslh/mcp-nexus/internal/httpserver"
	"github.com/dslh/mcp-nexus/internal/tools"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the gateway on stdio, or over HTTP with --http-addr",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := app.New(settings, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.Connect(ctx)
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warnw("Failed to close downstream sessions", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if settings.MetricsAddr != "" {
		handler := httpserver.NewRouter(httpserver.Options{
			Metrics:  c.Metrics(),
			Statuses: c.Manager(),
		})
		g.Go(func() error {
			return httpserver.Serve(gctx, settings.MetricsAddr, handler, logger.Named("metrics"))
		})
	}

	if settings.HTTPAddr != "" {
		handler := httpserver.NewRouter(httpserver.Options{
			MCPServer:      c.Server(),
			Metrics:        c.Metrics(),
			Statuses:       c.Manager(),
			AllowedOrigins: settings.AllowedOrigins,
		})
		g.Go(func() error {
			return httpserver.Serve(gctx, settings.HTTPAddr, handler, logger.Named("http"))
		})
	} else {
		g.Go(func() error {
			// The upstream client closing stdin ends the process.
			defer cancel()
			logger.Infof("%s v%s running on stdio", tools.ServerName, tools.ServerVersion)
			err := c.Server().Run(gctx, &mcp.StdioTransport{})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}
