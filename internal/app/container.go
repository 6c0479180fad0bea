// Package app wires the gateway services using go.uber.org/dig.
package app

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/dslh/mcp-nexus/internal/catalog"
	"github.com/dslh/mcp-nexus/internal/config"
	"github.com/dslh/mcp-nexus/internal/metrics"
	"github.com/dslh/mcp-nexus/internal/proxy"
	"github.com/dslh/mcp-nexus/internal/router"
	"github.com/dslh/mcp-nexus/internal/tools"
)

// Container holds the resolved gateway singletons.
// Callers use the typed getters; they never need to import dig directly.
type Container struct {
	settings   config.Settings
	logger     *zap.SugaredLogger
	recorder   *metrics.Recorder
	manager    *proxy.Manager
	aggregator *catalog.Aggregator
	router     *router.Router
	server     *mcp.Server
}

func (c *Container) Settings() config.Settings       { return c.settings }
func (c *Container) Logger() *zap.SugaredLogger      { return c.logger }
func (c *Container) Metrics() *metrics.Recorder      { return c.recorder }
func (c *Container) Manager() *proxy.Manager         { return c.manager }
func (c *Container) Aggregator() *catalog.Aggregator { return c.aggregator }
func (c *Container) Router() *router.Router          { return c.router }
func (c *Container) Server() *mcp.Server             { return c.server }

// managerOptions carries extra manager options, such as a test dialer, into
// the graph
type managerOptions []proxy.Option

// New builds and wires every gateway service. Downstream servers are not
// contacted until Connect is called.
func New(settings config.Settings, logger *zap.SugaredLogger, opts ...proxy.Option) (*Container, error) {
	d := dig.New()

	providers := []any{
		func() config.Settings { return settings },
		func() *zap.SugaredLogger { return logger },
		func() managerOptions { return opts },
		metrics.New,
		newManager,
		newAggregator,
		newRouter,
		tools.NewServer,
	}
	for _, provide := range providers {
		if err := d.Provide(provide); err != nil {
			return nil, err
		}
	}
	if err := d.Provide(func(a *catalog.Aggregator) tools.Catalog { return a }); err != nil {
		return nil, err
	}
	if err := d.Provide(func(r *router.Router) tools.Caller { return r }); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(
		recorder *metrics.Recorder,
		manager *proxy.Manager,
		aggregator *catalog.Aggregator,
		rt *router.Router,
		server *mcp.Server,
	) {
		result = &Container{
			settings:   settings,
			logger:     logger,
			recorder:   recorder,
			manager:    manager,
			aggregator: aggregator,
			router:     rt,
			server:     server,
		}
	})
	return result, err
}

// Connect loads the server list and connects every downstream server. A
// server list that cannot be loaded is logged and leaves the registry empty.
func (c *Container) Connect(ctx context.Context) {
	descriptors, err := config.Load(c.settings.ServerList)
	if err != nil {
		c.logger.Errorw("Failed to load server list, continuing without downstream servers", "error", err)
	} else {
		c.logger.Debugw("Loaded server list", "servers", config.Names(descriptors))
	}

	c.manager.ConnectAll(ctx, descriptors)
	c.recorder.SetServers(len(c.manager.Statuses()), c.manager.Len())
}

// Close shuts down every downstream session
func (c *Container) Close() error {
	return c.manager.Close()
}

func newManager(logger *zap.SugaredLogger, extra managerOptions) *proxy.Manager {
	opts := append([]proxy.Option{proxy.WithLogger(logger.Named("proxy"))}, extra...)
	return proxy.NewManager(opts...)
}

func newAggregator(settings config.Settings, manager *proxy.Manager, logger *zap.SugaredLogger, recorder *metrics.Recorder) *catalog.Aggregator {
	return catalog.NewAggregator(manager,
		catalog.WithLogger(logger.Named("catalog")),
		catalog.WithMetrics(recorder),
		catalog.WithConcurrency(settings.CatalogConcurrency),
	)
}

func newRouter(settings config.Settings, manager *proxy.Manager, logger *zap.SugaredLogger, recorder *metrics.Recorder) *router.Router {
	return router.New(manager,
		router.WithLogger(logger.Named("router")),
		router.WithMetrics(recorder),
		router.WithArgValidation(settings.ValidateArgs),
	)
}
