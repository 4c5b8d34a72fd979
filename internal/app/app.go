package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/nodesync/internal/config"
	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/edges"
	"github.com/vk/nodesync/internal/engine"
	"github.com/vk/nodesync/internal/hcl"
	"github.com/vk/nodesync/internal/metrics"
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/resolver"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/vk/nodesync/internal/undo"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	registry   *registry.Registry
	catalog    *typesys.Catalog
	resolver   *resolver.Resolver
	loader     config.Loader
	metrics    *metrics.Registry
	journal    *undo.Journal
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, registry, type
// catalog and metrics. Logs are written to outW.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.Settings.Log, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All converter modules registered.", "count", len(modules), "converters", reg.Len())

	if err := reg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid converter registry: %w", err)
	}

	catalog := typesys.NewCatalog()
	res, err := resolver.New(catalog, reg, resolver.WithCacheSize(cfg.Settings.Resolver.CacheSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	m := metrics.NewRegistry()
	m.RegisterResolverCache(res)

	return &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		config:   cfg,
		registry: reg,
		catalog:  catalog,
		resolver: res,
		loader:   hcl.NewLoader(catalog),
		metrics:  m,
		journal:  &undo.Journal{},
	}, nil
}

// Context returns the App's base context, carrying its logger.
func (a *App) Context() context.Context {
	return a.ctx
}

// Settings returns the validated settings the App runs with.
func (a *App) Settings() *config.Config {
	return a.config.Settings
}

// Registry returns the application's converter registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Resolver returns the compatibility resolver bound to the App's catalog.
func (a *App) Resolver() *resolver.Resolver {
	return a.resolver
}

// Metrics returns the App's metrics registry.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Journal returns the undo notifications recorded so far.
func (a *App) Journal() *undo.Journal {
	return a.journal
}

// editorOptions maps the settings onto editor options.
func (a *App) editorOptions() []engine.Option {
	s := a.config.Settings
	chooser := edges.RejectAmbiguous
	if s.Resolver.Ambiguity == "first" {
		chooser = edges.ChooseFirst
	}
	return []engine.Option{
		engine.WithBudget(s.View.Budget.Duration()),
		engine.WithAutoConvert(s.AutoConvert()),
		engine.WithChooser(chooser),
		engine.WithRecorder(a.metrics),
		engine.WithUndo(a.journal),
	}
}
