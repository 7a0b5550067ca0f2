// Package app assembles the Manager, host container, HTTP mux, and config
// loader into a runnable process. Mirrors the teacher's
// internal/app/bootstrap.go two-phase bootstrap/execution pattern: Bootstrap
// builds everything without starting it, Run drives the fleet through its
// full lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/giantswarm/pluginhost/internal/config"
	"github.com/giantswarm/pluginhost/internal/hostapi"
	"github.com/giantswarm/pluginhost/internal/httpserver"
	"github.com/giantswarm/pluginhost/internal/manager"
	"github.com/giantswarm/pluginhost/internal/manifest"
	"github.com/giantswarm/pluginhost/internal/metadata"
	"github.com/giantswarm/pluginhost/internal/plugin"
	"github.com/giantswarm/pluginhost/internal/validate"
	"github.com/giantswarm/pluginhost/pkg/logging"
)

// Application is the assembled, not-yet-running host.
type Application struct {
	Config  config.Config
	Manager *manager.Manager
	HTTP    *httpserver.Server
	Watcher *config.Watcher
}

// Bootstrap loads configuration and wires the Manager and HTTP surface. It
// does not discover, load, or start any module.
func Bootstrap(configPath string) (*Application, error) {
	loader := config.Loader{Path: configPath}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("app: bootstrap: %w", err)
	}

	hostVersion, err := manifest.ParseVersion(cfg.Plugin.ShellVersion)
	if err != nil {
		return nil, fmt.Errorf("app: bootstrap: parse shell version: %w", err)
	}

	var failurePolicy manager.FailurePolicy
	if cfg.Plugin.FailurePolicy == config.FailFast {
		failurePolicy = manager.FailFast
	} else {
		failurePolicy = manager.Continue
	}

	mgr := manager.New(manager.Config{
		Host:             validate.HostContext{Version: hostVersion},
		FailurePolicy:    failurePolicy,
		EnableUnloading:  cfg.Plugin.EnableUnloading,
		StopGracePeriod:  cfg.Plugin.StopGracePeriod,
		DiscoveryDepth:   1,
		AllowListSymbols: hostapi.HostSymbols(),
		MetadataReader:   metadata.NewReader(),
		SharedServices:   hostapi.SharedServices(),
	})

	srv := httpserver.New(mgr)

	app := &Application{Config: cfg, Manager: mgr, HTTP: srv}

	if configPath != "" {
		if watcher, err := config.NewWatcher(loader); err == nil {
			app.Watcher = watcher
		} else {
			logging.Warn("Bootstrap", "config hot-reload disabled: %v", err)
		}
	}

	return app, nil
}

// Run discovers and loads every module, merges service containers, runs
// Configure/Start, and forwards configuration-change notifications until
// ctx is cancelled, at which point it stops the fleet.
func (a *Application) Run(ctx context.Context) error {
	report, err := a.Manager.LoadAll(ctx, a.Config.Plugin.Directories)
	if err != nil {
		return fmt.Errorf("app: load all: %w", err)
	}
	for _, m := range report.Modules {
		if m.State == plugin.Failed {
			logging.Warn("Manager", "module %s failed at stage %s: %s", m.ID, m.Stage, m.Error)
		}
	}

	if err := a.Manager.InitializeContainers(ctx); err != nil {
		return fmt.Errorf("app: initialize containers: %w", err)
	}

	if err := a.Manager.Configure(ctx, httpAppBuilder{srv: a.HTTP}); err != nil {
		return fmt.Errorf("app: configure: %w", err)
	}

	if err := a.Manager.Start(ctx); err != nil {
		return fmt.Errorf("app: start: %w", err)
	}

	if a.Watcher != nil {
		go a.watchConfigChanges(ctx)
	}

	<-ctx.Done()
	a.Manager.Stop(context.Background())
	return nil
}

func (a *Application) watchConfigChanges(ctx context.Context) {
	for {
		select {
		case cfg, ok := <-a.Watcher.Changes():
			if !ok {
				return
			}
			snapshot := plugin.ConfigSnapshot{
				"plugin.failurePolicy":   string(cfg.Plugin.FailurePolicy),
				"plugin.enableUnloading": fmt.Sprintf("%v", cfg.Plugin.EnableUnloading),
				"plugin.stopGracePeriod": cfg.Plugin.StopGracePeriod.String(),
			}
			a.Manager.OnConfigChange(ctx, snapshot)
		case <-ctx.Done():
			return
		}
	}
}

// httpAppBuilder bridges a module's OnConfigure hook to the host's mux: a
// module calls Handle with a pattern and an http.Handler, and it ends up
// mounted on the real server rather than dropped on the floor.
type httpAppBuilder struct {
	srv *httpserver.Server
}

func (b httpAppBuilder) Handle(pattern string, handler any) {
	h, ok := handler.(http.Handler)
	if !ok {
		logging.Warn("Manager", "module route %q: handler does not implement http.Handler, ignored", pattern)
		return
	}
	b.srv.Mount(pattern, h)
}
