package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/giantswarm/pluginhost/internal/container"
	"github.com/giantswarm/pluginhost/internal/depgraph"
	"github.com/giantswarm/pluginhost/internal/isolate"
	"github.com/giantswarm/pluginhost/internal/ploerr"
	"github.com/giantswarm/pluginhost/internal/plugin"
	"github.com/giantswarm/pluginhost/pkg/logging"
	"k8s.io/client-go/util/retry"
)

func (m *Manager) contextIDOf(e *entry) string {
	if e.loaded.Isolation == nil {
		return ""
	}
	return logging.TruncateContextID(e.loaded.Isolation.ID)
}

func (m *Manager) transition(e *entry, id string, to plugin.State) {
	if !plugin.CanTransition(e.loaded.State, to) && to != plugin.Failed {
		return
	}
	from := e.loaded.State
	e.loaded.State = to
	m.publish(StateChangeEvent{ModuleID: id, State: to})
	logging.Audit(logging.AuditEvent{
		Action:    "lifecycle_transition",
		Outcome:   "success",
		ContextID: m.contextIDOf(e),
		Target:    id,
		Details:   fmt.Sprintf("%s -> %s", from, to),
	})
}

func (m *Manager) fail(e *entry, id string, stage plugin.State, err error) {
	e.loaded.Failure = &plugin.FailureRecord{Stage: stage, Err: err}
	e.loaded.State = plugin.Failed
	m.publish(StateChangeEvent{ModuleID: id, State: plugin.Failed})
	logging.Audit(logging.AuditEvent{
		Action:    "lifecycle_transition",
		Outcome:   "failure",
		ContextID: m.contextIDOf(e),
		Target:    id,
		Details:   fmt.Sprintf("stage=%s", stage),
		Error:     err.Error(),
	})
}

// InitializeContainers asks every loaded module to register its services
// into a module-owned collection, merges those into the host collection,
// runs the Service Validator over the result, and fails the whole operation
// if it is invalid. No module transitions to Configured unless this
// succeeds, and when the merged graph is invalid every module still in
// play is marked Failed(Configured) rather than left dangling in
// Initialized.
func (m *Manager) InitializeContainers(ctx context.Context, hostDescriptors ...container.Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	merged := container.New()
	merged.AddHostDescriptors(hostDescriptors...)

	for _, id := range m.order {
		e := m.modules[id]
		if e.loaded.State != plugin.Initialized {
			continue
		}
		reg := &moduleRegistrar{moduleID: id}
		if err := e.loaded.Instance.OnInitialize(ctx, reg); err != nil {
			m.fail(e, id, plugin.Initialized, &ploerr.ModuleThrewError{ModuleID: id, Stage: "onInitialize", Cause: err})
			continue
		}
		merged.AddModuleDescriptors(id, reg.descriptors...)
	}

	result := container.NewValidator().Validate(merged.All())
	if !result.IsValid {
		graphErr := &ploerr.ServiceGraphInvalidError{Reason: joinErrors(result.Errors), Path: extractServiceCycle(result.Errors)}
		for _, id := range m.order {
			e := m.modules[id]
			if e.loaded.State == plugin.Failed {
				continue
			}
			m.fail(e, id, plugin.Configured, graphErr)
		}
		return graphErr
	}

	m.merged = merged
	return nil
}

// extractServiceCycle pulls the node path out of the first
// *depgraph.CycleError found among errs, if any.
func extractServiceCycle(errs []error) []string {
	for _, e := range errs {
		var cycleErr *depgraph.CycleError
		if errors.As(e, &cycleErr) {
			path := make([]string, len(cycleErr.Path))
			for i, id := range cycleErr.Path {
				path[i] = string(id)
			}
			return path
		}
	}
	return nil
}

// Configure invokes each module's OnConfigure hook in dependency order so
// modules may append middleware/routes.
func (m *Manager) Configure(ctx context.Context, builder plugin.AppBuilder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		e := m.modules[id]
		if e.loaded.State != plugin.Initialized {
			continue
		}
		if err := e.loaded.Instance.OnConfigure(ctx, builder); err != nil {
			m.fail(e, id, plugin.Configured, &ploerr.ModuleThrewError{ModuleID: id, Stage: "onConfigure", Cause: err})
			continue
		}
		m.transition(e, id, plugin.Configured)
	}
	return nil
}

// Start calls OnStart on each module in dependency order. Under fail-fast,
// a failure stops all already-started modules in reverse order and
// surfaces the error; under continue-on-failure, the failing module is
// marked Failed and its dependents are skipped as Failed(dependency).
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var skippedMu sync.Mutex
	skipped := make(map[string]bool)
	isSkipped := func(id string) bool {
		skippedMu.Lock()
		defer skippedMu.Unlock()
		return skipped[id]
	}
	markSkipped := func(id string) {
		skippedMu.Lock()
		skipped[id] = true
		skippedMu.Unlock()
	}

	var started []string

	ranks := m.fanOutRanks(m.order)
	for _, rank := range ranks {
		failedInRank := false

		err := runRanked(ctx, [][]string{rank}, func(rctx context.Context, id string) error {
			e := m.modules[id]
			if e.loaded.State != plugin.Configured {
				return nil
			}
			for _, dep := range e.depends {
				if isSkipped(dep) {
					m.fail(e, id, plugin.Started, &ploerr.DependencyFailedError{ModuleID: id, DependencyID: dep})
					markSkipped(id)
					return nil
				}
			}
			if err := e.loaded.Instance.OnStart(rctx); err != nil {
				m.fail(e, id, plugin.Started, &ploerr.ModuleThrewError{ModuleID: id, Stage: "onStart", Cause: err})
				markSkipped(id)
				if m.cfg.FailurePolicy == FailFast {
					return err
				}
				return nil
			}
			m.transition(e, id, plugin.Started)
			return nil
		})

		if err != nil {
			failedInRank = true
		}

		for _, id := range rank {
			if m.modules[id].loaded.State == plugin.Started {
				started = append(started, id)
			}
		}

		if failedInRank && m.cfg.FailurePolicy == FailFast {
			m.stopLocked(ctx, started)
			return fmt.Errorf("manager: start sweep aborted (fail-fast): %w", err)
		}
	}

	return nil
}

// Stop stops every started module in the exact reverse of its start order.
// Per-module errors are logged but do not abort the sweep.
func (m *Manager) Stop(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(ctx, m.order)
}

// StopModule stops a single started module without touching the rest of the
// fleet. Used by operator tooling that wants to unload one module in
// isolation rather than the whole fleet's reverse-order Stop.
func (m *Manager) StopModule(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.modules[id]
	if !ok {
		return fmt.Errorf("manager: unknown module %q", id)
	}
	if e.loaded.State != plugin.Started {
		return nil
	}
	m.stopOne(ctx, id, e)
	return nil
}

func (m *Manager) stopLocked(ctx context.Context, started []string) {
	reverseOrder := make([]string, len(started))
	for i, id := range started {
		reverseOrder[len(started)-1-i] = id
	}

	for _, id := range reverseOrder {
		e, ok := m.modules[id]
		if !ok || e.loaded.State != plugin.Started {
			continue
		}
		m.stopOne(ctx, id, e)
	}
}

// stopOne enforces the stop grace period: if the module does not honour
// cancellation in time it is marked Failed(stoppingTimeout) and its
// isolation context is force-disposed. The completion poll uses
// k8s.io/client-go/util/retry's backoff helper rather than a hand-rolled
// timer loop, reusing a dependency already present in the teacher's
// reconciler package for exactly this kind of bounded-wait/force-teardown
// race.
func (m *Manager) stopOne(ctx context.Context, id string, e *entry) {
	stopCtx, cancel := context.WithTimeout(ctx, m.cfg.StopGracePeriod)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- e.loaded.Instance.OnStop(stopCtx)
	}()

	backoff := retry.DefaultBackoff
	backoff.Duration = m.cfg.StopGracePeriod / 10
	if backoff.Duration <= 0 {
		backoff.Duration = m.cfg.StopGracePeriod
	}
	backoff.Steps = 10
	backoff.Factor = 1.0
	backoff.Jitter = 0

	var stopErr error
	var finished bool
	stillRunning := fmt.Errorf("still running")
	_ = retry.OnError(backoff, func(err error) bool { return err == stillRunning }, func() error {
		select {
		case stopErr = <-done:
			finished = true
			return nil
		case <-stopCtx.Done():
			return nil
		default:
			return stillRunning
		}
	})

	if !finished {
		m.fail(e, id, plugin.Started, &ploerr.StoppingTimeoutError{ModuleID: id, Grace: m.cfg.StopGracePeriod.String()})
		if e.loaded.Isolation != nil {
			e.loaded.Isolation.Dispose()
		}
		return
	}

	if stopErr != nil {
		logging.Warn("Manager", "module %q OnStop returned an error: %v", id, stopErr)
	}
	m.transition(e, id, plugin.Stopped)
}

// Unload invokes a stopped module's unload hook, disposes its isolation
// context, removes its service contributions, and transitions it to
// Unloaded. The module must already be Stopped.
func (m *Manager) Unload(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.modules[id]
	if !ok {
		return fmt.Errorf("manager: unknown module %q", id)
	}
	if e.loaded.State != plugin.Stopped {
		return fmt.Errorf("manager: module %q must be Stopped before unload, is %s", id, e.loaded.State)
	}

	if err := e.loaded.Instance.OnUnload(ctx); err != nil {
		m.fail(e, id, plugin.Stopped, &ploerr.ModuleThrewError{ModuleID: id, Stage: "onUnload", Cause: err})
		return err
	}

	if e.loaded.Isolation != nil {
		wasCollectible := e.loaded.Isolation.Collectible
		e.loaded.Isolation.Dispose()
		if wasCollectible && !isolate.CanUnload() {
			residentErr := &ploerr.UnloadUnsupportedError{ModuleID: id}
			logging.Warn("Manager", "%v", residentErr)
		}
	}

	m.merged.RemoveModule(id)
	m.transition(e, id, plugin.Unloaded)
	e.loaded.Instance = nil

	return nil
}

// OnConfigChange forwards a configuration snapshot to every loaded
// module's config-change hook. A module's error is isolated and does not
// affect other modules.
func (m *Manager) OnConfigChange(ctx context.Context, snapshot plugin.ConfigSnapshot) {
	m.mu.Lock()
	ids := append([]string{}, m.order...)
	entries := make(map[string]*entry, len(m.modules))
	for k, v := range m.modules {
		entries[k] = v
	}
	m.mu.Unlock()

	for _, id := range ids {
		e, ok := entries[id]
		if !ok || e.loaded.Instance == nil {
			continue
		}
		func() {
			defer func() { _ = recover() }()
			_ = e.loaded.Instance.OnConfigurationChanged(ctx, snapshot)
		}()
	}
}

// Merged returns the current merged service container (read-only once
// InitializeContainers has succeeded).
func (m *Manager) Merged() *container.Container {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.merged
}

// Order returns the last computed topological start order.
func (m *Manager) Order() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.order...)
}

// State returns a module's current lifecycle state.
func (m *Manager) State(id string) (plugin.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.modules[id]
	if !ok {
		return 0, false
	}
	return e.loaded.State, true
}
