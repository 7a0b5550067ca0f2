// Package initialize bridges host context (version, environment, shared
// services) into a module for its pre-start Validate hook.
//
// Grounded on the teacher's internal/reconciler hand-off of a context value
// into per-resource reconcile functions.
package initialize

import (
	"context"
	"fmt"

	"github.com/giantswarm/pluginhost/internal/manifest"
	"github.com/giantswarm/pluginhost/internal/plugin"
)

// Initializer builds InitializationContext snapshots and drives a module's
// Validate hook.
type Initializer struct {
	HostVersion    manifest.Version
	Environment    string
	SharedServices any
}

// Snapshot returns the InitializationContext a module's Validate hook sees.
func (i Initializer) Snapshot() plugin.InitializationContext {
	return plugin.InitializationContext{
		HostVersion:    i.HostVersion,
		Environment:    i.Environment,
		SharedServices: i.SharedServices,
	}
}

// Validate invokes the module's Validate hook with a fresh snapshot. A
// returned failure means the caller must transition the module to
// Failed(Validated, err) and short-circuit further stages.
func (i Initializer) Validate(ctx context.Context, m plugin.Module) error {
	if err := m.Validate(ctx, i.Snapshot()); err != nil {
		return fmt.Errorf("module %q: validate: %w", m.Name(), err)
	}
	return nil
}
