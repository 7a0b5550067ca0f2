// Package loader implements the single-module pipeline: validate manifest,
// validate plugin, isolate, instantiate entry point, run the module's own
// validate hook, and hand back a LoadedModule. No module is registered with
// any service container by the loader itself — that is the Manager's job.
//
// Grounded on the teacher's internal/orchestrator/orchestrator.go
// createMCPServerService pipeline (validate config -> construct service ->
// set state-change callback -> register), generalized into the spec's
// six-step module pipeline.
package loader

import (
	"context"
	"fmt"

	"github.com/giantswarm/pluginhost/internal/discovery"
	"github.com/giantswarm/pluginhost/internal/initialize"
	"github.com/giantswarm/pluginhost/internal/isolate"
	"github.com/giantswarm/pluginhost/internal/metadata"
	"github.com/giantswarm/pluginhost/internal/plugin"
	"github.com/giantswarm/pluginhost/internal/ploerr"
	"github.com/giantswarm/pluginhost/internal/validate"
)

// EntryPointConstructor is the shape of the symbol a module binary exports
// under its manifest's entryPoint name: a no-argument constructor function
// returning a plugin.Module.
type EntryPointConstructor func() plugin.Module

// LoadedModule aggregates everything the Manager needs to drive a module's
// remaining lifecycle.
type LoadedModule struct {
	Discovered discovery.Discovered
	Isolation  *isolate.Context
	Instance   plugin.Module
	State      plugin.State
	Failure    *plugin.FailureRecord
}

// Loader runs the single-module load pipeline.
type Loader struct {
	Host               validate.HostContext
	MetadataReader     metadata.Reader
	Initializer        initialize.Initializer
	AllowListedSymbols map[string]any
	Collectible        bool
}

// Load runs the single-module pipeline: validate manifest, validate plugin,
// isolate and load the main binary, instantiate the entry point, then run
// the module's own validate hook. Failure at any step produces a
// Failed(stage, cause) LoadedModule and ensures the isolation context, if
// created, is disposed. Panics raised by module code are recovered and
// converted to failures; they never propagate out of the loader.
func (l Loader) Load(ctx context.Context, d discovery.Discovered) (lm *LoadedModule, err error) {
	lm = &LoadedModule{Discovered: d, State: plugin.Discovered}

	defer func() {
		if r := recover(); r != nil {
			if lm.Isolation != nil {
				lm.Isolation.Dispose()
			}
			failure := &plugin.FailureRecord{Stage: lm.State, Err: fmt.Errorf("module %q panicked: %v", d.Manifest.ID, r)}
			lm.Failure = failure
			lm.State = plugin.Failed
			err = failure.Err
		}
	}()

	// Step 1: validate manifest.
	if result := validate.ValidateManifest(d.Manifest); !result.IsValid {
		return l.fail(lm, plugin.Discovered, &ploerr.ManifestInvalidError{ModuleDir: d.RootDirectory, Errors: result.Errors})
	}

	// Step 2: validate plugin (host compatibility, platform, binary coherence).
	if result := validate.ValidatePlugin(d, l.Host, l.MetadataReader); !result.IsValid {
		return l.fail(lm, plugin.Validated, &ploerr.VersionIncompatibleError{ModuleID: d.Manifest.ID, Reason: joinErrors(result.Errors)})
	}
	lm.State = plugin.Validated

	// Step 3: create isolation context; load main binary; resolve entry-point type.
	isoCtx := isolate.New(d.RootDirectory, l.Collectible, l.AllowListedSymbols)
	lm.Isolation = isoCtx

	binary, err := isoCtx.Load(d.MainAssemblyPath)
	if err != nil {
		return l.fail(lm, plugin.Validated, &ploerr.BinaryMissingError{Path: d.MainAssemblyPath})
	}

	sym, err := binary.Lookup(d.Manifest.EntryPoint)
	if err != nil {
		return l.fail(lm, plugin.Validated, &ploerr.BinaryIncoherentError{Path: d.MainAssemblyPath, EntryPoint: d.Manifest.EntryPoint, Reason: err.Error()})
	}

	ctor, ok := sym.(func() plugin.Module)
	if !ok {
		if ctorPtr, ok2 := sym.(*func() plugin.Module); ok2 {
			ctor = *ctorPtr
		} else {
			return l.fail(lm, plugin.Validated, &ploerr.BinaryIncoherentError{Path: d.MainAssemblyPath, EntryPoint: d.Manifest.EntryPoint, Reason: "entry point is not a func() plugin.Module"})
		}
	}

	// Step 4: instantiate entry-point (no-arg constructor).
	instance := ctor()
	if instance == nil {
		return l.fail(lm, plugin.Validated, &ploerr.BinaryIncoherentError{Path: d.MainAssemblyPath, EntryPoint: d.Manifest.EntryPoint, Reason: "constructor returned nil"})
	}
	lm.Instance = instance
	lm.State = plugin.Loaded

	// Step 5: call the module's own validate hook.
	if err := l.Initializer.Validate(ctx, instance); err != nil {
		return l.fail(lm, plugin.Validated, &ploerr.ModuleThrewError{ModuleID: d.Manifest.ID, Stage: "validate", Cause: err})
	}
	lm.State = plugin.Initialized

	return lm, nil
}

func (l Loader) fail(lm *LoadedModule, stage plugin.State, cause error) (*LoadedModule, error) {
	if lm.Isolation != nil {
		lm.Isolation.Dispose()
	}
	lm.State = plugin.Failed
	lm.Failure = &plugin.FailureRecord{Stage: stage, Err: cause}
	return lm, cause
}

func joinErrors(errs []error) string {
	s := ""
	for i, e := range errs {
		if i > 0 {
			s += "; "
		}
		s += e.Error()
	}
	return s
}
