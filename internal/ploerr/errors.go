// Package ploerr defines the typed error kinds the plugin host distinguishes
// when discovering, validating, loading, and running modules.
package ploerr

import "fmt"

// ManifestInvalidError reports a structural parse or validation failure in a
// module manifest.
type ManifestInvalidError struct {
	ModuleDir string
	Errors    []error
}

func (e *ManifestInvalidError) Error() string {
	return fmt.Sprintf("manifest invalid in %q: %d error(s)", e.ModuleDir, len(e.Errors))
}

func (e *ManifestInvalidError) Unwrap() []error { return e.Errors }

// BinaryMissingError reports that a module's main assembly path does not exist.
type BinaryMissingError struct {
	Path string
}

func (e *BinaryMissingError) Error() string {
	return fmt.Sprintf("module binary not found: %s", e.Path)
}

// BinaryIncoherentError reports that the declared entry point is not present,
// or does not match the manifest's own claims, in the compiled binary.
type BinaryIncoherentError struct {
	Path       string
	EntryPoint string
	Reason     string
}

func (e *BinaryIncoherentError) Error() string {
	return fmt.Sprintf("module binary %s incoherent with entry point %q: %s", e.Path, e.EntryPoint, e.Reason)
}

// VersionIncompatibleError reports that the host version falls outside a
// module's declared bounds, or a declared dependency is unsatisfied.
type VersionIncompatibleError struct {
	ModuleID string
	Reason   string
}

func (e *VersionIncompatibleError) Error() string {
	return fmt.Sprintf("module %q version incompatible: %s", e.ModuleID, e.Reason)
}

// GraphInvalidError reports a duplicate id, unsatisfied required dependency,
// or a cycle in the module dependency graph.
type GraphInvalidError struct {
	Reason string
	Cycle  []string
}

func (e *GraphInvalidError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("dependency graph invalid: cycle %v", e.Cycle)
	}
	return fmt.Sprintf("dependency graph invalid: %s", e.Reason)
}

// ServiceGraphInvalidError reports a cycle, missing dependency, lifetime
// mismatch, or bad implementation in a service-registration graph.
type ServiceGraphInvalidError struct {
	Reason string
	Path   []string
}

func (e *ServiceGraphInvalidError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("service graph invalid: %s (path: %v)", e.Reason, e.Path)
	}
	return fmt.Sprintf("service graph invalid: %s", e.Reason)
}

// ModuleThrewError wraps an uncaught error raised by module code at a named
// lifecycle stage.
type ModuleThrewError struct {
	ModuleID string
	Stage    string
	Cause    error
}

func (e *ModuleThrewError) Error() string {
	return fmt.Sprintf("module %q threw at stage %q: %v", e.ModuleID, e.Stage, e.Cause)
}

func (e *ModuleThrewError) Unwrap() error { return e.Cause }

// StoppingTimeoutError reports that a module failed to honour cancellation
// within its stop grace period.
type StoppingTimeoutError struct {
	ModuleID string
	Grace    string
}

func (e *StoppingTimeoutError) Error() string {
	return fmt.Sprintf("module %q did not stop within grace period %s", e.ModuleID, e.Grace)
}

// UnloadUnsupportedError reports that the host platform cannot reclaim an
// isolation context; the module degrades to "stopped, resident" rather than
// failing.
type UnloadUnsupportedError struct {
	ModuleID string
}

func (e *UnloadUnsupportedError) Error() string {
	return fmt.Sprintf("module %q: platform cannot unload, remains resident", e.ModuleID)
}

// DependencyFailedError marks a module skipped because one of its
// dependencies failed to start.
type DependencyFailedError struct {
	ModuleID     string
	DependencyID string
}

func (e *DependencyFailedError) Error() string {
	return fmt.Sprintf("module %q skipped: dependency %q failed", e.ModuleID, e.DependencyID)
}
