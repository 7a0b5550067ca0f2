// Package validate performs structural, semantic, and compatibility checks
// against the host version, platform, and dependency graph, before any
// module code runs. Grounded on the teacher's internal/config/validation.go
// ValidationErrors accumulator ("collect every problem, then decide") and
// internal/serviceclass's ValidateServiceArgs pattern.
package validate

import (
	"fmt"
	"os"

	"github.com/giantswarm/pluginhost/internal/depgraph"
	"github.com/giantswarm/pluginhost/internal/discovery"
	"github.com/giantswarm/pluginhost/internal/manifest"
	"github.com/giantswarm/pluginhost/internal/metadata"
)

// Result is the outcome of a validation pass.
type Result struct {
	IsValid  bool
	Errors   []error
	Warnings []string
}

func newResult(errs []error, warnings []string) Result {
	return Result{IsValid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

// ValidateManifest performs manifest-level structural validation.
func ValidateManifest(m manifest.Manifest) Result {
	errs := m.Validate()
	return newResult(errs, nil)
}

// HostContext is the running host's identity, used by plugin-level checks.
type HostContext struct {
	Version  manifest.Version
	Platform string
}

// ValidatePlugin confirms a discovered plugin is compatible with the running
// host version, its declared platforms are supported, and its main assembly
// exists and matches recorded metadata.
func ValidatePlugin(d discovery.Discovered, host HostContext, reader metadata.Reader) Result {
	var errs []error
	var warnings []string

	if !d.Manifest.IsCompatibleWith(host.Version) {
		errs = append(errs, fmt.Errorf("module %q: host version %s outside bounds [%s, %s]",
			d.Manifest.ID, host.Version, d.Manifest.MinimumShellVersion, maxVersionString(d.Manifest.MaximumShellVersion)))
	}

	if host.Platform != "" && !d.Manifest.SupportsPlatform(host.Platform) {
		errs = append(errs, fmt.Errorf("module %q: platform %q not supported", d.Manifest.ID, host.Platform))
	}

	if _, err := os.Stat(d.MainAssemblyPath); err != nil {
		errs = append(errs, fmt.Errorf("module %q: main assembly missing: %w", d.Manifest.ID, err))
		return newResult(errs, warnings)
	}

	if reader != nil {
		meta, err := reader.Read(d.MainAssemblyPath, d.Manifest.EntryPoint)
		if err != nil {
			errs = append(errs, fmt.Errorf("module %q: binary incoherent: %w", d.Manifest.ID, err))
		} else if meta.DeclaredVersion != "" && meta.DeclaredVersion != d.Manifest.Version.String() {
			errs = append(errs, fmt.Errorf("module %q: binary declares version %s, manifest claims %s",
				d.Manifest.ID, meta.DeclaredVersion, d.Manifest.Version))
		}
	}

	return newResult(errs, warnings)
}

func maxVersionString(v *manifest.Version) string {
	if v == nil {
		return "unbounded"
	}
	return v.String()
}

// ValidateGraph checks a set of discovered plugins for duplicate ids,
// unsatisfied required dependencies, and cycles. Optional dependencies that
// are unresolved become warnings, not errors.
func ValidateGraph(set []discovery.Discovered) Result {
	var errs []error
	var warnings []string

	byID := make(map[string]discovery.Discovered, len(set))
	g := depgraph.New()

	for _, d := range set {
		if _, exists := byID[d.Manifest.ID]; exists {
			errs = append(errs, fmt.Errorf("duplicate module id %q", d.Manifest.ID))
			continue
		}
		byID[d.Manifest.ID] = d

		var deps []depgraph.NodeID
		for _, dep := range d.Manifest.Dependencies {
			deps = append(deps, depgraph.NodeID(dep.ID))
		}
		g.AddNode(depgraph.Node{ID: depgraph.NodeID(d.Manifest.ID), DependsOn: deps})
	}

	for _, d := range set {
		for _, dep := range d.Manifest.Dependencies {
			candidate, exists := byID[dep.ID]
			satisfied := exists && dep.IsSatisfiedBy(candidate.Manifest.Version)
			if satisfied {
				continue
			}
			if dep.Required {
				errs = append(errs, fmt.Errorf("module %q: required dependency %q unsatisfied", d.Manifest.ID, dep.ID))
			} else {
				warnings = append(warnings, fmt.Sprintf("module %q: optional dependency %q unsatisfied", d.Manifest.ID, dep.ID))
			}
		}
	}

	if _, err := g.TopoSort(); err != nil {
		errs = append(errs, err)
	}

	return newResult(errs, warnings)
}
