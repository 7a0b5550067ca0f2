package validate

import (
	"testing"

	"github.com/giantswarm/pluginhost/internal/discovery"
	"github.com/giantswarm/pluginhost/internal/manifest"
	"github.com/stretchr/testify/require"
)

func mustVersion(t *testing.T, s string) manifest.Version {
	t.Helper()
	v, err := manifest.ParseVersion(s)
	require.NoError(t, err)
	return v
}

func discoveredWithDeps(t *testing.T, id string, deps ...manifest.Dependency) discovery.Discovered {
	return discovery.Discovered{
		Manifest: manifest.Manifest{
			ID:                  id,
			Version:             mustVersion(t, "1.0.0"),
			EntryPoint:          id + ".Mod",
			MainAssembly:        id + ".so",
			MinimumShellVersion: mustVersion(t, "1.0.0"),
			Dependencies:        deps,
		},
	}
}

func TestValidateManifestCatchesMissingFields(t *testing.T) {
	result := ValidateManifest(manifest.Manifest{})
	require.False(t, result.IsValid)
	require.NotEmpty(t, result.Errors)
}

func TestValidateGraphDetectsCycle(t *testing.T) {
	a := discoveredWithDeps(t, "A", manifest.Dependency{ID: "B", MinimumVersion: mustVersion(t, "1.0.0"), Required: true})
	b := discoveredWithDeps(t, "B", manifest.Dependency{ID: "A", MinimumVersion: mustVersion(t, "1.0.0"), Required: true})

	result := ValidateGraph([]discovery.Discovered{a, b})
	require.False(t, result.IsValid)
	require.NotEmpty(t, result.Errors)
}

func TestValidateGraphRequiredDependencyUnsatisfiedIsError(t *testing.T) {
	a := discoveredWithDeps(t, "A", manifest.Dependency{ID: "missing", MinimumVersion: mustVersion(t, "1.0.0"), Required: true})

	result := ValidateGraph([]discovery.Discovered{a})
	require.False(t, result.IsValid)
}

func TestValidateGraphOptionalDependencyUnsatisfiedIsWarning(t *testing.T) {
	a := discoveredWithDeps(t, "A", manifest.Dependency{ID: "missing", MinimumVersion: mustVersion(t, "1.0.0"), Required: false})

	result := ValidateGraph([]discovery.Discovered{a})
	require.True(t, result.IsValid)
	require.NotEmpty(t, result.Warnings)
}

func TestValidateGraphDetectsDuplicateID(t *testing.T) {
	a := discoveredWithDeps(t, "A")
	dup := discoveredWithDeps(t, "A")

	result := ValidateGraph([]discovery.Discovered{a, dup})
	require.False(t, result.IsValid)
}
