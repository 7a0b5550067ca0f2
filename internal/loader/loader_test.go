package loader

import (
	"context"
	"testing"

	"github.com/giantswarm/pluginhost/internal/discovery"
	"github.com/giantswarm/pluginhost/internal/manifest"
	"github.com/giantswarm/pluginhost/internal/plugin"
	"github.com/giantswarm/pluginhost/internal/validate"
	"github.com/stretchr/testify/require"
)

func mustVersion(t *testing.T, s string) manifest.Version {
	t.Helper()
	v, err := manifest.ParseVersion(s)
	require.NoError(t, err)
	return v
}

func TestLoadFailsOnInvalidManifest(t *testing.T) {
	l := Loader{Host: validate.HostContext{Version: mustVersion(t, "1.0.0")}}
	d := discovery.Discovered{Manifest: manifest.Manifest{}}

	lm, err := l.Load(context.Background(), d)
	require.Error(t, err)
	require.Equal(t, plugin.Failed, lm.State)
	require.Equal(t, plugin.Discovered, lm.Failure.Stage)
}

func TestLoadFailsOnVersionIncompatibility(t *testing.T) {
	l := Loader{Host: validate.HostContext{Version: mustVersion(t, "1.5.0")}}
	d := discovery.Discovered{
		Manifest: manifest.Manifest{
			ID:                  "A",
			Version:             mustVersion(t, "1.0.0"),
			EntryPoint:          "A.Mod",
			MainAssembly:        "a.so",
			MinimumShellVersion: mustVersion(t, "2.0.0"),
		},
		RootDirectory:    t.TempDir(),
		MainAssemblyPath: "/nonexistent/a.so",
	}

	lm, err := l.Load(context.Background(), d)
	require.Error(t, err)
	require.Equal(t, plugin.Failed, lm.State)
	require.Equal(t, plugin.Validated, lm.Failure.Stage)
}
