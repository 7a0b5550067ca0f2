package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBootstrapWithoutConfigFileUsesDefaults(t *testing.T) {
	application, err := Bootstrap("")
	require.NoError(t, err)
	require.NotNil(t, application.Manager)
	require.NotNil(t, application.HTTP)
	require.Nil(t, application.Watcher)
	require.Equal(t, []string{"modules"}, application.Config.Plugin.Directories)
}

func TestBootstrapRejectsUnparsableShellVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pluginhost.yaml")
	body := "plugin:\n  shellVersion: \"not-a-version\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := Bootstrap(path)
	require.Error(t, err)
}
