package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadReturnsDefaultsWhenFileMissing(t *testing.T) {
	l := Loader{Path: filepath.Join(t.TempDir(), "absent.yaml")}
	cfg, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pluginhost.yaml")
	body := "plugin:\n  directories: [\"/opt/modules\"]\n  failurePolicy: fail-fast\n  stopGracePeriod: 45s\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Loader{Path: path}.Load()
	require.NoError(t, err)
	require.Equal(t, []string{"/opt/modules"}, cfg.Plugin.Directories)
	require.Equal(t, FailFast, cfg.Plugin.FailurePolicy)
	require.Equal(t, 45*time.Second, cfg.Plugin.StopGracePeriod)
}

func TestValidateRejectsUnknownFailurePolicy(t *testing.T) {
	cfg := Defaults()
	cfg.Plugin.FailurePolicy = "sometimes"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyDirectories(t *testing.T) {
	cfg := Defaults()
	cfg.Plugin.Directories = nil
	require.Error(t, cfg.Validate())
}
