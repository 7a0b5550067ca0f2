// Package config loads host-side configuration: discovery roots, failure
// policy, unload/version/grace-period overrides, with hot-reload
// notification. Grounded on the teacher's internal/config/loader.go layered
// loading (defaults + user + project directories, secret-file resolution).
package config

import "time"

// FailurePolicy mirrors manager.FailurePolicy as a config-file string enum.
type FailurePolicy string

const (
	FailFast FailurePolicy = "fail-fast"
	Continue FailurePolicy = "continue"
)

// Config is the host-side configuration surface: plugin.directories,
// plugin.failurePolicy, plugin.enableUnloading, plugin.shellVersion,
// plugin.stopGracePeriod.
type Config struct {
	Plugin PluginConfig `yaml:"plugin"`
}

// PluginConfig groups every key under the "plugin." namespace.
type PluginConfig struct {
	Directories     []string      `yaml:"directories"`
	FailurePolicy   FailurePolicy `yaml:"failurePolicy"`
	EnableUnloading bool          `yaml:"enableUnloading"`
	ShellVersion    string        `yaml:"shellVersion"`
	StopGracePeriod time.Duration `yaml:"stopGracePeriod"`
}

// Defaults returns the configuration used when no file is present, mirroring
// the teacher's own defaults.go convention of a single well-known baseline.
func Defaults() Config {
	return Config{
		Plugin: PluginConfig{
			Directories:     []string{"modules"},
			FailurePolicy:   Continue,
			EnableUnloading: true,
			ShellVersion:    "1.0.0",
			StopGracePeriod: 30 * time.Second,
		},
	}
}
