package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader loads and layers configuration from a project file over defaults.
type Loader struct {
	// Path is the project configuration file, typically ./pluginhost.yaml.
	Path string
}

// Load reads the configuration file at l.Path, if present, and merges it
// over Defaults(). A missing file is not an error: the host runs on
// defaults alone, mirroring the teacher's LoadConfig layered-defaults
// behavior.
func (l Loader) Load() (Config, error) {
	cfg := Defaults()

	if l.Path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", l.Path, err)
	}

	var fromFile Config
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", l.Path, err)
	}

	merged := mergeOver(cfg, fromFile)
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// mergeOver overlays any non-zero field in override onto base, except
// EnableUnloading, which is always taken from override: a file that omits it
// turns unloading off.
func mergeOver(base, override Config) Config {
	if len(override.Plugin.Directories) > 0 {
		base.Plugin.Directories = override.Plugin.Directories
	}
	if override.Plugin.FailurePolicy != "" {
		base.Plugin.FailurePolicy = override.Plugin.FailurePolicy
	}
	if override.Plugin.ShellVersion != "" {
		base.Plugin.ShellVersion = override.Plugin.ShellVersion
	}
	if override.Plugin.StopGracePeriod != 0 {
		base.Plugin.StopGracePeriod = override.Plugin.StopGracePeriod
	}
	base.Plugin.EnableUnloading = override.Plugin.EnableUnloading
	return base
}
