package manifest

// Dependency declares a required or optional relationship on another module.
type Dependency struct {
	ID             string   `yaml:"id"`
	MinimumVersion Version  `yaml:"minimumVersion"`
	MaximumVersion *Version `yaml:"maximumVersion,omitempty"`
	StrictMax      bool     `yaml:"strictMax,omitempty"`
	Required       bool     `yaml:"required"`
}

// IsSatisfiedBy reports whether the given concrete version satisfies this
// dependency's bounds. Bounds are inclusive on both ends unless StrictMax is
// set, in which case the maximum bound is exclusive (Open Question (a)).
func (d Dependency) IsSatisfiedBy(v Version) bool {
	if v.LessThan(d.MinimumVersion) {
		return false
	}
	if d.MaximumVersion == nil {
		return true
	}
	if d.StrictMax {
		return v.LessThan(*d.MaximumVersion)
	}
	return !d.MaximumVersion.LessThan(v)
}

// RuntimeDependency declares an external library the module expects to be
// present at runtime.
type RuntimeDependency struct {
	PackageID string `yaml:"packageId"`
	Version   string `yaml:"version"`
	Optional  bool   `yaml:"optional,omitempty"`
}

// Manifest is the declarative record a module ships with.
type Manifest struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Version     Version `yaml:"version"`
	Description string `yaml:"description,omitempty"`
	Author      string `yaml:"author,omitempty"`
	License     string `yaml:"license,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Category    string   `yaml:"category,omitempty"`

	MainAssembly string `yaml:"mainAssembly"`
	EntryPoint   string `yaml:"entryPoint"`

	MinimumShellVersion Version  `yaml:"minimumShellVersion"`
	MaximumShellVersion *Version `yaml:"maximumShellVersion,omitempty"`

	Dependencies        []Dependency        `yaml:"dependencies,omitempty"`
	RuntimeDependencies []RuntimeDependency `yaml:"runtimeDependencies,omitempty"`
	SupportedPlatforms  []string            `yaml:"supportedPlatforms,omitempty"`
	Capabilities        map[string]string   `yaml:"capabilities,omitempty"`
}

// IsCompatibleWith reports whether hostVersion satisfies this manifest's
// declared shell version bounds, inclusive on both ends.
func (m Manifest) IsCompatibleWith(hostVersion Version) bool {
	if hostVersion.LessThan(m.MinimumShellVersion) {
		return false
	}
	if m.MaximumShellVersion != nil && hostVersion.Compare(*m.MaximumShellVersion) > 0 {
		return false
	}
	return true
}

// SupportsPlatform reports whether tag is among the manifest's supported
// platforms. An empty SupportedPlatforms list means "any platform".
func (m Manifest) SupportsPlatform(tag string) bool {
	if len(m.SupportedPlatforms) == 0 {
		return true
	}
	for _, p := range m.SupportedPlatforms {
		if p == tag {
			return true
		}
	}
	return false
}
