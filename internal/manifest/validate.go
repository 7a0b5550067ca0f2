package manifest

import "fmt"

// Validate performs structural validation and returns every violation found;
// a nil/empty return means the manifest is structurally sound. This mirrors
// the teacher's "collect every error rather than fail on first" convention
// used throughout its config validation.
func (m Manifest) Validate() []error {
	var errs []error

	if m.ID == "" {
		errs = append(errs, fmt.Errorf("manifest: id must not be empty"))
	}
	if m.Version.IsZero() {
		errs = append(errs, fmt.Errorf("manifest %q: version must not be empty", m.ID))
	}
	if m.EntryPoint == "" {
		errs = append(errs, fmt.Errorf("manifest %q: entryPoint must not be empty", m.ID))
	}
	if m.MainAssembly == "" {
		errs = append(errs, fmt.Errorf("manifest %q: mainAssembly must not be empty", m.ID))
	}
	if m.MinimumShellVersion.IsZero() {
		errs = append(errs, fmt.Errorf("manifest %q: minimumShellVersion must not be empty", m.ID))
	}
	if m.MaximumShellVersion != nil && m.MaximumShellVersion.LessThan(m.MinimumShellVersion) {
		errs = append(errs, fmt.Errorf("manifest %q: maximumShellVersion below minimumShellVersion", m.ID))
	}

	for _, dep := range m.Dependencies {
		if dep.ID == "" {
			errs = append(errs, fmt.Errorf("manifest %q: dependency with empty id", m.ID))
			continue
		}
		if dep.MaximumVersion != nil && dep.MaximumVersion.LessThan(dep.MinimumVersion) {
			errs = append(errs, fmt.Errorf("manifest %q: dependency %q has maximumVersion below minimumVersion", m.ID, dep.ID))
		}
	}

	return errs
}
