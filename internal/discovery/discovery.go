// Package discovery walks configured module roots, locates manifests, and
// produces discovered-plugin descriptors. It mirrors the teacher's
// internal/config/loader.go "parse many YAML files under a root, collect
// per-file errors, keep going" pattern, adapted from loading capability
// definitions to discovering module manifests one directory level down.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/pluginhost/internal/manifest"
)

// Discovered is an immutable descriptor produced by discovery.
type Discovered struct {
	Manifest         manifest.Manifest
	RootDirectory    string
	MainAssemblyPath string
}

// Warning reports a non-fatal problem found during a scan: a malformed
// manifest or a duplicate (id, version) pair. Malformed manifests and
// duplicates are skipped rather than aborting the scan.
type Warning struct {
	Path   string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Reason)
}

// DiscoverFromDirectory recurses `depth` levels under root (depth 1 by
// default: immediate subdirectories only), parses every manifest.yaml found,
// and returns deduplicated discovered plugins plus warnings for anything
// skipped.
func DiscoverFromDirectory(root string, depth int) ([]Discovered, []Warning, error) {
	if depth <= 0 {
		depth = 1
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("discovery: read root %s: %w", root, err)
	}

	var discovered []Discovered
	var warnings []Warning
	seen := make(map[string]bool)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		moduleDir := filepath.Join(root, entry.Name())

		if depth > 1 {
			nested, nestedWarnings, err := DiscoverFromDirectory(moduleDir, depth-1)
			if err == nil {
				discovered = append(discovered, nested...)
				warnings = append(warnings, nestedWarnings...)
			}
		}

		manifestPath := filepath.Join(moduleDir, manifest.FileName)
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			if !os.IsNotExist(err) {
				warnings = append(warnings, Warning{Path: manifestPath, Reason: err.Error()})
			}
			continue
		}

		m, err := manifest.Parse(data)
		if err != nil {
			warnings = append(warnings, Warning{Path: manifestPath, Reason: err.Error()})
			continue
		}
		if errs := m.Validate(); len(errs) > 0 {
			warnings = append(warnings, Warning{Path: manifestPath, Reason: fmt.Sprintf("%d validation error(s)", len(errs))})
			continue
		}

		key := m.ID + "@" + m.Version.String()
		if seen[key] {
			warnings = append(warnings, Warning{Path: manifestPath, Reason: fmt.Sprintf("duplicate (id, version) %s", key)})
			continue
		}
		seen[key] = true

		discovered = append(discovered, Discovered{
			Manifest:         m,
			RootDirectory:    moduleDir,
			MainAssemblyPath: manifest.ResolveMainAssembly(m, moduleDir),
		})
	}

	return discovered, warnings, nil
}
