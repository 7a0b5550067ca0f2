package manifest

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the agreed manifest document name within a module directory.
const FileName = "manifest.yaml"

// Parse decodes a manifest document from its serialized YAML form.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// Serialize renders the manifest back to its YAML document form. Together
// with Parse this supports the round-trip property Parse(Serialize(m)) == m
// for any valid manifest.
func Serialize(m Manifest) ([]byte, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("serialize manifest: %w", err)
	}
	return out, nil
}

// ResolveMainAssembly resolves the manifest's MainAssembly field against the
// module's root directory.
func ResolveMainAssembly(m Manifest, rootDirectory string) string {
	return filepath.Join(rootDirectory, m.MainAssembly)
}
