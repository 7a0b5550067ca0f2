//go:build linux || darwin

package metadata

import (
	"fmt"
	"plugin"
)

// PluginReader reads metadata using the standard library's plugin package:
// plugin.Open followed by plugin.Plugin.Lookup for the declared entry-point
// symbol, confirming its presence without invoking it or checking its type.
type PluginReader struct{}

// NewReader returns the platform's Metadata Reader.
func NewReader() Reader { return PluginReader{} }

func (PluginReader) Read(assemblyPath, entryPoint string) (AssemblyMetadata, error) {
	p, err := plugin.Open(assemblyPath)
	if err != nil {
		return AssemblyMetadata{}, fmt.Errorf("open %s: %w", assemblyPath, err)
	}

	meta := AssemblyMetadata{Path: assemblyPath}

	if entryPoint != "" {
		if _, err := p.Lookup(entryPoint); err != nil {
			return meta, fmt.Errorf("lookup entry point %q in %s: %w", entryPoint, assemblyPath, err)
		}
		meta.EntryPointSymbols = append(meta.EntryPointSymbols, entryPoint)
	}

	if sym, err := p.Lookup("Version"); err == nil {
		if v, ok := sym.(*string); ok {
			meta.DeclaredVersion = *v
		}
	}

	return meta, nil
}
