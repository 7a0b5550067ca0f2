//go:build !linux && !darwin

package metadata

import "fmt"

// UnsupportedReader reports unconditional failure: the standard library's
// plugin package only supports Linux and Darwin, so platforms outside that
// set cannot back the Metadata Reader. validate.ValidatePlugin reports the
// read error as a binary-incoherent error, so every module fails plugin
// validation on these platforms; the host itself keeps running.
type UnsupportedReader struct{}

// NewReader returns the platform's Metadata Reader.
func NewReader() Reader { return UnsupportedReader{} }

func (UnsupportedReader) Read(assemblyPath, entryPoint string) (AssemblyMetadata, error) {
	return AssemblyMetadata{}, fmt.Errorf("metadata: plugin introspection unsupported on this platform (assembly %s)", assemblyPath)
}
