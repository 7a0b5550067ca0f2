//go:build !linux && !darwin

package isolate

import "fmt"

// CanUnload reports whether the host platform supports reclaiming a loaded
// plugin's memory. On unsupported platforms there is no loading at all.
func CanUnload() bool { return false }

type pluginHandle struct{}

func openPlugin(path string) (*pluginHandle, error) {
	return nil, fmt.Errorf("isolate: plugin loading unsupported on this platform (path %s)", path)
}

func (h *pluginHandle) lookup(name string) (any, error) {
	return nil, fmt.Errorf("isolate: plugin loading unsupported on this platform")
}
