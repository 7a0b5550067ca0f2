//go:build linux || darwin

package isolate

import gplugin "plugin"

// CanUnload reports whether the host platform supports reclaiming a loaded
// plugin's memory. The Go runtime never unloads a *plugin.Plugin once
// opened, on any platform — so this is always false, and modules stopped on
// a collectible context remain "stopped but resident" until process
// restart.
func CanUnload() bool { return false }

type pluginHandle struct {
	p *gplugin.Plugin
}

func openPlugin(path string) (*pluginHandle, error) {
	p, err := gplugin.Open(path)
	if err != nil {
		return nil, err
	}
	return &pluginHandle{p: p}, nil
}

func (h *pluginHandle) lookup(name string) (any, error) {
	sym, err := h.p.Lookup(name)
	if err != nil {
		return nil, err
	}
	return sym, nil
}
