// Package isolate implements the per-module isolation context: a named
// linking scope providing symbol resolution scoped to a single module's
// directory, falling back to an allow-listed set of host-published symbols,
// with a teardown seam for reclaiming the module's binaries.
//
// This generalizes the teacher's internal/mcpserver process-isolation
// pattern (each MCP server process is launched, tracked, and torn down as an
// independent unit) from OS-process isolation to in-process plugin.Plugin
// isolation.
package isolate

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Binary is a loaded module binary with symbol resolution scoped to its
// owning isolation context.
type Binary struct {
	Path string
	ctx  *Context
}

// Lookup resolves a symbol, preferring the module's own binary and falling
// back to the context's allow-listed host symbols.
func (b *Binary) Lookup(name string) (any, error) {
	return b.ctx.lookup(name)
}

// Context is a per-module loading and linking context.
type Context struct {
	// ID is a unique, process-stable identifier for this context.
	ID string
	// Root is the module's directory.
	Root string
	// Collectible indicates the host should attempt to reclaim this
	// context's binaries once all references are released, subject to
	// platform support for dynamic code unloading.
	Collectible bool

	mu        sync.Mutex
	disposed  bool
	allowList map[string]any
	loaded    map[string]*pluginHandle
}

// New creates an isolation context rooted at root, with the given
// host-published symbols available as a resolution fallback.
func New(root string, collectible bool, allowList map[string]any) *Context {
	al := make(map[string]any, len(allowList))
	for k, v := range allowList {
		al[k] = v
	}
	return &Context{
		ID:          uuid.NewString(),
		Root:        root,
		Collectible: collectible,
		allowList:   al,
		loaded:      make(map[string]*pluginHandle),
	}
}

// Load resolves imported symbols within the module's directory first,
// falling back to host-published symbols enumerated in the allow-list.
func (c *Context) Load(path string) (*Binary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return nil, fmt.Errorf("isolate: context %s disposed", c.ID)
	}

	handle, err := openPlugin(path)
	if err != nil {
		return nil, fmt.Errorf("isolate: load %s: %w", path, err)
	}
	c.loaded[path] = handle

	return &Binary{Path: path, ctx: c}, nil
}

func (c *Context) lookup(name string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return nil, fmt.Errorf("isolate: context %s disposed", c.ID)
	}

	for _, handle := range c.loaded {
		if sym, err := handle.lookup(name); err == nil {
			return sym, nil
		}
	}

	if sym, ok := c.allowList[name]; ok {
		return sym, nil
	}

	return nil, fmt.Errorf("isolate: symbol %q not resolvable in context %s", name, c.ID)
}

// Dispose detaches the allow-list bridge and drops cached binary references.
// Whether the underlying binaries are actually reclaimed depends on platform
// support for dynamic code unloading (see CanUnload).
func (c *Context) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.allowList = nil
	c.loaded = nil
}

// Disposed reports whether Dispose has already run.
func (c *Context) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}
