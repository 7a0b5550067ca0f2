package container

import "fmt"

// Container is the merged service-registration set: the host's own
// descriptors plus every loaded module's contributed descriptors, each tagged
// with its ModuleID so a module's contributions can be told apart and removed
// on unload. The Resolve methods do not filter by ModuleID: every descriptor
// is visible to every caller.
type Container struct {
	descriptors []Descriptor
}

// New returns an empty container.
func New() *Container { return &Container{} }

// AddHostDescriptors merges host-owned descriptors (ModuleID == "").
func (c *Container) AddHostDescriptors(descriptors ...Descriptor) {
	for _, d := range descriptors {
		d.ModuleID = ""
		c.descriptors = append(c.descriptors, d)
	}
}

// AddModuleDescriptors merges a module's contributed descriptors, tagging
// each with moduleID so they remain distinguishable as module-private.
func (c *Container) AddModuleDescriptors(moduleID string, descriptors ...Descriptor) {
	for _, d := range descriptors {
		d.ModuleID = moduleID
		c.descriptors = append(c.descriptors, d)
	}
}

// RemoveModule drops every descriptor contributed by moduleID, used on
// unload so nothing contributed by an unloaded module remains resolvable.
func (c *Container) RemoveModule(moduleID string) {
	kept := c.descriptors[:0]
	for _, d := range c.descriptors {
		if d.ModuleID != moduleID {
			kept = append(kept, d)
		}
	}
	c.descriptors = kept
}

// All returns every descriptor currently in the container.
func (c *Container) All() []Descriptor {
	out := make([]Descriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Resolve returns the keyless descriptor for a service symbol, per "only one
// keyless descriptor per serviceSymbol is returned by default resolution".
func (c *Container) Resolve(serviceSymbol string) (Descriptor, bool) {
	for _, d := range c.descriptors {
		if d.ServiceSymbol == serviceSymbol && d.Key == "" {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ResolveKeyed returns the descriptor registered under (serviceSymbol, key).
func (c *Container) ResolveKeyed(serviceSymbol, key string) (Descriptor, bool) {
	for _, d := range c.descriptors {
		if d.ServiceSymbol == serviceSymbol && d.Key == key {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ResolveAll returns every descriptor registered for serviceSymbol (the
// enumeration case for AllowMultiBind registrations).
func (c *Container) ResolveAll(serviceSymbol string) []Descriptor {
	var out []Descriptor
	for _, d := range c.descriptors {
		if d.ServiceSymbol == serviceSymbol {
			out = append(out, d)
		}
	}
	return out
}

func (d Descriptor) String() string {
	if d.Key != "" {
		return fmt.Sprintf("%s#%s", d.ServiceSymbol, d.Key)
	}
	return d.ServiceSymbol
}
