package manager

import (
	"fmt"
	"reflect"

	"github.com/giantswarm/pluginhost/internal/container"
)

// moduleRegistrar implements plugin.ServiceRegistrar, collecting a single
// module's registrations into descriptors the Manager later merges into the
// host container and runs through container.Validator.
type moduleRegistrar struct {
	moduleID    string
	descriptors []container.Descriptor
}

func lifetimeFromString(s string) (container.Lifetime, error) {
	switch s {
	case "Transient", "transient":
		return container.Transient, nil
	case "Scoped", "scoped":
		return container.Scoped, nil
	case "Singleton", "singleton":
		return container.Singleton, nil
	default:
		return 0, fmt.Errorf("unknown lifetime %q", s)
	}
}

func (r *moduleRegistrar) Register(serviceSymbol, lifetime string, factory any, key string) error {
	lt, err := lifetimeFromString(lifetime)
	if err != nil {
		return fmt.Errorf("module %q: register %q: %w", r.moduleID, serviceSymbol, err)
	}

	fv := reflect.ValueOf(factory)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("module %q: register %q: factory must be a function", r.moduleID, serviceSymbol)
	}

	r.descriptors = append(r.descriptors, container.Descriptor{
		ServiceSymbol: serviceSymbol,
		Key:           key,
		Lifetime:      lt,
		Kind:          container.FactoryKind,
		Factory:       fv,
		ModuleID:      r.moduleID,
	})
	return nil
}
