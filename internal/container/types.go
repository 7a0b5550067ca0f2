// Package container models the merged service-registration container and
// its pre-flight static Validator, kept in its own package because it is
// exercised both per-module (a module's own registrations) and on the
// merged host container.
//
// Grounded on the teacher's internal/serviceclass arg-validation pattern
// (ValidateServiceArgs: validate before build, collect every error) and
// internal/config/validation.go's ValidationErrors accumulator, generalized
// from "validate one ServiceClass's args" to "validate an entire
// constructor-dependency graph".
package container

import "reflect"

// Lifetime is how long a service instance is retained once resolved.
type Lifetime int

const (
	Transient Lifetime = iota
	Scoped
	Singleton
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "Transient"
	case Scoped:
		return "Scoped"
	case Singleton:
		return "Singleton"
	default:
		return "Unknown"
	}
}

// Kind distinguishes how a descriptor's implementation is provided.
type Kind int

const (
	ConcreteKind Kind = iota
	FactoryKind
	InstanceKind
)

// Descriptor is a single service registration, contributed by either the
// host container or a single module's container.
type Descriptor struct {
	// ServiceSymbol names the abstraction being registered, e.g. a package
	// path-qualified interface name.
	ServiceSymbol string
	// ServiceType is the Go type (normally an interface) resolution
	// requests against ServiceSymbol must satisfy.
	ServiceType reflect.Type
	// Key distinguishes multiple registrations of the same ServiceSymbol.
	// Empty means "the" keyless registration.
	Key string
	// AllowMultiBind permits more than one keyless descriptor to coexist
	// for ServiceSymbol as an enumeration rather than a conflict.
	AllowMultiBind bool

	Lifetime Lifetime
	Kind     Kind

	// Concrete implementation fields (Kind == ConcreteKind).
	ImplType    reflect.Type
	Constructor reflect.Value
	// OptionalParams lists constructor parameter indices annotated as
	// optional: unresolved optional parameters produce a warning, not an
	// error.
	OptionalParams map[int]bool

	// Factory implementation (Kind == FactoryKind): a func() (any, error)
	// or func() any.
	Factory reflect.Value

	// Instance implementation (Kind == InstanceKind).
	Instance any

	// ModuleID is empty for host-owned descriptors, or the owning
	// module's id for module-private ones.
	ModuleID string
}

func (d Descriptor) key() descriptorKey {
	return descriptorKey{symbol: d.ServiceSymbol, key: d.Key}
}

type descriptorKey struct {
	symbol, key string
}
