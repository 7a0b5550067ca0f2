package container

import (
	"fmt"
	"reflect"

	"github.com/giantswarm/pluginhost/internal/depgraph"
)

// Result is the outcome of a Validator pass.
type Result struct {
	IsValid  bool
	Errors   []error
	Warnings []string
}

// Validator is a static analyser over a service-registration set, run
// before any provider is built.
type Validator struct{}

// NewValidator returns a Service Validator.
func NewValidator() *Validator { return &Validator{} }

// Validate runs assignability, constructor-resolvability, cycle-detection,
// lifetime-compatibility, and keyed-registration checks over the given
// descriptor set and returns the accumulated result. A failing result must
// prevent provider construction.
func (v *Validator) Validate(descriptors []Descriptor) Result {
	var errs []error
	var warnings []string

	byType := make(map[reflect.Type][]Descriptor)
	seen := make(map[descriptorKey][]Descriptor)

	for _, d := range descriptors {
		seen[d.key()] = append(seen[d.key()], d)
		if d.ServiceType != nil {
			byType[d.ServiceType] = append(byType[d.ServiceType], d)
		}
	}

	// Step 5: keyed-descriptor conflicts.
	for k, group := range seen {
		if len(group) <= 1 {
			continue
		}
		if k.key == "" {
			allMulti := true
			for _, d := range group {
				if !d.AllowMultiBind {
					allMulti = false
					break
				}
			}
			if !allMulti {
				errs = append(errs, fmt.Errorf("service %q: %d conflicting keyless descriptors", k.symbol, len(group)))
			}
			continue
		}
		allMulti := true
		for _, d := range group {
			if !d.AllowMultiBind {
				allMulti = false
				break
			}
		}
		if !allMulti {
			errs = append(errs, fmt.Errorf("service %q key %q: %d conflicting descriptors", k.symbol, k.key, len(group)))
		}
	}

	// Steps 1-2: concrete descriptors must be assignable and constructor-resolvable.
	for _, d := range descriptors {
		if d.Kind != ConcreteKind {
			continue
		}
		if d.ImplType == nil {
			errs = append(errs, fmt.Errorf("service %q: concrete descriptor missing implementation type", d.ServiceSymbol))
			continue
		}
		if d.ImplType.Kind() == reflect.Interface {
			errs = append(errs, fmt.Errorf("service %q: implementation %s is an interface, not a concrete type", d.ServiceSymbol, d.ImplType))
			continue
		}
		if d.ServiceType != nil && d.ServiceType.Kind() == reflect.Interface && !d.ImplType.Implements(d.ServiceType) {
			errs = append(errs, fmt.Errorf("service %q: %s does not implement %s", d.ServiceSymbol, d.ImplType, d.ServiceType))
			continue
		}
		if !d.Constructor.IsValid() || d.Constructor.Kind() != reflect.Func {
			errs = append(errs, fmt.Errorf("service %q: %s has no constructor", d.ServiceSymbol, d.ImplType))
			continue
		}

		ctorType := d.Constructor.Type()
		for i := 0; i < ctorType.NumIn(); i++ {
			paramType := ctorType.In(i)
			if _, resolvable := byType[paramType]; resolvable {
				continue
			}
			if d.OptionalParams[i] {
				warnings = append(warnings, fmt.Sprintf("service %q: optional constructor parameter %d (%s) unresolved", d.ServiceSymbol, i, paramType))
				continue
			}
			errs = append(errs, fmt.Errorf("service %q: constructor parameter %d (%s) unresolvable", d.ServiceSymbol, i, paramType))
		}
	}

	// Step 3: cycle detection over the depends-on graph built from resolved
	// constructor parameters. Descriptor indices disambiguate the node IDs so
	// that two AllowMultiBind descriptors sharing a symbol/key don't collide
	// and silently lose one another's dependency edges.
	nodeIDByIndex := make([]string, len(descriptors))
	indicesBySymbol := make(map[string][]int, len(descriptors))
	for i, d := range descriptors {
		nodeIDByIndex[i] = fmt.Sprintf("%s#%d", nodeID(d), i)
		indicesBySymbol[nodeID(d)] = append(indicesBySymbol[nodeID(d)], i)
	}

	g := depgraph.New()
	for i, d := range descriptors {
		var deps []depgraph.NodeID
		if d.Kind == ConcreteKind && d.Constructor.IsValid() && d.Constructor.Kind() == reflect.Func {
			ctorType := d.Constructor.Type()
			for p := 0; p < ctorType.NumIn(); p++ {
				for _, dependency := range byType[ctorType.In(p)] {
					for _, j := range indicesBySymbol[nodeID(dependency)] {
						deps = append(deps, depgraph.NodeID(nodeIDByIndex[j]))
					}
				}
			}
		}
		g.AddNode(depgraph.Node{ID: depgraph.NodeID(nodeIDByIndex[i]), DependsOn: deps})
	}
	if _, err := g.TopoSort(); err != nil {
		errs = append(errs, fmt.Errorf("service graph cycle: %w", err))
	}

	// Step 4: lifetime compatibility.
	lifetimeByType := make(map[reflect.Type]Lifetime)
	for _, d := range descriptors {
		if d.ServiceType != nil {
			lifetimeByType[d.ServiceType] = d.Lifetime
		}
	}
	for _, d := range descriptors {
		if d.Kind != ConcreteKind || !d.Constructor.IsValid() || d.Constructor.Kind() != reflect.Func {
			continue
		}
		ctorType := d.Constructor.Type()
		for i := 0; i < ctorType.NumIn(); i++ {
			depLifetime, ok := lifetimeByType[ctorType.In(i)]
			if !ok {
				continue
			}
			if d.Lifetime == Singleton && (depLifetime == Scoped || depLifetime == Transient) {
				errs = append(errs, fmt.Errorf("service %q: Singleton depends on %s service (parameter %d)", d.ServiceSymbol, depLifetime, i))
			}
		}
	}

	return Result{IsValid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

func nodeID(d Descriptor) string {
	if d.Key != "" {
		return d.ServiceSymbol + "#" + d.Key
	}
	return d.ServiceSymbol
}
