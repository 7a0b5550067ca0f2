package container

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface{ Greet() string }
type english struct{}

func (english) Greet() string { return "hello" }

func newEnglish() *english { return &english{} }

type multilingual struct{ g greeter }

func newMultilingual(g greeter) *multilingual { return &multilingual{g: g} }

func TestValidateAssignableConcreteOK(t *testing.T) {
	d := Descriptor{
		ServiceSymbol: "greeter",
		ServiceType:   reflect.TypeOf((*greeter)(nil)).Elem(),
		Kind:          ConcreteKind,
		ImplType:      reflect.TypeOf(english{}),
		Constructor:   reflect.ValueOf(newEnglish),
		Lifetime:      Singleton,
	}
	result := NewValidator().Validate([]Descriptor{d})
	assert.True(t, result.IsValid, "errors: %v", result.Errors)
}

func TestValidateRejectsUnassignableImplementation(t *testing.T) {
	type other struct{}
	d := Descriptor{
		ServiceSymbol: "greeter",
		ServiceType:   reflect.TypeOf((*greeter)(nil)).Elem(),
		Kind:          ConcreteKind,
		ImplType:      reflect.TypeOf(other{}),
		Constructor:   reflect.ValueOf(func() *other { return &other{} }),
	}
	result := NewValidator().Validate([]Descriptor{d})
	assert.False(t, result.IsValid)
}

func TestValidateDetectsUnresolvedConstructorParameter(t *testing.T) {
	d := Descriptor{
		ServiceSymbol: "multilingual",
		ServiceType:   reflect.TypeOf((*multilingual)(nil)),
		Kind:          ConcreteKind,
		ImplType:      reflect.TypeOf(multilingual{}),
		Constructor:   reflect.ValueOf(newMultilingual),
	}
	result := NewValidator().Validate([]Descriptor{d})
	require.False(t, result.IsValid)
}

func TestValidateSingletonDependingOnScopedIsError(t *testing.T) {
	scoped := Descriptor{
		ServiceSymbol: "greeter",
		ServiceType:   reflect.TypeOf((*greeter)(nil)).Elem(),
		Kind:          ConcreteKind,
		ImplType:      reflect.TypeOf(english{}),
		Constructor:   reflect.ValueOf(newEnglish),
		Lifetime:      Scoped,
	}
	singleton := Descriptor{
		ServiceSymbol: "multilingual",
		ServiceType:   reflect.TypeOf((*multilingual)(nil)),
		Kind:          ConcreteKind,
		ImplType:      reflect.TypeOf(multilingual{}),
		Constructor:   reflect.ValueOf(newMultilingual),
		Lifetime:      Singleton,
	}
	result := NewValidator().Validate([]Descriptor{scoped, singleton})
	require.False(t, result.IsValid)
}

func TestValidateConflictingKeylessDescriptors(t *testing.T) {
	a := Descriptor{ServiceSymbol: "greeter", Kind: InstanceKind, Instance: english{}}
	b := Descriptor{ServiceSymbol: "greeter", Kind: InstanceKind, Instance: english{}}
	result := NewValidator().Validate([]Descriptor{a, b})
	assert.False(t, result.IsValid)
}

func TestValidateAllowMultiBindPermitsMultipleKeyless(t *testing.T) {
	a := Descriptor{ServiceSymbol: "greeter", Kind: InstanceKind, Instance: english{}, AllowMultiBind: true}
	b := Descriptor{ServiceSymbol: "greeter", Kind: InstanceKind, Instance: english{}, AllowMultiBind: true}
	result := NewValidator().Validate([]Descriptor{a, b})
	assert.True(t, result.IsValid)
}

func TestContainerRemoveModuleRemovesItsDescriptors(t *testing.T) {
	c := New()
	c.AddModuleDescriptors("A", Descriptor{ServiceSymbol: "svc"})
	require.Len(t, c.All(), 1)
	c.RemoveModule("A")
	require.Empty(t, c.All())
}
