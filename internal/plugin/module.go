// Package plugin defines the contract every module entry point must
// implement and the lifecycle state machine the manager drives it through.
package plugin

import (
	"context"

	"github.com/giantswarm/pluginhost/internal/manifest"
)

// HealthStatus is the tri-state outcome of a module's health check.
type HealthStatus int

const (
	Healthy HealthStatus = iota
	Degraded
	Unhealthy
)

func (h HealthStatus) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Unhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Health is the result of a module's health check.
type Health struct {
	Status      HealthStatus
	Description string
}

// InitializationContext bridges host state into a module's pre-start
// validation step.
type InitializationContext struct {
	HostVersion    manifest.Version
	Environment    string
	SharedServices any
}

// ConfigSnapshot is the read-only configuration view handed to a module on
// change notification.
type ConfigSnapshot map[string]string

// ServiceRegistrar is the module-owned service collection a module appends
// its registrations to during OnInitialize. It is intentionally a small
// interface rather than a concrete type so module binaries built against an
// older host version can still satisfy it structurally.
type ServiceRegistrar interface {
	Register(serviceSymbol string, lifetime string, factory any, key string) error
}

// AppBuilder lets a module append middleware/routes during OnConfigure.
// Kept minimal and host-defined so module binaries never need to import the
// host's HTTP framework directly.
type AppBuilder interface {
	Handle(pattern string, handler any)
}

// Module is the contract every entry-point type must implement. It
// generalizes the teacher's services.Service interface (identity getters +
// context-first lifecycle hooks + optional health checker) from "a running
// service" to "a loaded module".
type Module interface {
	Name() string
	Version() manifest.Version
	Description() string
	Author() string
	Dependencies() []manifest.Dependency
	MinimumShellVersion() manifest.Version
	Metadata() map[string]string
	IsEnabled() bool

	Validate(ctx context.Context, initCtx InitializationContext) error
	OnInitialize(ctx context.Context, registrar ServiceRegistrar) error
	OnConfigure(ctx context.Context, builder AppBuilder) error
	OnStart(ctx context.Context) error
	OnStop(ctx context.Context) error
	OnUnload(ctx context.Context) error
	OnConfigurationChanged(ctx context.Context, snapshot ConfigSnapshot) error
	CheckHealth(ctx context.Context) (Health, error)
}
