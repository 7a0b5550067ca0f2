package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/giantswarm/pluginhost/internal/container"
	"github.com/giantswarm/pluginhost/internal/discovery"
	"github.com/giantswarm/pluginhost/internal/loader"
	"github.com/giantswarm/pluginhost/internal/manifest"
	"github.com/giantswarm/pluginhost/internal/plugin"
	"github.com/stretchr/testify/require"
)

type fakeModule struct {
	id       string
	startErr error
	stopped  bool
}

func (f *fakeModule) Name() string                        { return f.id }
func (f *fakeModule) Version() manifest.Version            { return manifest.Version{Major: 1} }
func (f *fakeModule) Description() string                  { return "" }
func (f *fakeModule) Author() string                       { return "" }
func (f *fakeModule) Dependencies() []manifest.Dependency   { return nil }
func (f *fakeModule) MinimumShellVersion() manifest.Version { return manifest.Version{Major: 1} }
func (f *fakeModule) Metadata() map[string]string           { return nil }
func (f *fakeModule) IsEnabled() bool                       { return true }
func (f *fakeModule) Validate(ctx context.Context, initCtx plugin.InitializationContext) error {
	return nil
}
func (f *fakeModule) OnInitialize(ctx context.Context, reg plugin.ServiceRegistrar) error { return nil }
func (f *fakeModule) OnConfigure(ctx context.Context, b plugin.AppBuilder) error          { return nil }
func (f *fakeModule) OnStart(ctx context.Context) error                                  { return f.startErr }
func (f *fakeModule) OnStop(ctx context.Context) error {
	f.stopped = true
	return nil
}
func (f *fakeModule) OnUnload(ctx context.Context) error { return nil }
func (f *fakeModule) OnConfigurationChanged(ctx context.Context, s plugin.ConfigSnapshot) error {
	return nil
}
func (f *fakeModule) CheckHealth(ctx context.Context) (plugin.Health, error) {
	return plugin.Health{Status: plugin.Healthy}, nil
}

func newEntryConfigured(id string, mod *fakeModule, deps []string) *entry {
	return &entry{
		loaded: &loader.LoadedModule{
			Discovered: discovery.Discovered{Manifest: manifest.Manifest{ID: id}},
			Instance:   mod,
			State:      plugin.Configured,
		},
		depends: deps,
	}
}

func newTestManager(policy FailurePolicy) *Manager {
	m := New(Config{FailurePolicy: policy, StopGracePeriod: 200 * time.Millisecond})
	m.modules = make(map[string]*entry)
	return m
}

// A fails at OnStart, B depends on A, C is independent. Under the continue
// policy, A's failure must not take down C, and B must be marked failed as
// a dependent rather than attempt its own OnStart.
func TestStartUnderContinuePolicyIsolatesFailureToDependents(t *testing.T) {
	m := newTestManager(Continue)

	modA := &fakeModule{id: "A", startErr: errors.New("boom")}
	modB := &fakeModule{id: "B"}
	modC := &fakeModule{id: "C"}

	m.modules["A"] = newEntryConfigured("A", modA, nil)
	m.modules["B"] = newEntryConfigured("B", modB, []string{"A"})
	m.modules["C"] = newEntryConfigured("C", modC, nil)
	m.order = []string{"A", "B", "C"}

	require.NoError(t, m.Start(context.Background()))

	require.Equal(t, plugin.Failed, m.modules["A"].loaded.State)
	require.Equal(t, plugin.Started, m.modules["A"].loaded.Failure.Stage)
	require.Equal(t, plugin.Failed, m.modules["B"].loaded.State)
	require.Equal(t, plugin.Started, m.modules["B"].loaded.Failure.Stage)
	require.Equal(t, plugin.Started, m.modules["C"].loaded.State)

	m.Stop(context.Background())
	require.True(t, modC.stopped)
	require.False(t, modA.stopped)
	require.False(t, modB.stopped)
}

// conflictingRegistrarModule registers two keyless, non-multibind
// descriptors under the same service symbol so the merged container fails
// the Service Validator's conflicting-descriptor check.
type conflictingRegistrarModule struct {
	fakeModule
}

func (m *conflictingRegistrarModule) OnInitialize(ctx context.Context, reg plugin.ServiceRegistrar) error {
	if err := reg.Register("greeter", "Singleton", func() string { return "a" }, ""); err != nil {
		return err
	}
	return reg.Register("greeter", "Singleton", func() string { return "b" }, "")
}

func newEntryInitialized(id string, mod plugin.Module, deps []string) *entry {
	e := newEntryConfigured(id, nil, deps)
	e.loaded.Instance = mod
	e.loaded.State = plugin.Initialized
	return e
}

func TestInitializeContainersFailsAllModulesWhenServiceGraphInvalid(t *testing.T) {
	m := newTestManager(Continue)

	modA := &conflictingRegistrarModule{fakeModule: fakeModule{id: "A"}}
	modB := &fakeModule{id: "B"}

	m.modules["A"] = newEntryInitialized("A", modA, nil)
	m.modules["B"] = newEntryInitialized("B", modB, []string{"A"})
	m.order = []string{"A", "B"}

	err := m.InitializeContainers(context.Background())
	require.Error(t, err)

	for _, id := range []string{"A", "B"} {
		e := m.modules[id]
		require.Equal(t, plugin.Failed, e.loaded.State, "module %s", id)
		require.NotNil(t, e.loaded.Failure, "module %s", id)
		require.Equal(t, plugin.Configured, e.loaded.Failure.Stage, "module %s", id)
	}
}

func TestStartFailFastStopsAlreadyStarted(t *testing.T) {
	m := newTestManager(FailFast)

	modA := &fakeModule{id: "A"}
	modB := &fakeModule{id: "B", startErr: errors.New("boom")}

	m.modules["A"] = newEntryConfigured("A", modA, nil)
	m.modules["B"] = newEntryConfigured("B", modB, nil)
	m.order = []string{"A", "B"}

	err := m.Start(context.Background())
	require.Error(t, err)
	require.True(t, modA.stopped, "already-started module A should be stopped when fail-fast aborts")
}

func TestStopReachesEveryStartedModule(t *testing.T) {
	m := newTestManager(Continue)

	makeMod := func(id string) *fakeModule { return &fakeModule{id: id} }

	modA, modB, modC := makeMod("A"), makeMod("B"), makeMod("C")
	m.modules["A"] = newEntryConfigured("A", modA, nil)
	m.modules["B"] = newEntryConfigured("B", modB, []string{"A"})
	m.modules["C"] = newEntryConfigured("C", modC, []string{"B"})
	m.order = []string{"A", "B", "C"}

	require.NoError(t, m.Start(context.Background()))

	m.Stop(context.Background())
	for _, id := range []string{"A", "B", "C"} {
		require.Equal(t, plugin.Stopped, m.modules[id].loaded.State)
	}
}

func TestUnloadRequiresStopped(t *testing.T) {
	m := newTestManager(Continue)
	mod := &fakeModule{id: "A"}
	e := newEntryConfigured("A", mod, nil)
	e.loaded.State = plugin.Started
	m.modules["A"] = e
	m.order = []string{"A"}

	err := m.Unload(context.Background(), "A")
	require.Error(t, err)
}

func TestUnloadRemovesModuleDescriptors(t *testing.T) {
	m := newTestManager(Continue)
	mod := &fakeModule{id: "A"}
	e := newEntryConfigured("A", mod, nil)
	e.loaded.State = plugin.Stopped
	m.modules["A"] = e
	m.order = []string{"A"}
	m.merged.AddModuleDescriptors("A", container.Descriptor{ServiceSymbol: "svc"})

	require.NoError(t, m.Unload(context.Background(), "A"))
	require.Empty(t, m.merged.All())
	require.Equal(t, plugin.Unloaded, m.modules["A"].loaded.State)
}

func TestReportHealthAggregatesStartedModules(t *testing.T) {
	m := newTestManager(Continue)
	mod := &fakeModule{id: "A"}
	e := newEntryConfigured("A", mod, nil)
	e.loaded.State = plugin.Started
	m.modules["A"] = e
	m.order = []string{"A"}

	report := m.ReportHealth(context.Background())
	require.Equal(t, 1, report.Healthy)
}
