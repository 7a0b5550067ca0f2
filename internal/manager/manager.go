// Package manager implements the fleet orchestrator: topological ordering,
// bulk lifecycle, failure policy, health polling, and unload. Grounded on
// the teacher's internal/orchestrator/orchestrator.go (registry composition,
// state-change fan-out via subscriber channels, Start/Stop) and
// internal/services/registry.go (the ServiceRegistry interface this
// Manager's module registry mirrors).
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/giantswarm/pluginhost/internal/container"
	"github.com/giantswarm/pluginhost/internal/depgraph"
	"github.com/giantswarm/pluginhost/internal/discovery"
	"github.com/giantswarm/pluginhost/internal/initialize"
	"github.com/giantswarm/pluginhost/internal/loader"
	"github.com/giantswarm/pluginhost/internal/metadata"
	"github.com/giantswarm/pluginhost/internal/ploerr"
	"github.com/giantswarm/pluginhost/internal/plugin"
	"github.com/giantswarm/pluginhost/internal/validate"
	"golang.org/x/sync/errgroup"
)

// FailurePolicy controls how the Manager reacts to a module failing during
// a start sweep.
type FailurePolicy int

const (
	FailFast FailurePolicy = iota
	Continue
)

// Config configures a Manager instance.
type Config struct {
	Host              validate.HostContext
	FailurePolicy     FailurePolicy
	EnableUnloading   bool
	StopGracePeriod   time.Duration
	DiscoveryDepth    int
	AllowListSymbols  map[string]any
	MetadataReader    metadata.Reader
	SharedServices    any
	Environment       string
}

// entry tracks one module's current lifecycle state alongside its loaded
// form.
type entry struct {
	loaded  *loader.LoadedModule
	depends []string
}

// Manager is the fleet orchestrator. All public methods that mutate
// lifecycle state are serialized by mu, matching the teacher's
// Orchestrator.mu sync.RWMutex guarding instances/subscriber slices — at
// most one lifecycle transition is in progress at any time.
type Manager struct {
	cfg Config

	mu      sync.Mutex
	modules map[string]*entry
	order   []string // topological start order from the last LoadAll
	merged  *container.Container

	subMu       sync.RWMutex
	subscribers []chan StateChangeEvent
}

// New returns a Manager with the given configuration.
func New(cfg Config) *Manager {
	if cfg.StopGracePeriod <= 0 {
		cfg.StopGracePeriod = 30 * time.Second
	}
	return &Manager{
		cfg:     cfg,
		modules: make(map[string]*entry),
		merged:  container.New(),
	}
}

// Report is the structured lifecycle report returned by LoadAll: per-module
// final state, stage-of-failure, and error text.
type Report struct {
	Modules []ModuleReport
}

// ModuleReport is one module's entry in a Report.
type ModuleReport struct {
	ID      string
	State   plugin.State
	Stage   string
	Error   string
}

// LoadAll runs Discovery across every root, validates the union graph,
// topologically sorts it, and invokes the Loader for each node in order,
// accumulating a report.
func (m *Manager) LoadAll(ctx context.Context, roots []string) (Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var discovered []discovery.Discovered
	for _, root := range roots {
		found, _, err := discovery.DiscoverFromDirectory(root, m.cfg.DiscoveryDepth)
		if err != nil {
			return Report{}, fmt.Errorf("manager: discovery on %s: %w", root, err)
		}
		discovered = append(discovered, found...)
	}

	graphResult := validate.ValidateGraph(discovered)
	if !graphResult.IsValid {
		return Report{}, &ploerr.GraphInvalidError{Reason: joinErrors(graphResult.Errors), Cycle: extractCycle(graphResult.Errors)}
	}

	g := depgraph.New()
	byID := make(map[string]discovery.Discovered, len(discovered))
	for _, d := range discovered {
		byID[d.Manifest.ID] = d
		var deps []depgraph.NodeID
		for _, dep := range d.Manifest.Dependencies {
			deps = append(deps, depgraph.NodeID(dep.ID))
		}
		g.AddNode(depgraph.Node{ID: depgraph.NodeID(d.Manifest.ID), DependsOn: deps})
	}

	order, err := g.TopoSort()
	if err != nil {
		return Report{}, err
	}

	l := loader.Loader{
		Host:           m.cfg.Host,
		MetadataReader: m.cfg.MetadataReader,
		Initializer: initialize.Initializer{
			HostVersion:    m.cfg.Host.Version,
			Environment:    m.cfg.Environment,
			SharedServices: m.cfg.SharedServices,
		},
		AllowListedSymbols: m.cfg.AllowListSymbols,
		Collectible:        m.cfg.EnableUnloading,
	}

	report := Report{}
	m.modules = make(map[string]*entry, len(order))
	m.order = nil

	for _, id := range order {
		d, ok := byID[string(id)]
		if !ok {
			continue // external dependency reference, not a module in this set
		}

		var depIDs []string
		for _, dep := range d.Manifest.Dependencies {
			depIDs = append(depIDs, dep.ID)
		}

		lm, loadErr := l.Load(ctx, d)
		m.modules[d.Manifest.ID] = &entry{loaded: lm, depends: depIDs}
		m.order = append(m.order, d.Manifest.ID)

		modReport := ModuleReport{ID: d.Manifest.ID, State: lm.State}
		if lm.Failure != nil {
			modReport.Stage = lm.Failure.Stage.String()
			modReport.Error = lm.Failure.Err.Error()
		}
		report.Modules = append(report.Modules, modReport)
		m.publish(StateChangeEvent{ModuleID: d.Manifest.ID, State: lm.State})

		_ = loadErr // captured in modReport; LoadAll itself does not abort on a single module's load failure
	}

	return report, nil
}

func joinErrors(errs []error) string {
	s := ""
	for i, e := range errs {
		if i > 0 {
			s += "; "
		}
		s += e.Error()
	}
	return s
}

// extractCycle pulls the node path out of the first *depgraph.CycleError
// found among errs, if any, so callers can surface it on the typed error
// rather than just its rendered string.
func extractCycle(errs []error) []string {
	for _, e := range errs {
		var cycleErr *depgraph.CycleError
		if errors.As(e, &cycleErr) {
			path := make([]string, len(cycleErr.Path))
			for i, id := range cycleErr.Path {
				path[i] = string(id)
			}
			return path
		}
	}
	return nil
}

// fanOutRanks groups the topological order into independent ranks (modules
// whose dependencies are already satisfied by earlier ranks) so Start can
// fan out within a rank via errgroup while still respecting cross-rank
// ordering. Stop does not use ranks; it runs sequentially in reverse order. Order among independent modules within a rank is otherwise
// unspecified but stable for a given graph.
func (m *Manager) fanOutRanks(ids []string) [][]string {
	depsOf := make(map[string][]string, len(ids))
	for _, id := range ids {
		if e, ok := m.modules[id]; ok {
			depsOf[id] = e.depends
		}
	}

	placed := make(map[string]bool, len(ids))
	var ranks [][]string
	remaining := append([]string{}, ids...)

	for len(remaining) > 0 {
		var rank []string
		var next []string
		for _, id := range remaining {
			ready := true
			for _, dep := range depsOf[id] {
				if !placed[dep] {
					if _, exists := depsOf[dep]; exists {
						ready = false
						break
					}
				}
			}
			if ready {
				rank = append(rank, id)
			} else {
				next = append(next, id)
			}
		}
		if len(rank) == 0 {
			// Safety valve: break any stall by placing all the rest in one
			// final rank rather than looping forever; ValidateGraph already rejected
			// real cycles before this point.
			rank = next
			next = nil
		}
		for _, id := range rank {
			placed[id] = true
		}
		ranks = append(ranks, rank)
		remaining = next
	}

	return ranks
}

// runRanked runs fn over every module id in ids, fanning out within each
// topological rank concurrently via errgroup (grounded on the teacher's
// concurrent sync.WaitGroup teardown in Orchestrator.Stop) while preserving
// cross-rank order.
func runRanked(ctx context.Context, ranks [][]string, fn func(ctx context.Context, id string) error) error {
	for _, rank := range ranks {
		g, gctx := errgroup.WithContext(ctx)
		for _, id := range rank {
			id := id
			g.Go(func() error { return fn(gctx, id) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
