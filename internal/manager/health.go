package manager

import (
	"context"

	"github.com/giantswarm/pluginhost/internal/plugin"
)

// HealthReport is the fleet-aggregate outcome of polling every started
// module's health, generalizing the teacher's HealthChecker interface
// (internal/services/interfaces.go) from a single service to a fleet.
type HealthReport struct {
	Healthy   int
	Degraded  int
	Unhealthy int
	Detail    map[string]plugin.Health
}

// ReportHealth polls every started module's health check and returns the
// aggregate counts plus per-module detail.
func (m *Manager) ReportHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	ids := append([]string{}, m.order...)
	entries := make(map[string]*entry, len(m.modules))
	for k, v := range m.modules {
		entries[k] = v
	}
	m.mu.Unlock()

	report := HealthReport{Detail: make(map[string]plugin.Health, len(ids))}

	for _, id := range ids {
		e, ok := entries[id]
		if !ok || e.loaded == nil || e.loaded.Instance == nil || e.loaded.State != plugin.Started {
			continue
		}
		health, err := e.loaded.Instance.CheckHealth(ctx)
		if err != nil {
			health = plugin.Health{Status: plugin.Unhealthy, Description: err.Error()}
		}
		report.Detail[id] = health
		switch health.Status {
		case plugin.Healthy:
			report.Healthy++
		case plugin.Degraded:
			report.Degraded++
		default:
			report.Unhealthy++
		}
	}

	return report
}
