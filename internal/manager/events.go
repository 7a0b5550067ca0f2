package manager

import (
	"github.com/giantswarm/pluginhost/internal/plugin"
	"github.com/giantswarm/pluginhost/pkg/logging"
)

// StateChangeEvent reports a single module's lifecycle transition.
type StateChangeEvent struct {
	ModuleID string
	State    plugin.State
}

const subscriberBufferSize = 64

// SubscribeToStateChanges returns a channel receiving every subsequent
// lifecycle transition. Mirrors Orchestrator.SubscribeToStateChanges /
// publishStateChangeEvent verbatim in shape: buffered channel, non-blocking
// send, drop-and-log on full channel.
func (m *Manager) SubscribeToStateChanges() <-chan StateChangeEvent {
	ch := make(chan StateChangeEvent, subscriberBufferSize)
	m.subMu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.subMu.Unlock()
	return ch
}

func (m *Manager) publish(event StateChangeEvent) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber too slow to drain; drop rather than block the
			// lifecycle lock holder.
			logging.Warn("Manager", "state-change event for %s dropped, subscriber slow to drain", event.ModuleID)
		}
	}
}
