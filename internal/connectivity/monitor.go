package connectivity

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Monitor tracks whether the remote side is reachable. Transitions are fed in
// by whoever owns the transport (the realtime client's connect/connection-lost
// handlers in production, tests directly). Consumers either poll Online before
// a network call or subscribe to transition events.
type Monitor struct {
	mu     sync.RWMutex
	online bool
	subs   []chan bool
	closed bool
}

// NewMonitor starts in the given state. Production starts offline and flips
// online once the transport connects.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online}
}

// Online is the synchronous "am I online right now" query consulted before
// every gateway call.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

func (m *Monitor) SetOnline() { m.set(true) }

func (m *Monitor) SetOffline() { m.set(false) }

func (m *Monitor) set(online bool) {
	m.mu.Lock()
	if m.closed || m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]chan bool, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	log.Info().Bool("online", online).Msg("connectivity changed")
	for _, ch := range subs {
		// keep-latest: clear a stale buffered transition so a slow subscriber
		// always observes the newest state, never an older flap
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- online:
		default:
		}
	}
}

// Subscribe returns a channel receiving true/false on every transition. The
// channel is buffered; missed intermediate transitions collapse into the
// latest state, which is all the sync manager needs.
func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Close tears down all subscriber channels.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
}
