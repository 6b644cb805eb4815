// Package sync keeps the local store converged with the remote backend:
// wholesale refetches on invalidation, an outbox drain plus full reload on
// reconnect, and local-first mutations that never block on the network.
package sync

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/showdeskhq/showdesk/internal/connectivity"
	"github.com/showdeskhq/showdesk/internal/gateway"
	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/outbox"
	"github.com/showdeskhq/showdesk/internal/store"
)

// Remote table names, which double as the sync-state keys and as the last
// topic segment of realtime invalidation messages.
const (
	TableSchedule     = "schedule_slots"
	TableClips        = "clip_markers"
	TableNotes        = "notes"
	TableDeliverables = "deliverables"
	TableCompletions  = "player_station_completions"
)

var allTables = []string{TableSchedule, TableClips, TableNotes, TableDeliverables, TableCompletions}

// Tables lists every synced table in fetch order.
func Tables() []string {
	out := make([]string, len(allTables))
	copy(out, allTables)
	return out
}

// State tracks one collection's progress through the sync lifecycle.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateSynced        State = "synced"
)

// Manager owns the sync loop. All remote reads funnel through Refresh; all
// writes go through the action methods, which apply locally first and fall
// back to the outbox when the gateway reports the failure sentinel.
type Manager struct {
	store *store.Store
	gw    gateway.Gateway
	mon   *connectivity.Monitor
	box   *outbox.Outbox

	// Changes feeds per-table invalidation events, normally wired to the
	// realtime client. May be nil.
	Changes <-chan string

	// Now is the mutation timestamp source, overridable in tests.
	Now func() time.Time

	mu     sync.Mutex
	states map[string]State
	closed bool

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewManager(st *store.Store, gw gateway.Gateway, mon *connectivity.Monitor, box *outbox.Outbox) *Manager {
	states := make(map[string]State, len(allTables))
	for _, t := range allTables {
		states[t] = StateUninitialized
	}
	return &Manager{
		store:  st,
		gw:     gw,
		mon:    mon,
		box:    box,
		Now:    time.Now,
		states: states,
		stop:   make(chan struct{}),
	}
}

// Snapshot returns the current local state.
func (m *Manager) Snapshot() store.Snapshot { return m.store.Get() }

// Store exposes the underlying local store for preference writes.
func (m *Manager) Store() *store.Store { return m.store }

// State reports where a collection is in the sync lifecycle.
func (m *Manager) State(table string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[table]
}

// Start performs the initial load and spawns the event loop. If the gateway
// is unreachable the initial load fails silently and the persisted snapshot
// remains authoritative until connectivity returns.
func (m *Manager) Start() {
	if m.box != nil && m.mon.Online() {
		m.drainOutbox()
	}
	m.RefreshAll()

	m.wg.Add(1)
	go m.run()
}

// Stop terminates the event loop. In-flight refreshes finish against the
// store's own closed-guard.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	close(m.stop)
	m.wg.Wait()
}

func (m *Manager) run() {
	defer m.wg.Done()
	online := m.mon.Subscribe()
	for {
		select {
		case <-m.stop:
			return
		case up, ok := <-online:
			if !ok {
				return
			}
			if up {
				// queued mutations replay before the reload so the refetch
				// reflects them
				m.drainOutbox()
				m.RefreshAll()
			}
		case table, ok := <-m.Changes:
			if !ok {
				return
			}
			m.Refresh(table)
		}
	}
}

// RefreshAll refetches every collection.
func (m *Manager) RefreshAll() {
	for _, t := range allTables {
		m.Refresh(t)
	}
}

// Refresh refetches one collection wholesale and replaces the local copy.
// Sentinel failures leave the local copy untouched. Schedule and deliverables
// additionally keep the local copy when the remote set comes back empty, so a
// half-provisioned backend cannot wipe a day sheet mid-event.
func (m *Manager) Refresh(table string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	prev := m.states[table]
	m.states[table] = StateLoading
	m.mu.Unlock()

	ok := m.fetch(table)

	m.mu.Lock()
	if ok {
		m.states[table] = StateSynced
	} else {
		m.states[table] = prev
	}
	m.mu.Unlock()
}

func (m *Manager) fetch(table string) bool {
	switch table {
	case TableSchedule:
		slots, ok := m.gw.FetchScheduleSlots()
		if !ok {
			return false
		}
		if len(slots) == 0 && len(m.store.Get().Schedule) > 0 {
			log.Warn().Str("table", table).Msg("remote returned no rows, keeping local copy")
			return true
		}
		m.store.Set(store.Patch{Schedule: &slots})
	case TableClips:
		clips, ok := m.gw.FetchClips()
		if !ok {
			return false
		}
		m.store.Set(store.Patch{Clips: &clips})
	case TableNotes:
		notes, ok := m.gw.FetchNotes()
		if !ok {
			return false
		}
		m.store.Set(store.Patch{Notes: &notes})
	case TableDeliverables:
		ds, ok := m.gw.FetchDeliverables()
		if !ok {
			return false
		}
		if len(ds) == 0 && len(m.store.Get().Deliverables) > 0 {
			log.Warn().Str("table", table).Msg("remote returned no rows, keeping local copy")
			return true
		}
		m.store.Set(store.Patch{Deliverables: &ds})
	case TableCompletions:
		cs, ok := m.gw.FetchCompletions()
		if !ok {
			return false
		}
		m.store.Set(store.Patch{Completions: &cs})
	default:
		log.Debug().Str("table", table).Msg("ignoring invalidation for unknown table")
	}
	return true
}

func (m *Manager) drainOutbox() {
	if m.box == nil {
		return
	}
	m.box.Flush(m.applyOp)
}

// deletePayload is the shared delete shape queued in the outbox.
type deletePayload struct {
	ID        string   `json:"id,omitempty"`
	IDs       []string `json:"ids,omitempty"`
	PlayerID  string   `json:"player_id,omitempty"`
	StationID string   `json:"station_id,omitempty"`
}

type patchPayload struct {
	ID    string          `json:"id"`
	Patch json.RawMessage `json:"patch"`
}

// applyOp replays one queued mutation against the gateway. A decode failure
// is dropped rather than wedging the queue forever.
func (m *Manager) applyOp(op outbox.Op) bool {
	fail := func(err error) bool {
		log.Error().Err(err).Str("collection", op.Collection).
			Str("kind", string(op.Kind)).Msg("dropping undecodable outbox op")
		return true
	}

	switch op.Collection {
	case TableSchedule:
		switch op.Kind {
		case outbox.OpUpsert:
			var slot model.ScheduleSlot
			if err := json.Unmarshal(op.Payload, &slot); err != nil {
				return fail(err)
			}
			return m.gw.UpsertScheduleSlot(slot)
		case outbox.OpDelete:
			var p deletePayload
			if err := json.Unmarshal(op.Payload, &p); err != nil {
				return fail(err)
			}
			return m.gw.DeleteScheduleSlot(p.ID)
		}
	case TableClips:
		switch op.Kind {
		case outbox.OpInsert:
			var clip model.ClipMarker
			if err := json.Unmarshal(op.Payload, &clip); err != nil {
				return fail(err)
			}
			return m.gw.InsertClip(clip)
		case outbox.OpUpdate:
			var p patchPayload
			if err := json.Unmarshal(op.Payload, &p); err != nil {
				return fail(err)
			}
			var patch model.ClipPatch
			if err := json.Unmarshal(p.Patch, &patch); err != nil {
				return fail(err)
			}
			return m.gw.UpdateClip(p.ID, patch)
		case outbox.OpDelete:
			var p deletePayload
			if err := json.Unmarshal(op.Payload, &p); err != nil {
				return fail(err)
			}
			if p.ID != "" {
				return m.gw.DeleteClip(p.ID)
			}
			return m.gw.DeleteClips(p.IDs)
		}
	case TableNotes:
		switch op.Kind {
		case outbox.OpInsert:
			var note model.Note
			if err := json.Unmarshal(op.Payload, &note); err != nil {
				return fail(err)
			}
			return m.gw.InsertNote(note)
		case outbox.OpUpdate:
			var p patchPayload
			if err := json.Unmarshal(op.Payload, &p); err != nil {
				return fail(err)
			}
			var patch model.NotePatch
			if err := json.Unmarshal(p.Patch, &patch); err != nil {
				return fail(err)
			}
			return m.gw.UpdateNote(p.ID, patch)
		case outbox.OpDelete:
			var p deletePayload
			if err := json.Unmarshal(op.Payload, &p); err != nil {
				return fail(err)
			}
			return m.gw.DeleteNotes(p.IDs)
		}
	case TableDeliverables:
		switch op.Kind {
		case outbox.OpUpsert:
			var d model.Deliverable
			if err := json.Unmarshal(op.Payload, &d); err != nil {
				return fail(err)
			}
			return m.gw.UpsertDeliverable(d)
		case outbox.OpDelete:
			var p deletePayload
			if err := json.Unmarshal(op.Payload, &p); err != nil {
				return fail(err)
			}
			return m.gw.DeleteDeliverable(p.ID)
		}
	case TableCompletions:
		switch op.Kind {
		case outbox.OpUpsert:
			var c model.Completion
			if err := json.Unmarshal(op.Payload, &c); err != nil {
				return fail(err)
			}
			return m.gw.UpsertCompletion(c)
		case outbox.OpDelete:
			var p deletePayload
			if err := json.Unmarshal(op.Payload, &p); err != nil {
				return fail(err)
			}
			return m.gw.DeleteCompletion(p.PlayerID, p.StationID)
		case outbox.OpReset:
			return m.gw.ResetCompletions()
		}
	}
	log.Error().Str("collection", op.Collection).Str("kind", string(op.Kind)).
		Msg("dropping unknown outbox op")
	return true
}

func (m *Manager) enqueue(collection string, kind outbox.OpKind, payload any) {
	if m.box == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("failed to queue offline mutation")
		return
	}
	m.box.Enqueue(outbox.Op{Collection: collection, Kind: kind, Payload: data})
}
