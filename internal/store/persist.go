package store

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog/log"
)

const snapshotKey = "snapshot"

// persister serializes the whitelisted subset of the snapshot to a single
// namespaced blob on disk, written on every state change and read once at
// boot. Ephemeral UI flags are excluded by the projection below. Writes are
// version-stamped: a save that lost the race to a newer snapshot is skipped
// so the durable blob never moves backwards.
type persister struct {
	d *diskv.Diskv

	mu    sync.Mutex
	saved uint64
}

// persistedState is the typed whitelist projection. Anything not listed here
// never touches disk.
type persistedState struct {
	Preferences  Preferences     `json:"preferences"`
	Schedule     json.RawMessage `json:"schedule,omitempty"`
	Clips        json.RawMessage `json:"clips,omitempty"`
	Notes        json.RawMessage `json:"notes,omitempty"`
	Deliverables json.RawMessage `json:"deliverables,omitempty"`
	Completions  json.RawMessage `json:"completions,omitempty"`
}

func newPersister(stateDir string) (*persister, error) {
	if stateDir == "" {
		return nil, errors.New("store: state directory required")
	}
	return &persister{d: diskv.New(diskv.Options{
		BasePath:     stateDir,
		CacheSizeMax: 1024 * 1024,
	})}, nil
}

func project(snap Snapshot) persistedState {
	out := persistedState{Preferences: snap.Preferences}
	out.Schedule, _ = json.Marshal(snap.Schedule)
	out.Clips, _ = json.Marshal(snap.Clips)
	out.Notes, _ = json.Marshal(snap.Notes)
	out.Deliverables, _ = json.Marshal(snap.Deliverables)
	out.Completions, _ = json.Marshal(snap.Completions)
	return out
}

func (p *persister) save(snap Snapshot, version uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if version <= p.saved {
		// a newer snapshot already hit disk
		return
	}
	data, err := json.Marshal(project(snap))
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal state snapshot")
		return
	}
	if err := p.d.Write(snapshotKey, data); err != nil {
		log.Error().Err(err).Msg("failed to persist state snapshot")
		return
	}
	p.saved = version
}

// load rehydrates the persisted projection. Corrupt or missing data falls
// back to the default snapshot without crashing.
func (p *persister) load() Snapshot {
	snap := defaultSnapshot()

	data, err := p.d.Read(snapshotKey)
	if err != nil {
		return snap
	}
	var saved persistedState
	if err := json.Unmarshal(data, &saved); err != nil {
		log.Error().Err(err).Msg("state snapshot corrupt, starting from defaults")
		return snap
	}

	snap.Preferences = saved.Preferences
	if snap.SelectedStation == "" {
		snap.SelectedStation = defaultSnapshot().SelectedStation
	}
	unmarshalCollection(saved.Schedule, &snap.Schedule)
	unmarshalCollection(saved.Clips, &snap.Clips)
	unmarshalCollection(saved.Notes, &snap.Notes)
	unmarshalCollection(saved.Deliverables, &snap.Deliverables)
	unmarshalCollection(saved.Completions, &snap.Completions)
	return snap
}

func unmarshalCollection[T any](raw json.RawMessage, dst *[]T) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Error().Err(err).Msg("persisted collection corrupt, dropping it")
		*dst = nil
	}
}
