package sync

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/outbox"
	"github.com/showdeskhq/showdesk/internal/store"
)

// Mutations are local-first: the store is updated immediately, then the
// gateway is attempted, and on the failure sentinel the op lands in the
// outbox for the reconnect drain. The caller never observes the network.

// maxClips bounds the marker list; the oldest markers fall off first.
const maxClips = 500

// SaveSlot inserts or replaces a schedule slot.
func (m *Manager) SaveSlot(slot model.ScheduleSlot) model.ScheduleSlot {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.Status == "" {
		slot.Status = model.SlotScheduled
	}

	slots := append([]model.ScheduleSlot(nil), m.store.Get().Schedule...)
	replaced := false
	for i, s := range slots {
		if s.ID == slot.ID {
			slots[i] = slot
			replaced = true
			break
		}
	}
	if !replaced {
		slots = append(slots, slot)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	m.store.Set(store.Patch{Schedule: &slots})

	if !m.gw.UpsertScheduleSlot(slot) {
		m.enqueue(TableSchedule, outbox.OpUpsert, slot)
	}
	return slot
}

// ImportSlots merges a bulk rundown import. Incoming slots replace existing
// ones by id; everything else is kept. The remote write goes out as a single
// batch upsert, falling back to per-slot outbox ops so a partial replay never
// re-sends the whole import.
func (m *Manager) ImportSlots(incoming []model.ScheduleSlot) []model.ScheduleSlot {
	for i := range incoming {
		if incoming[i].ID == "" {
			incoming[i].ID = uuid.NewString()
		}
		if incoming[i].Status == "" {
			incoming[i].Status = model.SlotScheduled
		}
	}

	replace := make(map[string]bool, len(incoming))
	for _, s := range incoming {
		replace[s.ID] = true
	}
	slots := make([]model.ScheduleSlot, 0, len(m.store.Get().Schedule)+len(incoming))
	for _, s := range m.store.Get().Schedule {
		if !replace[s.ID] {
			slots = append(slots, s)
		}
	}
	slots = append(slots, incoming...)
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	m.store.Set(store.Patch{Schedule: &slots})

	if !m.gw.UpsertScheduleSlots(incoming) {
		for _, s := range incoming {
			m.enqueue(TableSchedule, outbox.OpUpsert, s)
		}
	}
	return incoming
}

func (m *Manager) DeleteSlot(id string) {
	slots := make([]model.ScheduleSlot, 0, len(m.store.Get().Schedule))
	for _, s := range m.store.Get().Schedule {
		if s.ID != id {
			slots = append(slots, s)
		}
	}
	m.store.Set(store.Patch{Schedule: &slots})

	if !m.gw.DeleteScheduleSlot(id) {
		m.enqueue(TableSchedule, outbox.OpDelete, deletePayload{ID: id})
	}
}

// AddClip stamps ids and timestamps, prepends the marker, and trims the list
// to the cap.
func (m *Manager) AddClip(clip model.ClipMarker) model.ClipMarker {
	now := m.Now()
	if clip.ID == "" {
		clip.ID = uuid.NewString()
	}
	if clip.Timestamp.IsZero() {
		clip.Timestamp = now
	}
	if clip.Category == "" {
		clip.Category = model.ClipGeneral
	}
	if clip.Priority == "" {
		clip.Priority = model.PriorityNormal
	}
	clip.CreatedAt = now
	clip.UpdatedAt = now

	clips := append([]model.ClipMarker{clip}, m.store.Get().Clips...)
	if len(clips) > maxClips {
		clips = clips[:maxClips]
	}
	m.store.Set(store.Patch{Clips: &clips})

	if !m.gw.InsertClip(clip) {
		m.enqueue(TableClips, outbox.OpInsert, clip)
	}
	return clip
}

func (m *Manager) UpdateClip(id string, patch model.ClipPatch) {
	now := m.Now()
	clips := append([]model.ClipMarker(nil), m.store.Get().Clips...)
	for i := range clips {
		if clips[i].ID == id {
			clips[i].Apply(patch, now)
		}
	}
	m.store.Set(store.Patch{Clips: &clips})

	if !m.gw.UpdateClip(id, patch) {
		m.enqueuePatch(TableClips, id, patch)
	}
}

func (m *Manager) DeleteClip(id string) {
	clips := make([]model.ClipMarker, 0, len(m.store.Get().Clips))
	for _, c := range m.store.Get().Clips {
		if c.ID != id {
			clips = append(clips, c)
		}
	}
	m.store.Set(store.Patch{Clips: &clips})

	if !m.gw.DeleteClip(id) {
		m.enqueue(TableClips, outbox.OpDelete, deletePayload{ID: id})
	}
}

func (m *Manager) DeleteClips(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	clips := make([]model.ClipMarker, 0, len(m.store.Get().Clips))
	for _, c := range m.store.Get().Clips {
		if !drop[c.ID] {
			clips = append(clips, c)
		}
	}
	m.store.Set(store.Patch{Clips: &clips})

	if !m.gw.DeleteClips(ids) {
		m.enqueue(TableClips, outbox.OpDelete, deletePayload{IDs: ids})
	}
}

// AddNote stamps ids and timestamps and appends the note.
func (m *Manager) AddNote(note model.Note) model.Note {
	now := m.Now()
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.Status == "" {
		note.Status = model.NoteOpen
	}
	if note.Priority == "" {
		note.Priority = model.NoteMedium
	}
	note.CreatedAt = now
	note.UpdatedAt = now

	notes := append([]model.Note{note}, m.store.Get().Notes...)
	m.store.Set(store.Patch{Notes: &notes})

	if !m.gw.InsertNote(note) {
		m.enqueue(TableNotes, outbox.OpInsert, note)
	}
	return note
}

func (m *Manager) UpdateNote(id string, patch model.NotePatch) {
	now := m.Now()
	notes := append([]model.Note(nil), m.store.Get().Notes...)
	for i := range notes {
		if notes[i].ID == id {
			notes[i].Apply(patch, now)
			if patch.Status != nil && *patch.Status == model.NoteResolved && notes[i].ResolvedAt == nil {
				t := now
				notes[i].ResolvedAt = &t
			}
		}
	}
	m.store.Set(store.Patch{Notes: &notes})

	if !m.gw.UpdateNote(id, patch) {
		m.enqueuePatch(TableNotes, id, patch)
	}
}

// ResolveNote is the one-tap resolution path.
func (m *Manager) ResolveNote(id string) {
	status := model.NoteResolved
	m.UpdateNote(id, model.NotePatch{Status: &status})
}

func (m *Manager) DeleteNotes(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	notes := make([]model.Note, 0, len(m.store.Get().Notes))
	for _, n := range m.store.Get().Notes {
		if !drop[n.ID] {
			notes = append(notes, n)
		}
	}
	m.store.Set(store.Patch{Notes: &notes})

	if !m.gw.DeleteNotes(ids) {
		m.enqueue(TableNotes, outbox.OpDelete, deletePayload{IDs: ids})
	}
}

// SaveDeliverable inserts or replaces a deliverable.
func (m *Manager) SaveDeliverable(d model.Deliverable) model.Deliverable {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = model.DeliverablePending
	}

	ds := append([]model.Deliverable(nil), m.store.Get().Deliverables...)
	replaced := false
	for i, existing := range ds {
		if existing.ID == d.ID {
			ds[i] = d
			replaced = true
			break
		}
	}
	if !replaced {
		ds = append(ds, d)
	}
	m.store.Set(store.Patch{Deliverables: &ds})

	if !m.gw.UpsertDeliverable(d) {
		m.enqueue(TableDeliverables, outbox.OpUpsert, d)
	}
	return d
}

// ImportDeliverables merges a bulk deliverable import, replacing by id.
func (m *Manager) ImportDeliverables(incoming []model.Deliverable) []model.Deliverable {
	for i := range incoming {
		if incoming[i].ID == "" {
			incoming[i].ID = uuid.NewString()
		}
		if incoming[i].Status == "" {
			incoming[i].Status = model.DeliverablePending
		}
	}

	replace := make(map[string]bool, len(incoming))
	for _, d := range incoming {
		replace[d.ID] = true
	}
	ds := make([]model.Deliverable, 0, len(m.store.Get().Deliverables)+len(incoming))
	for _, d := range m.store.Get().Deliverables {
		if !replace[d.ID] {
			ds = append(ds, d)
		}
	}
	ds = append(ds, incoming...)
	m.store.Set(store.Patch{Deliverables: &ds})

	if !m.gw.UpsertDeliverables(incoming) {
		for _, d := range incoming {
			m.enqueue(TableDeliverables, outbox.OpUpsert, d)
		}
	}
	return incoming
}

// SetDeliverableStatus advances a deliverable and stamps completion times.
func (m *Manager) SetDeliverableStatus(id string, status model.DeliverableStatus) {
	now := m.Now()
	ds := append([]model.Deliverable(nil), m.store.Get().Deliverables...)
	var updated *model.Deliverable
	for i := range ds {
		if ds[i].ID == id {
			ds[i].SetStatus(status, now)
			updated = &ds[i]
		}
	}
	if updated == nil {
		return
	}
	m.store.Set(store.Patch{Deliverables: &ds})

	if !m.gw.UpsertDeliverable(*updated) {
		m.enqueue(TableDeliverables, outbox.OpUpsert, *updated)
	}
}

func (m *Manager) DeleteDeliverable(id string) {
	ds := make([]model.Deliverable, 0, len(m.store.Get().Deliverables))
	for _, d := range m.store.Get().Deliverables {
		if d.ID != id {
			ds = append(ds, d)
		}
	}
	m.store.Set(store.Patch{Deliverables: &ds})

	if !m.gw.DeleteDeliverable(id) {
		m.enqueue(TableDeliverables, outbox.OpDelete, deletePayload{ID: id})
	}
}

// ToggleCompletion flips a player's checklist state for one station. Ticking
// inserts a stamped row; unticking removes the row entirely.
func (m *Manager) ToggleCompletion(playerID, stationID string, by string) model.Completion {
	now := m.Now()
	cs := append([]model.Completion(nil), m.store.Get().Completions...)

	for i := range cs {
		if cs[i].PlayerID == playerID && cs[i].StationID == stationID {
			removed := cs[i]
			removed.Completed = false
			removed.CompletedAt = nil
			removed.CompletedBy = nil
			cs = append(cs[:i], cs[i+1:]...)
			m.store.Set(store.Patch{Completions: &cs})

			if !m.gw.DeleteCompletion(playerID, stationID) {
				m.enqueue(TableCompletions, outbox.OpDelete,
					deletePayload{PlayerID: playerID, StationID: stationID})
			}
			return removed
		}
	}

	t := now
	added := model.Completion{
		PlayerID:    playerID,
		StationID:   stationID,
		Completed:   true,
		CompletedAt: &t,
	}
	if by != "" {
		added.CompletedBy = &by
	}
	cs = append(cs, added)
	m.store.Set(store.Patch{Completions: &cs})

	if !m.gw.UpsertCompletion(added) {
		m.enqueue(TableCompletions, outbox.OpUpsert, added)
	}
	return added
}

// ClearResolvedNotes bulk-deletes every resolved note.
func (m *Manager) ClearResolvedNotes() int {
	var ids []string
	for _, n := range m.store.Get().Notes {
		if n.Status == model.NoteResolved {
			ids = append(ids, n.ID)
		}
	}
	m.DeleteNotes(ids)
	return len(ids)
}

// ResetCompletions clears every checklist tick, typically at the start of an
// event day.
func (m *Manager) ResetCompletions() {
	empty := []model.Completion{}
	m.store.Set(store.Patch{Completions: &empty})

	if !m.gw.ResetCompletions() {
		m.enqueue(TableCompletions, outbox.OpReset, struct{}{})
	}
}

func (m *Manager) enqueuePatch(collection, id string, patch any) {
	if m.box == nil {
		return
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("failed to queue offline patch")
		return
	}
	data, err := json.Marshal(patchPayload{ID: id, Patch: raw})
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("failed to queue offline patch")
		return
	}
	m.box.Enqueue(outbox.Op{Collection: collection, Kind: outbox.OpUpdate, Payload: data})
}
