package gateway

import (
	"sync"

	"github.com/showdeskhq/showdesk/internal/model"
)

// Fake is an in-memory Gateway used by tests and by the sync manager's unit
// tests. It honors the same sentinel semantics as the Postgres gateway: set
// Fail (or clear Online) to make every operation return the failure sentinel.
type Fake struct {
	mu     sync.Mutex
	Online bool
	Fail   bool

	Slots        []model.ScheduleSlot
	Clips        []model.ClipMarker
	Notes        []model.Note
	Deliverables []model.Deliverable
	Completions  []model.Completion

	FetchCalls map[string]int
}

var _ Gateway = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{Online: true, FetchCalls: make(map[string]int)}
}

func (f *Fake) Configured() bool { return true }

func (f *Fake) ok() bool { return f.Online && !f.Fail }

func (f *Fake) countFetch(table string) {
	if f.FetchCalls != nil {
		f.FetchCalls[table]++
	}
}

func (f *Fake) FetchScheduleSlots() ([]model.ScheduleSlot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countFetch("schedule_slots")
	if !f.ok() {
		return nil, false
	}
	out := make([]model.ScheduleSlot, len(f.Slots))
	copy(out, f.Slots)
	return out, true
}

func (f *Fake) UpsertScheduleSlot(slot model.ScheduleSlot) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	for i, s := range f.Slots {
		if s.ID == slot.ID {
			f.Slots[i] = slot
			return true
		}
	}
	f.Slots = append(f.Slots, slot)
	return true
}

func (f *Fake) UpsertScheduleSlots(slots []model.ScheduleSlot) bool {
	for _, s := range slots {
		if !f.UpsertScheduleSlot(s) {
			return false
		}
	}
	return true
}

func (f *Fake) DeleteScheduleSlot(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	out := f.Slots[:0]
	for _, s := range f.Slots {
		if s.ID != id {
			out = append(out, s)
		}
	}
	f.Slots = out
	return true
}

func (f *Fake) FetchClips() ([]model.ClipMarker, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countFetch("clip_markers")
	if !f.ok() {
		return nil, false
	}
	out := make([]model.ClipMarker, len(f.Clips))
	copy(out, f.Clips)
	return out, true
}

func (f *Fake) InsertClip(clip model.ClipMarker) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	// duplicate ids are ignored, matching the idempotent insert
	for _, existing := range f.Clips {
		if existing.ID == clip.ID {
			return true
		}
	}
	f.Clips = append(f.Clips, clip)
	return true
}

func (f *Fake) UpdateClip(id string, patch model.ClipPatch) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	for i := range f.Clips {
		if f.Clips[i].ID == id {
			f.Clips[i].Apply(patch, f.Clips[i].UpdatedAt)
		}
	}
	return true
}

func (f *Fake) DeleteClip(id string) bool { return f.DeleteClips([]string{id}) }

func (f *Fake) DeleteClips(ids []string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := f.Clips[:0]
	for _, c := range f.Clips {
		if !drop[c.ID] {
			out = append(out, c)
		}
	}
	f.Clips = out
	return true
}

func (f *Fake) FetchNotes() ([]model.Note, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countFetch("notes")
	if !f.ok() {
		return nil, false
	}
	out := make([]model.Note, len(f.Notes))
	copy(out, f.Notes)
	return out, true
}

func (f *Fake) InsertNote(note model.Note) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	for _, existing := range f.Notes {
		if existing.ID == note.ID {
			return true
		}
	}
	f.Notes = append(f.Notes, note)
	return true
}

func (f *Fake) UpdateNote(id string, patch model.NotePatch) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	for i := range f.Notes {
		if f.Notes[i].ID == id {
			f.Notes[i].Apply(patch, f.Notes[i].UpdatedAt)
		}
	}
	return true
}

func (f *Fake) DeleteNote(id string) bool { return f.DeleteNotes([]string{id}) }

func (f *Fake) DeleteNotes(ids []string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := f.Notes[:0]
	for _, n := range f.Notes {
		if !drop[n.ID] {
			out = append(out, n)
		}
	}
	f.Notes = out
	return true
}

func (f *Fake) FetchDeliverables() ([]model.Deliverable, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countFetch("deliverables")
	if !f.ok() {
		return nil, false
	}
	out := make([]model.Deliverable, len(f.Deliverables))
	copy(out, f.Deliverables)
	return out, true
}

func (f *Fake) UpsertDeliverable(d model.Deliverable) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	for i, existing := range f.Deliverables {
		if existing.ID == d.ID {
			f.Deliverables[i] = d
			return true
		}
	}
	f.Deliverables = append(f.Deliverables, d)
	return true
}

func (f *Fake) UpsertDeliverables(ds []model.Deliverable) bool {
	for _, d := range ds {
		if !f.UpsertDeliverable(d) {
			return false
		}
	}
	return true
}

func (f *Fake) DeleteDeliverable(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	out := f.Deliverables[:0]
	for _, d := range f.Deliverables {
		if d.ID != id {
			out = append(out, d)
		}
	}
	f.Deliverables = out
	return true
}

func (f *Fake) FetchCompletions() ([]model.Completion, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countFetch("player_station_completions")
	if !f.ok() {
		return nil, false
	}
	out := make([]model.Completion, len(f.Completions))
	copy(out, f.Completions)
	return out, true
}

func (f *Fake) UpsertCompletion(c model.Completion) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	for i, existing := range f.Completions {
		if existing.PlayerID == c.PlayerID && existing.StationID == c.StationID {
			f.Completions[i] = c
			return true
		}
	}
	f.Completions = append(f.Completions, c)
	return true
}

func (f *Fake) DeleteCompletion(playerID, stationID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	out := f.Completions[:0]
	for _, c := range f.Completions {
		if c.PlayerID != playerID || c.StationID != stationID {
			out = append(out, c)
		}
	}
	f.Completions = out
	return true
}

func (f *Fake) ResetCompletions() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok() {
		return false
	}
	f.Completions = nil
	return true
}
