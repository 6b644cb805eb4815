package sync

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showdeskhq/showdesk/internal/connectivity"
	"github.com/showdeskhq/showdesk/internal/gateway"
	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/outbox"
	"github.com/showdeskhq/showdesk/internal/store"
)

func testManager(t *testing.T) (*Manager, *gateway.Fake, *store.Store) {
	t.Helper()
	fake := gateway.NewFake()
	st := store.NewMemory()
	mon := connectivity.NewMonitor(true)
	m := NewManager(st, fake, mon, outbox.NewMemory())
	m.Now = func() time.Time {
		return time.Date(2026, 2, 6, 10, 0, 0, 0, time.UTC)
	}
	return m, fake, st
}

func strptr(s string) *string { return &s }

func TestRefreshReplacesWholesale(t *testing.T) {
	m, fake, st := testManager(t)
	fake.Slots = []model.ScheduleSlot{
		{ID: "a", PlayerID: "p1", Date: "2026-02-06", StartTime: "10:00", EndTime: "11:00",
			Station: model.StationSigning, Status: model.SlotScheduled},
	}

	m.Refresh(TableSchedule)
	require.Len(t, st.Get().Schedule, 1)
	assert.Equal(t, StateSynced, m.State(TableSchedule))

	// refetch after a remote edit replaces the whole collection, no merging
	fake.Slots[0].StartTime = "10:30"
	fake.Slots = append(fake.Slots, model.ScheduleSlot{
		ID: "b", PlayerID: "p2", Date: "2026-02-06", StartTime: "12:00", EndTime: "13:00",
		Station: model.StationLEDWall, Status: model.SlotScheduled,
	})
	m.Refresh(TableSchedule)
	require.Len(t, st.Get().Schedule, 2)
	assert.Equal(t, "10:30", st.Get().Schedule[0].StartTime)
}

func TestRefreshIdempotent(t *testing.T) {
	m, fake, st := testManager(t)
	fake.Clips = []model.ClipMarker{{ID: "c1", Category: model.ClipHighlight}}

	m.Refresh(TableClips)
	first := st.Get().Clips
	m.Refresh(TableClips)
	assert.Equal(t, first, st.Get().Clips)
	assert.Equal(t, 2, fake.FetchCalls[TableClips])
}

func TestSentinelLeavesStoreUntouched(t *testing.T) {
	m, fake, st := testManager(t)
	fake.Notes = []model.Note{{ID: "n1", Content: "check feed"}}
	m.Refresh(TableNotes)
	require.Len(t, st.Get().Notes, 1)

	fake.Fail = true
	fake.Notes = nil
	m.Refresh(TableNotes)
	assert.Len(t, st.Get().Notes, 1, "failed fetch must not clear local data")
	assert.Equal(t, StateSynced, m.State(TableNotes), "state reverts to what it was before the attempt")
}

func TestEmptyResultGuard(t *testing.T) {
	m, fake, st := testManager(t)
	fake.Slots = []model.ScheduleSlot{
		{ID: "a", PlayerID: "p1", Date: "2026-02-06", StartTime: "10:00", EndTime: "11:00",
			Station: model.StationSigning, Status: model.SlotScheduled},
	}
	fake.Clips = []model.ClipMarker{{ID: "c1"}}
	m.RefreshAll()
	require.Len(t, st.Get().Schedule, 1)
	require.Len(t, st.Get().Clips, 1)

	// an empty remote schedule is treated as suspect and does not wipe the
	// local day sheet; clips have no such guard
	fake.Slots = nil
	fake.Clips = nil
	m.RefreshAll()
	assert.Len(t, st.Get().Schedule, 1)
	assert.Len(t, st.Get().Clips, 0)
}

func TestLocalFirstWriteSurvivesOffline(t *testing.T) {
	m, fake, st := testManager(t)
	fake.Online = false

	clip := m.AddClip(model.ClipMarker{Category: model.ClipHighlight, MediaType: "video"})
	assert.NotEmpty(t, clip.ID)
	require.Len(t, st.Get().Clips, 1, "local store updated even though the backend is down")
	assert.Empty(t, fake.Clips)
	assert.Equal(t, 1, m.box.Len())
}

func TestOutboxReplayOnReconnect(t *testing.T) {
	m, fake, st := testManager(t)
	fake.Online = false

	clip := m.AddClip(model.ClipMarker{Category: model.ClipReaction, MediaType: "video"})
	m.UpdateClip(clip.ID, model.ClipPatch{Notes: strptr("great pull")})
	note := m.AddNote(model.Note{Content: "replace battery cam 2"})
	m.ToggleCompletion("p1", string(model.StationSigning), "kayla")
	require.Equal(t, 4, m.box.Len())

	fake.Online = true
	m.drainOutbox()

	assert.Equal(t, 0, m.box.Len())
	require.Len(t, fake.Clips, 1)
	require.NotNil(t, fake.Clips[0].Notes)
	assert.Equal(t, "great pull", *fake.Clips[0].Notes)
	require.Len(t, fake.Notes, 1)
	assert.Equal(t, note.ID, fake.Notes[0].ID)
	require.Len(t, fake.Completions, 1)
	assert.True(t, fake.Completions[0].Completed)

	// refetch after the drain round-trips the same records
	m.RefreshAll()
	assert.Equal(t, "great pull", *st.Get().Clips[0].Notes)
}

func TestReplayedInsertIsIdempotent(t *testing.T) {
	m, fake, _ := testManager(t)
	fake.Online = false
	clip := m.AddClip(model.ClipMarker{Category: model.ClipHighlight, MediaType: "video"})

	fake.Online = true
	m.drainOutbox()
	require.Len(t, fake.Clips, 1)

	// a crash between apply and the queue persist re-replays the same op;
	// it must succeed as a no-op rather than wedge the queue
	payload, err := json.Marshal(clip)
	require.NoError(t, err)
	ok := m.applyOp(outbox.Op{Collection: TableClips, Kind: outbox.OpInsert, Payload: payload})
	assert.True(t, ok)
	assert.Len(t, fake.Clips, 1)
}

func TestRoundTrip(t *testing.T) {
	m, fake, st := testManager(t)

	slot := m.SaveSlot(model.ScheduleSlot{
		PlayerID: "p1", Date: "2026-02-06", StartTime: "10:00", EndTime: "11:00",
		Station: model.StationSigning,
	})
	assert.Equal(t, model.SlotScheduled, slot.Status)
	require.Len(t, fake.Slots, 1)

	m.Refresh(TableSchedule)
	require.Len(t, st.Get().Schedule, 1)
	assert.Equal(t, slot.ID, st.Get().Schedule[0].ID)
}

func TestSaveSlotKeepsDateStartOrder(t *testing.T) {
	m, _, st := testManager(t)
	m.SaveSlot(model.ScheduleSlot{ID: "b", PlayerID: "p2", Date: "2026-02-06",
		StartTime: "12:00", EndTime: "13:00", Station: model.StationSigning})
	m.SaveSlot(model.ScheduleSlot{ID: "a", PlayerID: "p1", Date: "2026-02-06",
		StartTime: "10:00", EndTime: "11:00", Station: model.StationSigning})

	sched := st.Get().Schedule
	require.Len(t, sched, 2)
	assert.Equal(t, "a", sched[0].ID)
}

func TestClipCap(t *testing.T) {
	m, _, st := testManager(t)
	clips := make([]model.ClipMarker, maxClips)
	for i := range clips {
		clips[i] = model.ClipMarker{ID: string(rune('a' + i%26))}
	}
	st.Set(store.Patch{Clips: &clips})

	newest := m.AddClip(model.ClipMarker{MediaType: "video"})
	got := st.Get().Clips
	assert.Len(t, got, maxClips)
	assert.Equal(t, newest.ID, got[0].ID, "newest marker is kept, oldest falls off")
}

func TestResolveNoteStampsResolvedAt(t *testing.T) {
	m, fake, st := testManager(t)
	note := m.AddNote(model.Note{Content: "mic rattle"})
	m.ResolveNote(note.ID)

	got := st.Get().Notes[0]
	assert.Equal(t, model.NoteResolved, got.Status)
	require.NotNil(t, got.ResolvedAt)

	// reopening clears the stamp
	open := model.NoteOpen
	m.UpdateNote(note.ID, model.NotePatch{Status: &open})
	assert.Nil(t, st.Get().Notes[0].ResolvedAt)
	_ = fake
}

func TestToggleCompletionRoundTrips(t *testing.T) {
	m, fake, st := testManager(t)

	first := m.ToggleCompletion("p1", string(model.StationPackRip), "sam")
	assert.True(t, first.Completed)
	require.NotNil(t, first.CompletedAt)
	require.NotNil(t, first.CompletedBy)
	assert.Len(t, fake.Completions, 1)

	// toggling a completed pair removes the row, it does not flip a flag
	second := m.ToggleCompletion("p1", string(model.StationPackRip), "sam")
	assert.False(t, second.Completed)
	assert.Nil(t, second.CompletedAt)
	assert.Empty(t, st.Get().Completions)
	assert.Empty(t, fake.Completions)
}

func TestClearResolvedNotes(t *testing.T) {
	m, _, st := testManager(t)
	open := m.AddNote(model.Note{Content: "keep me"})
	resolved := m.AddNote(model.Note{Content: "done"})
	m.ResolveNote(resolved.ID)

	assert.Equal(t, 1, m.ClearResolvedNotes())
	require.Len(t, st.Get().Notes, 1)
	assert.Equal(t, open.ID, st.Get().Notes[0].ID)
}

func TestStartReactsToInvalidationAndReconnect(t *testing.T) {
	fake := gateway.NewFake()
	st := store.NewMemory()
	mon := connectivity.NewMonitor(true)
	changes := make(chan string, 1)
	m := NewManager(st, fake, mon, outbox.NewMemory())
	m.Changes = changes
	m.Start()
	defer m.Stop()

	fake.Clips = []model.ClipMarker{{ID: "c1"}}
	changes <- TableClips
	assert.Eventually(t, func() bool {
		return len(st.Get().Clips) == 1
	}, time.Second, 10*time.Millisecond)

	// offline/online cycle triggers a full reload
	mon.SetOffline()
	fake.Notes = []model.Note{{ID: "n1"}}
	mon.SetOnline()
	assert.Eventually(t, func() bool {
		return len(st.Get().Notes) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestImportSlotsMergesByID(t *testing.T) {
	m, fake, st := testManager(t)
	existing := m.SaveSlot(model.ScheduleSlot{
		ID: "a", PlayerID: "p1", Date: "2026-02-06", StartTime: "10:00", EndTime: "11:00",
		Station: model.StationSigning,
	})

	imported := m.ImportSlots([]model.ScheduleSlot{
		{ID: "a", PlayerID: "p1", Date: "2026-02-06", StartTime: "09:00", EndTime: "09:30",
			Station: model.StationSigning},
		{PlayerID: "p2", Date: "2026-02-06", StartTime: "12:00", EndTime: "13:00",
			Station: model.StationLEDWall},
	})
	require.Len(t, imported, 2)
	assert.NotEmpty(t, imported[1].ID, "imported slots get ids stamped")

	slots := st.Get().Schedule
	require.Len(t, slots, 2, "import replaces by id, no duplicate for slot a")
	assert.Equal(t, existing.ID, slots[0].ID)
	assert.Equal(t, "09:00", slots[0].StartTime, "incoming slot wins over the local copy")
	assert.Len(t, fake.Slots, 2, "batch upsert reached the backend")
}

func TestImportSlotsOfflineQueuesPerSlot(t *testing.T) {
	m, fake, st := testManager(t)
	fake.Online = false

	m.ImportSlots([]model.ScheduleSlot{
		{PlayerID: "p1", Date: "2026-02-06", StartTime: "10:00", EndTime: "11:00",
			Station: model.StationSigning},
		{PlayerID: "p2", Date: "2026-02-06", StartTime: "12:00", EndTime: "13:00",
			Station: model.StationLEDWall},
	})
	require.Len(t, st.Get().Schedule, 2)
	assert.Equal(t, 2, m.box.Len(), "one queued upsert per imported slot")

	fake.Online = true
	m.drainOutbox()
	assert.Len(t, fake.Slots, 2)
	assert.Equal(t, 0, m.box.Len())
}

func TestImportDeliverablesReplacesByID(t *testing.T) {
	m, fake, st := testManager(t)
	kept := m.SaveDeliverable(model.Deliverable{Title: "sizzle reel", DueDay: "2026-02-07"})

	m.ImportDeliverables([]model.Deliverable{
		{ID: kept.ID, Title: "sizzle reel v2", DueDay: "2026-02-07"},
		{Title: "recap thread", DueDay: "2026-02-08"},
	})
	ds := st.Get().Deliverables
	require.Len(t, ds, 2)
	assert.Equal(t, "sizzle reel v2", ds[0].Title)
	assert.Equal(t, model.DeliverablePending, ds[1].Status, "imports default to pending")
	assert.Len(t, fake.Deliverables, 2)
}

func TestDeleteClipReplaysSingleDelete(t *testing.T) {
	m, fake, st := testManager(t)
	clip := m.AddClip(model.ClipMarker{Category: model.ClipHighlight, MediaType: "video"})
	require.Len(t, fake.Clips, 1)

	fake.Online = false
	m.DeleteClip(clip.ID)
	assert.Empty(t, st.Get().Clips)
	require.Equal(t, 1, m.box.Len())

	fake.Online = true
	m.drainOutbox()
	assert.Empty(t, fake.Clips, "queued single-clip delete replays against the backend")
	assert.Equal(t, 0, m.box.Len())
}
