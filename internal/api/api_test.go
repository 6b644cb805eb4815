package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showdeskhq/showdesk/internal/connectivity"
	"github.com/showdeskhq/showdesk/internal/gateway"
	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/outbox"
	"github.com/showdeskhq/showdesk/internal/schedule"
	"github.com/showdeskhq/showdesk/internal/store"
	"github.com/showdeskhq/showdesk/internal/sync"
)

func testRouter(t *testing.T) (*gin.Engine, *sync.Manager, *gateway.Fake) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := gateway.NewFake()
	st := store.NewMemory()
	mon := connectivity.NewMonitor(true)
	mgr := sync.NewManager(st, fake, mon, outbox.NewMemory())
	mgr.Now = func() time.Time {
		// 10:30 on day one, event time
		loc, _ := time.LoadLocation("America/Los_Angeles")
		return time.Date(2026, 2, 6, 10, 30, 0, 0, loc)
	}
	clk, err := schedule.NewClock("America/Los_Angeles", []string{"2026-02-06", "2026-02-07"})
	require.NoError(t, err)

	r := NewRouter(
		ScheduleModule(mgr, clk),
		ClipModule(mgr, clk),
		NoteModule(mgr),
		DeliverableModule(mgr),
		CompletionModule(mgr),
		StatusModule(mgr, mon, clk),
		PreferenceModule(mgr),
	)
	return r, mgr, fake
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScheduleCRUD(t *testing.T) {
	r, _, _ := testRouter(t)

	w := do(t, r, http.MethodPost, "/api/schedule", model.ScheduleSlot{
		PlayerID: "p1", Date: "2026-02-06", StartTime: "10:00", EndTime: "11:00",
		Station: model.StationSigning,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created model.ScheduleSlot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.SlotScheduled, created.Status)

	w = do(t, r, http.MethodGet, "/api/schedule?day=2026-02-06", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var slots []model.ScheduleSlot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slots))
	require.Len(t, slots, 1)

	w = do(t, r, http.MethodDelete, "/api/schedule/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, "/api/schedule/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleValidation(t *testing.T) {
	r, _, _ := testRouter(t)

	w := do(t, r, http.MethodPost, "/api/schedule", model.ScheduleSlot{
		PlayerID: "p1", Date: "2026-02-06", StartTime: "9:00", EndTime: "11:00",
		Station: model.StationSigning,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "non-zero-padded time rejected")

	w = do(t, r, http.MethodPost, "/api/schedule", model.ScheduleSlot{
		PlayerID: "p1", Date: "2026-02-06", StartTime: "11:00", EndTime: "10:00",
		Station: model.StationSigning,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "inverted window rejected")

	// TBD slots skip the time checks entirely
	w = do(t, r, http.MethodPost, "/api/schedule", model.ScheduleSlot{
		PlayerID: "p2", Date: "2026-02-06", Station: model.StationSigning,
		Status: model.SlotTBD,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClipLifecycle(t *testing.T) {
	r, mgr, _ := testRouter(t)

	w := do(t, r, http.MethodPost, "/api/clips", map[string]any{
		"media_type": "video", "category": "highlight", "notes": "huge pull",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var clip model.ClipMarker
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clip))

	w = do(t, r, http.MethodPatch, "/api/clips/"+clip.ID, map[string]any{"flagged": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mgr.Snapshot().Clips[0].Flagged)

	w = do(t, r, http.MethodGet, "/api/clips?q=pull", nil)
	var clips []model.ClipMarker
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clips))
	assert.Len(t, clips, 1)
	assert.Equal(t, []string{"pull"}, mgr.Snapshot().RecentSearches)

	w = do(t, r, http.MethodPost, "/api/clips/delete", map[string]any{"ids": []string{clip.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mgr.Snapshot().Clips)
}

func TestVenueStatus(t *testing.T) {
	r, _, _ := testRouter(t)

	w := do(t, r, http.MethodGet, "/api/status/venue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status    string `json:"status"`
		Day       string `json:"day"`
		DayNumber int    `json:"day_number"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, "2026-02-06", resp.Day)
	assert.Equal(t, 1, resp.DayNumber)
}

func TestPlayerStatuses(t *testing.T) {
	r, _, _ := testRouter(t)

	// p1 on stage at 10:30, p2 later today
	do(t, r, http.MethodPost, "/api/schedule", model.ScheduleSlot{
		ID: "a", PlayerID: "p1", Date: "2026-02-06", StartTime: "10:00", EndTime: "11:00",
		Station: model.StationSigning,
	})
	do(t, r, http.MethodPost, "/api/schedule", model.ScheduleSlot{
		ID: "b", PlayerID: "p2", Date: "2026-02-06", StartTime: "14:00", EndTime: "15:00",
		Station: model.StationLEDWall,
	})

	w := do(t, r, http.MethodGet, "/api/status/players?day=2026-02-06", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var players []playerStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &players))
	require.Len(t, players, 2)

	byID := map[string]playerStatusResponse{}
	for _, p := range players {
		byID[p.PlayerID] = p
	}
	assert.Equal(t, schedule.StatusNow, byID["p1"].Status)
	assert.Equal(t, schedule.StatusNotStarted, byID["p2"].Status)
	require.NotNil(t, byID["p1"].Current)
	assert.Equal(t, "a", byID["p1"].Current.ID)
}

func TestSyncStateEndpoint(t *testing.T) {
	r, mgr, fake := testRouter(t)
	fake.Slots = []model.ScheduleSlot{{ID: "a", PlayerID: "p1", Date: "2026-02-06",
		StartTime: "10:00", EndTime: "11:00", Station: model.StationSigning, Status: model.SlotScheduled}}
	mgr.Refresh(sync.TableSchedule)

	w := do(t, r, http.MethodGet, "/api/status/sync", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Online bool              `json:"online"`
		Tables map[string]string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Online)
	assert.Equal(t, string(sync.StateSynced), resp.Tables[sync.TableSchedule])
	assert.Equal(t, string(sync.StateUninitialized), resp.Tables[sync.TableClips])
}

func TestPreferences(t *testing.T) {
	r, mgr, _ := testRouter(t)

	w := do(t, r, http.MethodPatch, "/api/preferences", map[string]any{
		"large_text": true, "selected_station": "led_wall",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mgr.Snapshot().LargeText)
	assert.Equal(t, model.StationLEDWall, mgr.Snapshot().SelectedStation)

	w = do(t, r, http.MethodPatch, "/api/preferences", map[string]any{
		"selected_station": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleBulkImport(t *testing.T) {
	r, mgr, fake := testRouter(t)

	w := do(t, r, http.MethodPost, "/api/schedule/bulk", []model.ScheduleSlot{
		{PlayerID: "p1", Date: "2026-02-06", StartTime: "10:00", EndTime: "11:00",
			Station: model.StationSigning},
		{PlayerID: "p2", Date: "2026-02-06", StartTime: "12:00", EndTime: "13:00",
			Station: model.StationLEDWall},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, mgr.Snapshot().Schedule, 2)
	assert.Len(t, fake.Slots, 2)

	// one bad slot rejects the whole import
	w = do(t, r, http.MethodPost, "/api/schedule/bulk", []model.ScheduleSlot{
		{PlayerID: "p3", Date: "2026-02-06", StartTime: "9:00", EndTime: "10:00",
			Station: model.StationSigning},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, mgr.Snapshot().Schedule, 2)

	w = do(t, r, http.MethodPost, "/api/schedule/bulk", []model.ScheduleSlot{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeliverableBulkImport(t *testing.T) {
	r, mgr, fake := testRouter(t)

	w := do(t, r, http.MethodPost, "/api/deliverables/bulk", []model.Deliverable{
		{Title: "sizzle reel", DueDay: "2026-02-07"},
		{Title: "recap thread", DueDay: "2026-02-08"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, mgr.Snapshot().Deliverables, 2)
	assert.Len(t, fake.Deliverables, 2)

	w = do(t, r, http.MethodPost, "/api/deliverables/bulk", []model.Deliverable{{DueDay: "2026-02-08"}})
	assert.Equal(t, http.StatusBadRequest, w.Code, "untitled deliverable rejected")
}

func TestClipSingleDelete(t *testing.T) {
	r, mgr, _ := testRouter(t)

	w := do(t, r, http.MethodPost, "/api/clips", map[string]any{"media_type": "video"})
	require.Equal(t, http.StatusOK, w.Code)
	var clip model.ClipMarker
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clip))

	w = do(t, r, http.MethodDelete, "/api/clips/"+clip.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mgr.Snapshot().Clips)

	w = do(t, r, http.MethodDelete, "/api/clips/"+clip.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
