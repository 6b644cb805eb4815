package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showdeskhq/showdesk/internal/model"
)

const (
	day1 = "2026-02-06"
	day2 = "2026-02-07"
	day3 = "2026-02-08"
)

func testClock(t *testing.T) *Clock {
	t.Helper()
	clk, err := NewClock("America/Los_Angeles", []string{day1, day2, day3})
	require.NoError(t, err)
	return clk
}

func at(t *testing.T, clk *Clock, day, hhmm string) time.Time {
	t.Helper()
	ts, err := clk.At(day, hhmm)
	require.NoError(t, err)
	return ts
}

func slot(id, player, day, start, end string, station model.StationID) model.ScheduleSlot {
	return model.ScheduleSlot{
		ID: id, PlayerID: player, Date: day,
		StartTime: start, EndTime: end,
		Station: station, Status: model.SlotScheduled,
	}
}

func TestMinuteOf(t *testing.T) {
	m, ok := MinuteOf("09:05")
	assert.True(t, ok)
	assert.Equal(t, 545, m)

	_, ok = MinuteOf("00:00")
	assert.False(t, ok, "00:00 means unconfirmed, not midnight")

	_, ok = MinuteOf("9:05")
	assert.False(t, ok, "times must be zero-padded")

	_, ok = MinuteOf("")
	assert.False(t, ok)
}

func TestCurrentSlot(t *testing.T) {
	clk := testClock(t)
	slots := []model.ScheduleSlot{
		slot("s1", "p1", day1, "10:00", "11:00", model.StationSigning),
		slot("s2", "p2", day1, "11:00", "12:00", model.StationSigning),
	}

	t.Run("inside window", func(t *testing.T) {
		got := CurrentSlot(slots, model.StationSigning, clk, at(t, clk, day1, "10:30"))
		require.NotNil(t, got)
		assert.Equal(t, "s1", got.ID)
	})

	t.Run("boundary is half-open", func(t *testing.T) {
		got := CurrentSlot(slots, model.StationSigning, clk, at(t, clk, day1, "11:00"))
		require.NotNil(t, got)
		assert.Equal(t, "s2", got.ID, "end time is exclusive, next start inclusive")
	})

	t.Run("cancelled slots never match", func(t *testing.T) {
		cancelled := slots
		cancelled[0].Status = model.SlotCancelled
		got := CurrentSlot(cancelled, model.StationSigning, clk, at(t, clk, day1, "10:30"))
		assert.Nil(t, got)
		cancelled[0].Status = model.SlotScheduled
	})

	t.Run("wrong day", func(t *testing.T) {
		got := CurrentSlot(slots, model.StationSigning, clk, at(t, clk, day2, "10:30"))
		assert.Nil(t, got)
	})

	t.Run("overlap resolves to insertion order", func(t *testing.T) {
		overlapping := []model.ScheduleSlot{
			slot("a", "p1", day1, "10:00", "11:00", model.StationSigning),
			slot("b", "p2", day1, "10:00", "11:00", model.StationSigning),
		}
		got := CurrentSlot(overlapping, model.StationSigning, clk, at(t, clk, day1, "10:15"))
		require.NotNil(t, got)
		assert.Equal(t, "a", got.ID, "first by insertion order, never an error")
	})
}

func TestNextSlot(t *testing.T) {
	clk := testClock(t)
	slots := []model.ScheduleSlot{
		slot("s2", "p2", day2, "09:00", "10:00", model.StationLEDWall),
		slot("s1", "p1", day1, "14:00", "15:00", model.StationLEDWall),
	}

	got := NextSlot(slots, model.StationLEDWall, clk, at(t, clk, day1, "12:00"))
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.ID, "ordered by (date, start), not input order")

	got = NextSlot(slots, model.StationLEDWall, clk, at(t, clk, day1, "14:00"))
	require.NotNil(t, got)
	assert.Equal(t, "s2", got.ID, "strictly after now")

	got = NextSlot(slots, model.StationLEDWall, clk, at(t, clk, day2, "10:00"))
	assert.Nil(t, got)
}

// Two back-to-back slots on day1, nothing on day2.
func TestStatusScenario(t *testing.T) {
	clk := testClock(t)
	slots := []model.ScheduleSlot{
		slot("s1", "P1", day1, "08:00", "09:00", model.StationSigning),
		slot("s2", "P1", day1, "09:00", "10:00", model.StationLEDWall),
	}

	assert.Equal(t, StatusNow, Status(slots, "P1", clk, at(t, clk, day1, "08:30"), day1))
	assert.Equal(t, StatusNow, Status(slots, "P1", clk, at(t, clk, day1, "09:30"), day1))
	assert.Equal(t, StatusComplete, Status(slots, "P1", clk, at(t, clk, day1, "10:30"), day1))
	assert.Equal(t, StatusOffsite, Status(slots, "P1", clk, at(t, clk, day1, "10:30"), day2))
}

func TestStatusPriorityOrder(t *testing.T) {
	clk := testClock(t)

	t.Run("no slots at all is offsite", func(t *testing.T) {
		assert.Equal(t, StatusOffsite, Status(nil, "P1", clk, at(t, clk, day1, "10:00"), ""))
	})

	t.Run("only tbd slots", func(t *testing.T) {
		s := slot("s1", "P1", day1, "00:00", "00:00", model.StationSigning)
		s.Status = model.SlotTBD
		assert.Equal(t, StatusTBD, Status([]model.ScheduleSlot{s}, "P1", clk, at(t, clk, day1, "10:00"), ""))
	})

	t.Run("past day filter is complete", func(t *testing.T) {
		slots := []model.ScheduleSlot{slot("s1", "P1", day1, "10:00", "11:00", model.StationSigning)}
		assert.Equal(t, StatusComplete, Status(slots, "P1", clk, at(t, clk, day2, "09:00"), day1))
	})

	t.Run("ended today reads complete, not up next", func(t *testing.T) {
		// last slot ended but the player also has nothing later today:
		// complete must win over any upcoming inference
		slots := []model.ScheduleSlot{slot("s1", "P1", day1, "08:00", "09:00", model.StationSigning)}
		assert.Equal(t, StatusComplete, Status(slots, "P1", clk, at(t, clk, day1, "09:30"), day1))
	})

	t.Run("later today is up next", func(t *testing.T) {
		slots := []model.ScheduleSlot{slot("s1", "P1", day1, "15:00", "16:00", model.StationSigning)}
		assert.Equal(t, StatusUpNext, Status(slots, "P1", clk, at(t, clk, day1, "09:00"), day1))
	})

	t.Run("future day is not started", func(t *testing.T) {
		slots := []model.ScheduleSlot{slot("s1", "P1", day2, "15:00", "16:00", model.StationSigning)}
		assert.Equal(t, StatusNotStarted, Status(slots, "P1", clk, at(t, clk, day1, "09:00"), ""))
	})
}

// Status is total: every combination lands in one of the six states.
func TestStatusTotal(t *testing.T) {
	clk := testClock(t)
	valid := map[PlayerStatus]bool{
		StatusOffsite: true, StatusTBD: true, StatusNotStarted: true,
		StatusUpNext: true, StatusNow: true, StatusComplete: true,
	}

	statuses := []model.SlotStatus{model.SlotScheduled, model.SlotCancelled, model.SlotTBD}
	times := []string{"07:00", "08:30", "10:30", "23:59"}
	days := []string{"", day1, day2, day3}

	for _, st := range statuses {
		for _, now := range times {
			for _, filter := range days {
				s := slot("s1", "P1", day1, "08:00", "10:00", model.StationSigning)
				s.Status = st
				got := Status([]model.ScheduleSlot{s}, "P1", clk, at(t, clk, day2, now), filter)
				assert.True(t, valid[got], "got %q for status=%s now=%s filter=%s", got, st, now, filter)
			}
		}
	}
}

func TestDayAggregates(t *testing.T) {
	clk := testClock(t)
	slots := []model.ScheduleSlot{
		slot("s1", "p1", day1, "08:00", "09:00", model.StationSigning),
		slot("s2", "p1", day1, "14:00", "15:00", model.StationLEDWall),
		slot("s3", "p2", day1, "08:00", "09:00", model.StationPackRip),
		slot("s4", "p3", day2, "10:00", "11:00", model.StationSigning),
	}

	assert.ElementsMatch(t, []string{"p1", "p2"}, PlayersForDay(slots, day1))

	// at 09:30 p2 has fully wrapped, p1 still has an afternoon slot
	assert.Equal(t, 1, CompletedPlayerCount(slots, day1, clk, at(t, clk, day1, "09:30")))
	// at 15:00 both have wrapped
	assert.Equal(t, 2, CompletedPlayerCount(slots, day1, clk, at(t, clk, day1, "15:00")))
	// viewed from day2, all of day1 is wrapped
	assert.Equal(t, 2, CompletedPlayerCount(slots, day1, clk, at(t, clk, day2, "08:00")))
}

func TestVenueStatus(t *testing.T) {
	clk := testClock(t)
	assert.Equal(t, EventPreShow, VenueStatus(clk, at(t, clk, day1, "09:00")))
	assert.Equal(t, EventActive, VenueStatus(clk, at(t, clk, day1, "10:00")))
	assert.Equal(t, EventLunch, VenueStatus(clk, at(t, clk, day1, "12:30")))
	assert.Equal(t, EventWrapped, VenueStatus(clk, at(t, clk, day1, "18:00")))
	assert.Equal(t, EventOffDay, VenueStatus(clk, at(t, clk, "2026-02-09", "12:00")))
}

func TestPlayerArrivalsForDay(t *testing.T) {
	notes := "late arrival"
	slots := []model.ScheduleSlot{
		slot("s1", "p2", day1, "11:00", "12:00", model.StationSigning),
		slot("s2", "p1", day1, "09:00", "10:00", model.StationSigning),
		slot("s3", "p1", day1, "13:00", "14:00", model.StationPRCall),
	}
	slots[2].CallInfo = &model.CallInfo{Outlet: "Radio Row"}
	slots[0].Notes = &notes

	arrivals := PlayerArrivalsForDay(slots, day1)
	require.Len(t, arrivals, 2)

	assert.Equal(t, "p1", arrivals[0].PlayerID)
	assert.Equal(t, "09:00", arrivals[0].ArrivalTime)
	assert.Equal(t, "14:00", arrivals[0].DepartureTime)
	assert.False(t, arrivals[0].SigningOnly)
	require.NotNil(t, arrivals[0].CallInfo)
	assert.Equal(t, "Radio Row", arrivals[0].CallInfo.Outlet)

	assert.Equal(t, "p2", arrivals[1].PlayerID)
	assert.True(t, arrivals[1].SigningOnly)
	require.NotNil(t, arrivals[1].Notes)
}
