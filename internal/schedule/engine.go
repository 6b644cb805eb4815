package schedule

import (
	"sort"
	"time"

	"github.com/showdeskhq/showdesk/internal/model"
)

// PlayerStatus is the derived per-player state shown on every roster view.
type PlayerStatus string

const (
	StatusOffsite    PlayerStatus = "offsite"
	StatusTBD        PlayerStatus = "tbd"
	StatusNotStarted PlayerStatus = "not_started"
	StatusUpNext     PlayerStatus = "up_next"
	StatusNow        PlayerStatus = "now"
	StatusComplete   PlayerStatus = "complete"
)

// before orders slots by (date, start time). Dates are ISO strings, so the
// string comparison is chronological.
func before(a, b model.ScheduleSlot) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	am, _ := MinuteOf(a.StartTime)
	bm, _ := MinuteOf(b.StartTime)
	return am < bm
}

func sortSlots(slots []model.ScheduleSlot) {
	sort.SliceStable(slots, func(i, j int) bool { return before(slots[i], slots[j]) })
}

// CurrentSlot returns the slot in progress at a station right now, or nil.
// Only confirmed (scheduled) slots qualify. When bad input contains
// overlapping slots, the first by insertion order wins.
func CurrentSlot(slots []model.ScheduleSlot, station model.StationID, clk *Clock, now time.Time) *model.ScheduleSlot {
	today := clk.Day(now)
	minute := clk.Minutes(now)

	for i := range slots {
		s := &slots[i]
		if s.Station != station || s.Date != today || s.Status != model.SlotScheduled {
			continue
		}
		start, okS := MinuteOf(s.StartTime)
		end, okE := MinuteOf(s.EndTime)
		if !okS || !okE {
			continue
		}
		if start <= minute && minute < end {
			return s
		}
	}
	return nil
}

// NextSlot returns the earliest confirmed slot at a station strictly after
// now, ordered by (date, start time), or nil when nothing remains.
func NextSlot(slots []model.ScheduleSlot, station model.StationID, clk *Clock, now time.Time) *model.ScheduleSlot {
	today := clk.Day(now)
	minute := clk.Minutes(now)

	var upcoming []model.ScheduleSlot
	for _, s := range slots {
		if s.Station != station || s.Status != model.SlotScheduled {
			continue
		}
		start, ok := MinuteOf(s.StartTime)
		if !ok {
			continue
		}
		if s.Date > today || (s.Date == today && start > minute) {
			upcoming = append(upcoming, s)
		}
	}
	if len(upcoming) == 0 {
		return nil
	}
	sortSlots(upcoming)
	return &upcoming[0]
}

// PlayerSlots filters a player's non-cancelled slots, sorted chronologically.
// With dayFilter == "" all days are included.
func PlayerSlots(slots []model.ScheduleSlot, playerID, dayFilter string) []model.ScheduleSlot {
	var out []model.ScheduleSlot
	for _, s := range slots {
		if s.PlayerID != playerID || !s.Scheduled() {
			continue
		}
		if dayFilter != "" && s.Date != dayFilter {
			continue
		}
		out = append(out, s)
	}
	sortSlots(out)
	return out
}

// CurrentPlayerSlot returns the slot the player is in right now, or nil.
// TBD-status slots never match.
func CurrentPlayerSlot(slots []model.ScheduleSlot, playerID string, clk *Clock, now time.Time, dayFilter string) *model.ScheduleSlot {
	today := clk.Day(now)
	if dayFilter != "" && dayFilter != today {
		return nil
	}
	minute := clk.Minutes(now)
	for _, s := range PlayerSlots(slots, playerID, dayFilter) {
		if s.Status == model.SlotTBD || s.Date != today {
			continue
		}
		start, okS := MinuteOf(s.StartTime)
		end, okE := MinuteOf(s.EndTime)
		if !okS || !okE {
			continue
		}
		if start <= minute && minute < end {
			slot := s
			return &slot
		}
	}
	return nil
}

// NextPlayerSlot returns the player's earliest confirmed slot strictly after
// now, falling back to their first slot when everything has passed.
func NextPlayerSlot(slots []model.ScheduleSlot, playerID string, clk *Clock, now time.Time, dayFilter string) *model.ScheduleSlot {
	all := PlayerSlots(slots, playerID, dayFilter)
	if len(all) == 0 {
		return nil
	}
	today := clk.Day(now)
	minute := clk.Minutes(now)

	for _, s := range all {
		if s.Status == model.SlotTBD {
			continue
		}
		start, ok := MinuteOf(s.StartTime)
		if !ok {
			continue
		}
		if s.Date > today || (s.Date == today && start > minute) {
			slot := s
			return &slot
		}
	}
	first := all[0]
	return &first
}

// Status derives the player's six-state status. The checks run in priority
// order; in particular "complete" must be decided before "up next" so a
// player whose last slot of the day just ended does not read as upcoming.
func Status(slots []model.ScheduleSlot, playerID string, clk *Clock, now time.Time, dayFilter string) PlayerStatus {
	all := PlayerSlots(slots, playerID, "")
	if len(all) == 0 {
		return StatusOffsite
	}

	filtered := all
	if dayFilter != "" {
		filtered = PlayerSlots(slots, playerID, dayFilter)
		if len(filtered) == 0 {
			return StatusOffsite
		}
	}

	confirmed := filtered[:0:0]
	for _, s := range filtered {
		if s.Status != model.SlotTBD {
			confirmed = append(confirmed, s)
		}
	}
	if len(confirmed) == 0 {
		return StatusTBD
	}

	today := clk.Day(now)
	minute := clk.Minutes(now)

	if dayFilter != "" && dayFilter < today {
		return StatusComplete
	}

	if CurrentPlayerSlot(slots, playerID, clk, now, dayFilter) != nil {
		return StatusNow
	}

	last := confirmed[len(confirmed)-1]
	lastEnd, ok := MinuteOf(last.EndTime)
	if last.Date < today || (ok && last.Date == today && lastEnd <= minute) {
		return StatusComplete
	}

	next := NextPlayerSlot(slots, playerID, clk, now, dayFilter)
	if next == nil {
		return StatusNotStarted
	}
	if next.Date == today {
		return StatusUpNext
	}
	return StatusNotStarted
}

// PlayersForDay returns the distinct players with a confirmed slot on a day,
// in first-appearance order.
func PlayersForDay(slots []model.ScheduleSlot, day string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range slots {
		if s.Date != day || s.Status != model.SlotScheduled {
			continue
		}
		if !seen[s.PlayerID] {
			seen[s.PlayerID] = true
			out = append(out, s.PlayerID)
		}
	}
	return out
}

// CompletedPlayerCount counts players whose every confirmed slot on the day
// has fully ended.
func CompletedPlayerCount(slots []model.ScheduleSlot, day string, clk *Clock, now time.Time) int {
	minute := clk.Minutes(now)
	if day < clk.Day(now) {
		minute = 24 * 60
	} else if day > clk.Day(now) {
		minute = -1
	}

	byPlayer := make(map[string][]model.ScheduleSlot)
	for _, s := range slots {
		if s.Date == day && s.Status == model.SlotScheduled {
			byPlayer[s.PlayerID] = append(byPlayer[s.PlayerID], s)
		}
	}

	completed := 0
	for _, ps := range byPlayer {
		done := true
		for _, s := range ps {
			end, ok := MinuteOf(s.EndTime)
			if !ok || end > minute {
				done = false
				break
			}
		}
		if done {
			completed++
		}
	}
	return completed
}

// TBDSlots returns every slot still waiting on a confirmed time.
func TBDSlots(slots []model.ScheduleSlot) []model.ScheduleSlot {
	var out []model.ScheduleSlot
	for _, s := range slots {
		if s.Status == model.SlotTBD {
			out = append(out, s)
		}
	}
	return out
}

// CallSlotsForDay returns the day's confirmed media-call slots carrying call
// info, in start order.
func CallSlotsForDay(slots []model.ScheduleSlot, day string) []model.ScheduleSlot {
	var out []model.ScheduleSlot
	for _, s := range slots {
		if s.Date == day && s.Station == model.StationPRCall &&
			s.Status == model.SlotScheduled && s.CallInfo != nil {
			out = append(out, s)
		}
	}
	sortSlots(out)
	return out
}
