package schedule

import (
	"sort"
	"time"

	"github.com/showdeskhq/showdesk/internal/model"
)

// EventStatus is the coarse whole-venue state shown in the header.
type EventStatus string

const (
	EventOffDay  EventStatus = "off_day"
	EventPreShow EventStatus = "pre_show"
	EventActive  EventStatus = "active"
	EventLunch   EventStatus = "lunch"
	EventWrapped EventStatus = "wrapped"
)

// Venue hours, event-local minutes since midnight.
const (
	doorsOpenMinute  = 10 * 60
	doorsCloseMinute = 18 * 60
	lunchStartMinute = 12 * 60
	lunchEndMinute   = 13 * 60
)

// VenueStatus derives the coarse event state from the clock alone.
func VenueStatus(clk *Clock, now time.Time) EventStatus {
	if !clk.IsEventDay(clk.Day(now)) {
		return EventOffDay
	}
	minute := clk.Minutes(now)
	switch {
	case minute < doorsOpenMinute:
		return EventPreShow
	case minute >= doorsCloseMinute:
		return EventWrapped
	case minute >= lunchStartMinute && minute < lunchEndMinute:
		return EventLunch
	default:
		return EventActive
	}
}

// PlayerArrival summarises one player's appearance on one day: when they
// arrive, when they leave, and whether they are only signing.
type PlayerArrival struct {
	PlayerID      string           `json:"player_id"`
	Date          string           `json:"date"`
	ArrivalTime   string           `json:"arrival_time"`
	DepartureTime string           `json:"departure_time"`
	Status        model.SlotStatus `json:"status"`
	SigningOnly   bool             `json:"signing_only"`
	CallInfo      *model.CallInfo  `json:"call_info,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

// PlayerArrivalsForDay collapses each player's slots on a day into a single
// arrival row, ordered by arrival time.
func PlayerArrivalsForDay(slots []model.ScheduleSlot, day string) []PlayerArrival {
	byPlayer := make(map[string][]model.ScheduleSlot)
	var order []string
	for _, s := range slots {
		if s.Date != day || !s.Scheduled() {
			continue
		}
		if _, seen := byPlayer[s.PlayerID]; !seen {
			order = append(order, s.PlayerID)
		}
		byPlayer[s.PlayerID] = append(byPlayer[s.PlayerID], s)
	}

	out := make([]PlayerArrival, 0, len(order))
	for _, pid := range order {
		ps := byPlayer[pid]
		sortSlots(ps)

		arrival := PlayerArrival{
			PlayerID:    pid,
			Date:        day,
			ArrivalTime: ps[0].StartTime,
			Status:      model.SlotScheduled,
			SigningOnly: true,
		}
		for _, s := range ps {
			if s.EndTime > arrival.DepartureTime {
				arrival.DepartureTime = s.EndTime
			}
			if s.Station != model.StationSigning {
				arrival.SigningOnly = false
			}
			if s.CallInfo != nil && arrival.CallInfo == nil {
				arrival.CallInfo = s.CallInfo
			}
			if s.Notes != nil && arrival.Notes == nil {
				arrival.Notes = s.Notes
			}
			if s.Status == model.SlotTBD {
				arrival.Status = model.SlotTBD
			}
		}
		out = append(out, arrival)
	}

	sortArrivals(out)
	return out
}

func sortArrivals(arrivals []PlayerArrival) {
	// TBD rows sink to the end regardless of their placeholder time
	sortKey := func(a PlayerArrival) string {
		if a.Status == model.SlotTBD {
			return "99:99"
		}
		return a.ArrivalTime
	}
	sort.SliceStable(arrivals, func(i, j int) bool {
		return sortKey(arrivals[i]) < sortKey(arrivals[j])
	})
}

// ClipAnalytics are the aggregate clip counters for the dashboard.
type ClipAnalytics struct {
	ByCategory map[string]int `json:"by_category"`
	ByPriority map[string]int `json:"by_priority"`
	AvgRating  float64        `json:"avg_rating"`
	TotalToday int            `json:"total_today"`
	Flagged    int            `json:"flagged"`
}

// AnalyzeClips tallies the clip collection with "today" fixed to the event
// timezone.
func AnalyzeClips(clips []model.ClipMarker, clk *Clock, now time.Time) ClipAnalytics {
	out := ClipAnalytics{
		ByCategory: make(map[string]int),
		ByPriority: make(map[string]int),
	}
	today := clk.Day(now)
	ratingSum, ratingCount := 0, 0

	for _, c := range clips {
		out.ByCategory[string(c.Category)]++
		out.ByPriority[string(c.Priority)]++
		if c.Rating != nil {
			ratingSum += *c.Rating
			ratingCount++
		}
		if clk.Day(c.Timestamp) == today {
			out.TotalToday++
		}
		if c.Flagged {
			out.Flagged++
		}
	}
	if ratingCount > 0 {
		out.AvgRating = float64(ratingSum) / float64(ratingCount)
	}
	return out
}

// DeliverableProgress tallies deliverables by status.
func DeliverableProgress(ds []model.Deliverable) model.DeliverableProgress {
	var p model.DeliverableProgress
	for _, d := range ds {
		switch d.Status {
		case model.DeliverablePending:
			p.Pending++
		case model.DeliverableInProgress:
			p.InProgress++
		case model.DeliverableCompleted:
			p.Completed++
		case model.DeliverableDelivered:
			p.Delivered++
		}
	}
	return p
}
