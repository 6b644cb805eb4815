// Package notify polls the temporal engine and fires at-most-once alerts for
// threshold crossings ("5 minutes before the next rotation"). A missed tick
// skips its window with no catch-up: this is a foreground production tool,
// not a durable job queue.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/schedule"
)

// Threshold is one lead-time window before a slot start.
type Threshold struct {
	Name string
	Lead time.Duration
}

var defaultThresholds = []Threshold{
	{Name: "5min", Lead: 5 * time.Minute},
	{Name: "1min", Lead: 1 * time.Minute},
}

// callLead is the extra early warning for media-call slots.
const callLead = 10 * time.Minute

// Scheduler is the cooperative polling loop. Clock and tick source are
// injectable so tests can simulate time.
type Scheduler struct {
	Slots    func() []model.ScheduleSlot
	Enabled  func() bool
	Clock    *schedule.Clock
	Alerter  Alerter
	Fired    FiredSet
	Stations []model.StationID

	Thresholds []Threshold
	Interval   time.Duration
	Now        func() time.Time

	lastDay string
}

// NewScheduler wires a scheduler with the default thresholds and stations.
func NewScheduler(slots func() []model.ScheduleSlot, enabled func() bool, clk *schedule.Clock, alerter Alerter, fired FiredSet, interval time.Duration) *Scheduler {
	return &Scheduler{
		Slots:      slots,
		Enabled:    enabled,
		Clock:      clk,
		Alerter:    alerter,
		Fired:      fired,
		Stations:   model.Stations,
		Thresholds: defaultThresholds,
		Interval:   interval,
		Now:        time.Now,
	}
}

// Run ticks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Tick(s.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(s.Now())
		}
	}
}

// Tick runs one poll at the given instant.
func (s *Scheduler) Tick(now time.Time) {
	today := s.Clock.Day(now)
	if s.lastDay != "" && s.lastDay != today {
		// fired windows from previous days may re-trigger on later event days
		s.Fired.Reset()
	}
	s.lastDay = today

	if s.Enabled != nil && !s.Enabled() {
		return
	}
	if !s.Clock.IsEventDay(today) {
		return
	}

	slots := s.Slots()
	for _, station := range s.Stations {
		next := schedule.NextSlot(slots, station, s.Clock, now)
		if next == nil {
			continue
		}
		until, err := s.Clock.Until(next.Date, next.StartTime, now)
		if err != nil {
			log.Error().Err(err).Str("slot_id", next.ID).Msg("unparseable slot start")
			continue
		}
		for _, th := range s.Thresholds {
			if until <= 0 || until > th.Lead {
				continue
			}
			// the occurrence key must include the date: recurring templates
			// reuse slot ids across event days
			key := fmt.Sprintf("%s:%s:%s", th.Name, next.ID, next.Date)
			if !s.Fired.MarkOnce(key) {
				continue
			}
			s.Alerter.Alert(
				fmt.Sprintf("%s: next rotation in %s", station, th.Name),
				fmt.Sprintf("player %s starts at %s", next.PlayerID, next.StartTime),
				key,
			)
		}
	}

	s.tickCalls(slots, today, now)
}

// tickCalls gives media-call slots an extra 10-minute warning carrying the
// outlet and dial-in details.
func (s *Scheduler) tickCalls(slots []model.ScheduleSlot, today string, now time.Time) {
	for _, call := range schedule.CallSlotsForDay(slots, today) {
		until, err := s.Clock.Until(call.Date, call.StartTime, now)
		if err != nil {
			continue
		}
		if until <= 0 || until > callLead {
			continue
		}
		key := fmt.Sprintf("call10min:%s:%s", call.ID, call.Date)
		if !s.Fired.MarkOnce(key) {
			continue
		}
		body := fmt.Sprintf("player %s -> %s at %s", call.PlayerID, call.CallInfo.Outlet, call.StartTime)
		if call.CallInfo.CallIn != "" {
			body += " (" + call.CallInfo.CallIn + ")"
		}
		s.Alerter.Alert("media call in 10 minutes", body, key)
	}
}
