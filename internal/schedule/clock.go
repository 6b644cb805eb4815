// Package schedule derives time-relative state from the slot collection:
// what is happening now, who is up next, who has wrapped. Everything here is
// a pure function of (slots, now); all comparisons run in the event's fixed
// timezone, never the host default.
package schedule

import (
	"fmt"
	"time"
)

// Clock pins "now" to the event timezone and knows the event days.
type Clock struct {
	loc   *time.Location
	dates []string
}

// NewClock loads the event timezone. dates are the event days in ascending
// "YYYY-MM-DD" order.
func NewClock(timezone string, dates []string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid event timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc, dates: dates}, nil
}

// Day formats t as the event-local calendar day.
func (c *Clock) Day(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02")
}

// Minutes returns event-local minutes since midnight.
func (c *Clock) Minutes(t time.Time) int {
	lt := t.In(c.loc)
	return lt.Hour()*60 + lt.Minute()
}

// IsEventDay reports whether day is one of the configured event days.
func (c *Clock) IsEventDay(day string) bool {
	for _, d := range c.dates {
		if d == day {
			return true
		}
	}
	return false
}

// Dates returns the configured event days.
func (c *Clock) Dates() []string { return c.dates }

// DayNumber returns the 1-based event day index for a date, or 0 when the
// date is not an event day.
func (c *Clock) DayNumber(day string) int {
	for i, d := range c.dates {
		if d == day {
			return i + 1
		}
	}
	return 0
}

// At builds the event-local instant for a (day, HH:MM) pair.
func (c *Clock) At(day, hhmm string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", day+" "+hhmm, c.loc)
}

// Until returns the duration from now to the given (day, HH:MM) wall-clock
// instant; negative when it has already passed.
func (c *Clock) Until(day, hhmm string, now time.Time) (time.Duration, error) {
	target, err := c.At(day, hhmm)
	if err != nil {
		return 0, err
	}
	return target.Sub(now), nil
}

// MinuteOf parses a zero-padded 24-hour "HH:MM" string into minutes since
// midnight. "00:00" and unparseable strings report ok=false: they mean an
// unconfirmed time, not midnight.
func MinuteOf(hhmm string) (m int, ok bool) {
	if len(hhmm) != 5 || hhmm[2] != ':' || hhmm == "00:00" {
		return 0, false
	}
	var h, min int
	if _, err := fmt.Sscanf(hhmm, "%02d:%02d", &h, &min); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || min < 0 || min > 59 {
		return 0, false
	}
	return h*60 + min, true
}
