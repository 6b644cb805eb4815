package model

// StationID identifies one of the fixed stations players rotate through.
type StationID string

const (
	StationSigning StationID = "signing"
	StationLEDWall StationID = "led_wall"
	StationPackRip StationID = "pack_rip"
	StationPRCall  StationID = "pr_call"
)

// Stations lists every station in rotation order.
var Stations = []StationID{StationSigning, StationLEDWall, StationPackRip, StationPRCall}

type SlotStatus string

const (
	SlotScheduled SlotStatus = "scheduled"
	SlotCancelled SlotStatus = "cancelled"
	SlotTBD       SlotStatus = "tbd"
)

// CallInfo carries the outlet/contact details attached to media-call slots.
type CallInfo struct {
	Outlet  string `json:"outlet"`
	Contact string `json:"contact,omitempty"`
	CallIn  string `json:"call_in,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// ScheduleSlot is one appearance of a player at a station in a time window.
// StartTime/EndTime are zero-padded 24-hour "HH:MM" strings in the event
// timezone; StartTime < EndTime always holds for confirmed slots.
type ScheduleSlot struct {
	ID        string     `db:"id"          json:"id"`
	PlayerID  string     `db:"player_id"   json:"player_id"`
	Date      string     `db:"date"        json:"date"`
	StartTime string     `db:"start_time"  json:"start_time"`
	EndTime   string     `db:"end_time"    json:"end_time"`
	Station   StationID  `db:"station"     json:"station"`
	Status    SlotStatus `db:"status"      json:"status"`
	Notes     *string    `db:"notes"       json:"notes,omitempty"`
	CallInfo  *CallInfo  `db:"-"           json:"call_info,omitempty"`
}

// Scheduled reports whether the slot participates in derived scheduling
// queries (cancelled slots are retained for audit but excluded everywhere).
func (s ScheduleSlot) Scheduled() bool {
	return s.Status != SlotCancelled
}
