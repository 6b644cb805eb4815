package model

import "time"

// Completion records that one player finished one checklist station. The
// (player_id, station_id) pair is the reconciliation key.
type Completion struct {
	PlayerID    string     `db:"player_id"    json:"player_id"`
	StationID   string     `db:"station_id"   json:"station_id"`
	Completed   bool       `db:"completed"    json:"completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CompletedBy *string    `db:"completed_by" json:"completed_by,omitempty"`
	Notes       *string    `db:"notes"        json:"notes,omitempty"`
}
