package model

import "time"

type NoteStatus string

const (
	NoteOpen       NoteStatus = "open"
	NoteInProgress NoteStatus = "in_progress"
	NoteResolved   NoteStatus = "resolved"
)

type NotePriority string

const (
	NoteLow    NotePriority = "low"
	NoteMedium NotePriority = "medium"
	NoteHigh   NotePriority = "high"
)

// Note is an issue/log entry. Resolution is one-way unless the status is
// explicitly set back by a reopen.
type Note struct {
	ID         string       `db:"id"          json:"id"`
	Content    string       `db:"content"     json:"content"`
	Category   string       `db:"category"    json:"category"`
	Priority   NotePriority `db:"priority"    json:"priority"`
	Status     NoteStatus   `db:"status"      json:"status"`
	StationID  *string      `db:"station_id"  json:"station_id,omitempty"`
	PlayerID   *string      `db:"player_id"   json:"player_id,omitempty"`
	CreatedAt  time.Time    `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"  json:"updated_at"`
	ResolvedAt *time.Time   `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedBy  *string      `db:"created_by"  json:"created_by,omitempty"`
}

// NotePatch is a partial update for a note.
type NotePatch struct {
	Content   *string       `json:"content,omitempty"`
	Category  *string       `json:"category,omitempty"`
	Priority  *NotePriority `json:"priority,omitempty"`
	Status    *NoteStatus   `json:"status,omitempty"`
	StationID *string       `json:"station_id,omitempty"`
	PlayerID  *string       `json:"player_id,omitempty"`
}

func (n *Note) Apply(p NotePatch, now time.Time) {
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Category != nil {
		n.Category = *p.Category
	}
	if p.Priority != nil {
		n.Priority = *p.Priority
	}
	if p.Status != nil {
		n.Status = *p.Status
		if *p.Status != NoteResolved {
			n.ResolvedAt = nil
		}
	}
	if p.StationID != nil {
		n.StationID = p.StationID
	}
	if p.PlayerID != nil {
		n.PlayerID = p.PlayerID
	}
	n.UpdatedAt = now
}
