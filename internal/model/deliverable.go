package model

import "time"

type DeliverableStatus string

const (
	DeliverablePending    DeliverableStatus = "pending"
	DeliverableInProgress DeliverableStatus = "in_progress"
	DeliverableCompleted  DeliverableStatus = "completed"
	DeliverableDelivered  DeliverableStatus = "delivered"
)

// Deliverable is a tracked production asset due on a given event day.
type Deliverable struct {
	ID          string            `db:"id"           json:"id"`
	Title       string            `db:"title"        json:"title"`
	Description *string           `db:"description"  json:"description,omitempty"`
	Type        string            `db:"type"         json:"type"`
	Status      DeliverableStatus `db:"status"       json:"status"`
	PlayerID    *string           `db:"player_id"    json:"player_id,omitempty"`
	DueDay      string            `db:"due_day"      json:"due_day"`
	CompletedAt *time.Time        `db:"completed_at" json:"completed_at,omitempty"`
	DeliveredAt *time.Time        `db:"delivered_at" json:"delivered_at,omitempty"`
	Notes       *string           `db:"notes"        json:"notes,omitempty"`
	Assignee    *string           `db:"assignee"     json:"assignee,omitempty"`
	Priority    *string           `db:"priority"     json:"priority,omitempty"`
}

// SetStatus advances the deliverable and stamps completion/delivery times.
func (d *Deliverable) SetStatus(status DeliverableStatus, now time.Time) {
	d.Status = status
	if status == DeliverableCompleted || status == DeliverableDelivered {
		if d.CompletedAt == nil {
			t := now
			d.CompletedAt = &t
		}
	}
	if status == DeliverableDelivered {
		t := now
		d.DeliveredAt = &t
	}
}

// DeliverableProgress is the per-status tally shown on dashboards.
type DeliverableProgress struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Delivered  int `json:"delivered"`
}
