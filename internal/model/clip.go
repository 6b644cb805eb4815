package model

import "time"

type ClipCategory string

const (
	ClipHighlight ClipCategory = "highlight"
	ClipInterview ClipCategory = "interview"
	ClipBRoll     ClipCategory = "b_roll"
	ClipReaction  ClipCategory = "reaction"
	ClipGeneral   ClipCategory = "general"
)

type ClipPriority string

const (
	PriorityUrgent ClipPriority = "urgent"
	PriorityHigh   ClipPriority = "high"
	PriorityNormal ClipPriority = "normal"
	PriorityLow    ClipPriority = "low"
)

// ClipMarker is a point-in-time annotation that helps post-production locate
// footage. Timestamp is the creation instant and the authoritative ordering key.
type ClipMarker struct {
	ID          string       `db:"id"           json:"id"`
	Timestamp   time.Time    `db:"timestamp"    json:"timestamp"`
	Timecode    *string      `db:"timecode"     json:"timecode,omitempty"`
	TimecodeIn  *string      `db:"timecode_in"  json:"timecode_in,omitempty"`
	TimecodeOut *string      `db:"timecode_out" json:"timecode_out,omitempty"`
	PlayerID    *string      `db:"player_id"    json:"player_id,omitempty"`
	StationID   *string      `db:"station_id"   json:"station_id,omitempty"`
	Category    ClipCategory `db:"category"     json:"category"`
	MediaType   string       `db:"media_type"   json:"media_type"`
	Priority    ClipPriority `db:"priority"     json:"priority"`
	Flagged     bool         `db:"flagged"      json:"flagged"`
	Tags        []string     `db:"-"            json:"tags"`
	Rating      *int         `db:"rating"       json:"rating,omitempty"`
	Notes       *string      `db:"notes"        json:"notes,omitempty"`
	Camera      *string      `db:"camera"       json:"camera,omitempty"`
	CrewMember  *string      `db:"crew_member"  json:"crew_member,omitempty"`
	CreatedAt   time.Time    `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"   json:"updated_at"`
}

// ClipPatch is a partial update applied to an existing marker. Nil fields are
// left untouched.
type ClipPatch struct {
	Timecode    *string       `json:"timecode,omitempty"`
	TimecodeIn  *string       `json:"timecode_in,omitempty"`
	TimecodeOut *string       `json:"timecode_out,omitempty"`
	PlayerID    *string       `json:"player_id,omitempty"`
	StationID   *string       `json:"station_id,omitempty"`
	Category    *ClipCategory `json:"category,omitempty"`
	Priority    *ClipPriority `json:"priority,omitempty"`
	Flagged     *bool         `json:"flagged,omitempty"`
	Tags        *[]string     `json:"tags,omitempty"`
	Rating      *int          `json:"rating,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
}

// Apply merges the patch into the marker and bumps UpdatedAt.
func (c *ClipMarker) Apply(p ClipPatch, now time.Time) {
	if p.Timecode != nil {
		c.Timecode = p.Timecode
	}
	if p.TimecodeIn != nil {
		c.TimecodeIn = p.TimecodeIn
	}
	if p.TimecodeOut != nil {
		c.TimecodeOut = p.TimecodeOut
	}
	if p.PlayerID != nil {
		c.PlayerID = p.PlayerID
	}
	if p.StationID != nil {
		c.StationID = p.StationID
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.Flagged != nil {
		c.Flagged = *p.Flagged
	}
	if p.Tags != nil {
		c.Tags = *p.Tags
	}
	if p.Rating != nil {
		c.Rating = p.Rating
	}
	if p.Notes != nil {
		c.Notes = p.Notes
	}
	c.UpdatedAt = now
}
