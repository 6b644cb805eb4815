package gateway

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/showdeskhq/showdesk/internal/model"
)

type clipRow struct {
	model.ClipMarker
	TagsRaw pq.StringArray `db:"tags"`
}

const clipColumns = `id, timestamp, timecode, timecode_in, timecode_out, player_id, station_id,
	category, media_type, priority, flagged, tags, rating, notes, camera, crew_member,
	created_at, updated_at`

func (g *pgGateway) FetchClips() ([]model.ClipMarker, bool) {
	if !g.ready() {
		return nil, false
	}
	var rows []clipRow
	const q = `
	SELECT ` + clipColumns + `
	  FROM clip_markers
	 ORDER BY timestamp DESC;`
	if err := g.db.Select(&rows, q); err != nil {
		log.Error().Err(err).Msg("FetchClips failed")
		return nil, false
	}
	out := make([]model.ClipMarker, 0, len(rows))
	for _, r := range rows {
		clip := r.ClipMarker
		clip.Tags = []string(r.TagsRaw)
		out = append(out, clip)
	}
	return out, true
}

func (g *pgGateway) InsertClip(clip model.ClipMarker) bool {
	if !g.ready() {
		return false
	}
	// idempotent: the outbox may replay an insert that already landed
	const q = `
	INSERT INTO clip_markers (` + clipColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	ON CONFLICT (id) DO NOTHING;`
	if _, err := g.db.Exec(q,
		clip.ID, clip.Timestamp, clip.Timecode, clip.TimecodeIn, clip.TimecodeOut,
		clip.PlayerID, clip.StationID, clip.Category, clip.MediaType, clip.Priority,
		clip.Flagged, pq.StringArray(clip.Tags), clip.Rating, clip.Notes,
		clip.Camera, clip.CrewMember, clip.CreatedAt, clip.UpdatedAt,
	); err != nil {
		log.Error().Err(err).Str("clip_id", clip.ID).Msg("InsertClip failed")
		return false
	}
	return true
}

// clipPatchClause builds the dynamic SET clause for a partial clip update.
func clipPatchClause(patch model.ClipPatch) (string, []interface{}) {
	sets := []string{"updated_at = now()"}
	var args []interface{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Timecode != nil {
		add("timecode", *patch.Timecode)
	}
	if patch.TimecodeIn != nil {
		add("timecode_in", *patch.TimecodeIn)
	}
	if patch.TimecodeOut != nil {
		add("timecode_out", *patch.TimecodeOut)
	}
	if patch.PlayerID != nil {
		add("player_id", *patch.PlayerID)
	}
	if patch.StationID != nil {
		add("station_id", *patch.StationID)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.Flagged != nil {
		add("flagged", *patch.Flagged)
	}
	if patch.Tags != nil {
		add("tags", pq.StringArray(*patch.Tags))
	}
	if patch.Rating != nil {
		add("rating", *patch.Rating)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	return strings.Join(sets, ", "), args
}

func (g *pgGateway) UpdateClip(id string, patch model.ClipPatch) bool {
	if !g.ready() {
		return false
	}
	clause, args := clipPatchClause(patch)
	args = append(args, id)
	q := fmt.Sprintf(`UPDATE clip_markers SET %s WHERE id = $%d;`, clause, len(args))
	if _, err := g.db.Exec(q, args...); err != nil {
		log.Error().Err(err).Str("clip_id", id).Msg("UpdateClip failed")
		return false
	}
	return true
}

func (g *pgGateway) DeleteClip(id string) bool {
	if !g.ready() {
		return false
	}
	if _, err := g.db.Exec(`DELETE FROM clip_markers WHERE id = $1;`, id); err != nil {
		log.Error().Err(err).Str("clip_id", id).Msg("DeleteClip failed")
		return false
	}
	return true
}

func (g *pgGateway) DeleteClips(ids []string) bool {
	if !g.ready() {
		return false
	}
	if _, err := g.db.Exec(`DELETE FROM clip_markers WHERE id = ANY($1);`, pq.StringArray(ids)); err != nil {
		log.Error().Err(err).Int("count", len(ids)).Msg("DeleteClips failed")
		return false
	}
	return true
}
