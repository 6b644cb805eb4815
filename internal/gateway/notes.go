package gateway

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/showdeskhq/showdesk/internal/model"
)

const noteColumns = `id, content, category, priority, status, station_id, player_id,
	created_at, updated_at, resolved_at, created_by`

func (g *pgGateway) FetchNotes() ([]model.Note, bool) {
	if !g.ready() {
		return nil, false
	}
	var out []model.Note
	const q = `
	SELECT ` + noteColumns + `
	  FROM notes
	 ORDER BY created_at DESC;`
	if err := g.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("FetchNotes failed")
		return nil, false
	}
	return out, true
}

func (g *pgGateway) InsertNote(note model.Note) bool {
	if !g.ready() {
		return false
	}
	// idempotent: the outbox may replay an insert that already landed
	const q = `
	INSERT INTO notes (` + noteColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	ON CONFLICT (id) DO NOTHING;`
	if _, err := g.db.Exec(q,
		note.ID, note.Content, note.Category, note.Priority, note.Status,
		note.StationID, note.PlayerID, note.CreatedAt, note.UpdatedAt,
		note.ResolvedAt, note.CreatedBy,
	); err != nil {
		log.Error().Err(err).Str("note_id", note.ID).Msg("InsertNote failed")
		return false
	}
	return true
}

func (g *pgGateway) UpdateNote(id string, patch model.NotePatch) bool {
	if !g.ready() {
		return false
	}
	sets := []string{"updated_at = now()"}
	var args []interface{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
		if *patch.Status == model.NoteResolved {
			sets = append(sets, "resolved_at = now()")
		} else {
			sets = append(sets, "resolved_at = NULL")
		}
	}
	if patch.StationID != nil {
		add("station_id", *patch.StationID)
	}
	if patch.PlayerID != nil {
		add("player_id", *patch.PlayerID)
	}
	args = append(args, id)
	q := fmt.Sprintf(`UPDATE notes SET %s WHERE id = $%d;`, strings.Join(sets, ", "), len(args))
	if _, err := g.db.Exec(q, args...); err != nil {
		log.Error().Err(err).Str("note_id", id).Msg("UpdateNote failed")
		return false
	}
	return true
}

func (g *pgGateway) DeleteNote(id string) bool {
	if !g.ready() {
		return false
	}
	if _, err := g.db.Exec(`DELETE FROM notes WHERE id = $1;`, id); err != nil {
		log.Error().Err(err).Str("note_id", id).Msg("DeleteNote failed")
		return false
	}
	return true
}

func (g *pgGateway) DeleteNotes(ids []string) bool {
	if !g.ready() {
		return false
	}
	if _, err := g.db.Exec(`DELETE FROM notes WHERE id = ANY($1);`, pq.StringArray(ids)); err != nil {
		log.Error().Err(err).Int("count", len(ids)).Msg("DeleteNotes failed")
		return false
	}
	return true
}
