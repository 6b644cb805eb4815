package gateway

import (
	"github.com/rs/zerolog/log"

	"github.com/showdeskhq/showdesk/internal/model"
)

const deliverableColumns = `id, title, description, type, status, player_id, due_day,
	completed_at, delivered_at, notes, assignee, priority`

func (g *pgGateway) FetchDeliverables() ([]model.Deliverable, bool) {
	if !g.ready() {
		return nil, false
	}
	var out []model.Deliverable
	const q = `
	SELECT ` + deliverableColumns + `
	  FROM deliverables
	 ORDER BY due_day, id;`
	if err := g.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("FetchDeliverables failed")
		return nil, false
	}
	return out, true
}

func (g *pgGateway) UpsertDeliverable(d model.Deliverable) bool {
	if !g.ready() {
		return false
	}
	return g.execDeliverableUpsert(d)
}

func (g *pgGateway) UpsertDeliverables(ds []model.Deliverable) bool {
	if !g.ready() {
		return false
	}
	for _, d := range ds {
		if !g.execDeliverableUpsert(d) {
			return false
		}
	}
	return true
}

func (g *pgGateway) execDeliverableUpsert(d model.Deliverable) bool {
	const q = `
	INSERT INTO deliverables (` + deliverableColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	ON CONFLICT (id) DO UPDATE SET
	  title = EXCLUDED.title,
	  description = EXCLUDED.description,
	  type = EXCLUDED.type,
	  status = EXCLUDED.status,
	  player_id = EXCLUDED.player_id,
	  due_day = EXCLUDED.due_day,
	  completed_at = EXCLUDED.completed_at,
	  delivered_at = EXCLUDED.delivered_at,
	  notes = EXCLUDED.notes,
	  assignee = EXCLUDED.assignee,
	  priority = EXCLUDED.priority;`
	if _, err := g.db.Exec(q,
		d.ID, d.Title, d.Description, d.Type, d.Status, d.PlayerID, d.DueDay,
		d.CompletedAt, d.DeliveredAt, d.Notes, d.Assignee, d.Priority,
	); err != nil {
		log.Error().Err(err).Str("deliverable_id", d.ID).Msg("UpsertDeliverable failed")
		return false
	}
	return true
}

func (g *pgGateway) DeleteDeliverable(id string) bool {
	if !g.ready() {
		return false
	}
	if _, err := g.db.Exec(`DELETE FROM deliverables WHERE id = $1;`, id); err != nil {
		log.Error().Err(err).Str("deliverable_id", id).Msg("DeleteDeliverable failed")
		return false
	}
	return true
}
