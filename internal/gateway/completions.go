package gateway

import (
	"github.com/rs/zerolog/log"

	"github.com/showdeskhq/showdesk/internal/model"
)

func (g *pgGateway) FetchCompletions() ([]model.Completion, bool) {
	if !g.ready() {
		return nil, false
	}
	var out []model.Completion
	const q = `
	SELECT player_id, station_id, completed, completed_at, completed_by, notes
	  FROM player_station_completions;`
	if err := g.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("FetchCompletions failed")
		return nil, false
	}
	return out, true
}

func (g *pgGateway) UpsertCompletion(c model.Completion) bool {
	if !g.ready() {
		return false
	}
	const q = `
	INSERT INTO player_station_completions
	  (player_id, station_id, completed, completed_at, completed_by, notes)
	VALUES ($1,$2,$3,$4,$5,$6)
	ON CONFLICT (player_id, station_id) DO UPDATE SET
	  completed = EXCLUDED.completed,
	  completed_at = EXCLUDED.completed_at,
	  completed_by = EXCLUDED.completed_by,
	  notes = EXCLUDED.notes;`
	if _, err := g.db.Exec(q,
		c.PlayerID, c.StationID, c.Completed, c.CompletedAt, c.CompletedBy, c.Notes,
	); err != nil {
		log.Error().Err(err).
			Str("player_id", c.PlayerID).
			Str("station_id", c.StationID).
			Msg("UpsertCompletion failed")
		return false
	}
	return true
}

func (g *pgGateway) DeleteCompletion(playerID, stationID string) bool {
	if !g.ready() {
		return false
	}
	const q = `DELETE FROM player_station_completions WHERE player_id = $1 AND station_id = $2;`
	if _, err := g.db.Exec(q, playerID, stationID); err != nil {
		log.Error().Err(err).
			Str("player_id", playerID).
			Str("station_id", stationID).
			Msg("DeleteCompletion failed")
		return false
	}
	return true
}

func (g *pgGateway) ResetCompletions() bool {
	if !g.ready() {
		return false
	}
	if _, err := g.db.Exec(`DELETE FROM player_station_completions;`); err != nil {
		log.Error().Err(err).Msg("ResetCompletions failed")
		return false
	}
	return true
}
