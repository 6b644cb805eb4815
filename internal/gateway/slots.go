package gateway

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/showdeskhq/showdesk/internal/model"
)

type slotRow struct {
	model.ScheduleSlot
	CallInfoRaw []byte `db:"call_info"`
}

const slotColumns = `id, player_id, date, start_time, end_time, station, status, notes, call_info`

func (g *pgGateway) FetchScheduleSlots() ([]model.ScheduleSlot, bool) {
	if !g.ready() {
		return nil, false
	}
	var rows []slotRow
	const q = `
	SELECT ` + slotColumns + `
	  FROM schedule_slots
	 ORDER BY date, start_time;`
	if err := g.db.Select(&rows, q); err != nil {
		log.Error().Err(err).Msg("FetchScheduleSlots failed")
		return nil, false
	}
	out := make([]model.ScheduleSlot, 0, len(rows))
	for _, r := range rows {
		slot := r.ScheduleSlot
		if len(r.CallInfoRaw) > 0 {
			var info model.CallInfo
			if err := json.Unmarshal(r.CallInfoRaw, &info); err != nil {
				// malformed rows are dropped, not thrown
				log.Error().Err(err).Str("slot_id", slot.ID).Msg("malformed call_info, skipping field")
			} else {
				slot.CallInfo = &info
			}
		}
		if slot.Status == "" {
			slot.Status = model.SlotScheduled
		}
		out = append(out, slot)
	}
	return out, true
}

func (g *pgGateway) UpsertScheduleSlot(slot model.ScheduleSlot) bool {
	if !g.ready() {
		return false
	}
	if !g.execSlotUpsert(slot) {
		return false
	}
	return true
}

func (g *pgGateway) UpsertScheduleSlots(slots []model.ScheduleSlot) bool {
	if !g.ready() {
		return false
	}
	for _, slot := range slots {
		if !g.execSlotUpsert(slot) {
			return false
		}
	}
	return true
}

func (g *pgGateway) execSlotUpsert(slot model.ScheduleSlot) bool {
	var callInfo []byte
	if slot.CallInfo != nil {
		callInfo, _ = json.Marshal(slot.CallInfo)
	}
	const q = `
	INSERT INTO schedule_slots (` + slotColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	ON CONFLICT (id) DO UPDATE SET
	  player_id = EXCLUDED.player_id,
	  date = EXCLUDED.date,
	  start_time = EXCLUDED.start_time,
	  end_time = EXCLUDED.end_time,
	  station = EXCLUDED.station,
	  status = EXCLUDED.status,
	  notes = EXCLUDED.notes,
	  call_info = EXCLUDED.call_info;`
	if _, err := g.db.Exec(q,
		slot.ID, slot.PlayerID, slot.Date, slot.StartTime, slot.EndTime,
		slot.Station, slot.Status, slot.Notes, callInfo,
	); err != nil {
		log.Error().Err(err).Str("slot_id", slot.ID).Msg("UpsertScheduleSlot failed")
		return false
	}
	return true
}

func (g *pgGateway) DeleteScheduleSlot(id string) bool {
	if !g.ready() {
		return false
	}
	if _, err := g.db.Exec(`DELETE FROM schedule_slots WHERE id = $1;`, id); err != nil {
		log.Error().Err(err).Str("slot_id", id).Msg("DeleteScheduleSlot failed")
		return false
	}
	return true
}
