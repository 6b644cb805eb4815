package api

import (
	"github.com/gin-gonic/gin"

	"github.com/showdeskhq/showdesk/internal/connectivity"
	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/schedule"
	"github.com/showdeskhq/showdesk/internal/sync"
)

type statusController struct {
	mgr *sync.Manager
	mon *connectivity.Monitor
	clk *schedule.Clock
}

// StatusModule mounts the derived-status endpoints. Everything here is
// computed from the snapshot and the clock at request time.
func StatusModule(mgr *sync.Manager, mon *connectivity.Monitor, clk *schedule.Clock) Module {
	ctl := &statusController{mgr: mgr, mon: mon, clk: clk}
	return ModuleFunc(func(grp *gin.RouterGroup) {
		grp.GET("/status/venue", resolve(ctl.venue))
		grp.GET("/status/players", resolve(ctl.players))
		grp.GET("/status/stations", resolve(ctl.stations))
		grp.GET("/status/arrivals", resolve(ctl.arrivals))
		grp.GET("/status/sync", resolve(ctl.syncState))
	})
}

func (s *statusController) day(ctx *gin.Context) string {
	if day := ctx.Query("day"); day != "" {
		return day
	}
	return s.clk.Day(s.mgr.Now())
}

// GET /api/status/venue
func (s *statusController) venue(ctx *gin.Context) (any, *Error) {
	now := s.mgr.Now()
	snap := s.mgr.Snapshot()
	day := s.clk.Day(now)
	return gin.H{
		"status":            schedule.VenueStatus(s.clk, now),
		"day":               day,
		"day_number":        s.clk.DayNumber(day),
		"players_total":     len(schedule.PlayersForDay(snap.Schedule, day)),
		"players_completed": schedule.CompletedPlayerCount(snap.Schedule, day, s.clk, now),
	}, nil
}

type playerStatusResponse struct {
	PlayerID string                `json:"player_id"`
	Status   schedule.PlayerStatus `json:"status"`
	Current  *playerSlotResponse   `json:"current,omitempty"`
	Next     *playerSlotResponse   `json:"next,omitempty"`
}

type playerSlotResponse struct {
	ID        string `json:"id"`
	Station   string `json:"station"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// GET /api/status/players?day=YYYY-MM-DD
func (s *statusController) players(ctx *gin.Context) (any, *Error) {
	now := s.mgr.Now()
	day := s.day(ctx)
	snap := s.mgr.Snapshot()

	players := schedule.PlayersForDay(snap.Schedule, day)
	out := make([]playerStatusResponse, 0, len(players))
	for _, p := range players {
		resp := playerStatusResponse{
			PlayerID: p,
			Status:   schedule.Status(snap.Schedule, p, s.clk, now, day),
		}
		if cur := schedule.CurrentPlayerSlot(snap.Schedule, p, s.clk, now, day); cur != nil {
			resp.Current = slotResponse(cur)
		}
		if next := schedule.NextPlayerSlot(snap.Schedule, p, s.clk, now, day); next != nil {
			resp.Next = slotResponse(next)
		}
		out = append(out, resp)
	}
	return out, nil
}

func slotResponse(slot *model.ScheduleSlot) *playerSlotResponse {
	return &playerSlotResponse{
		ID:        slot.ID,
		Station:   string(slot.Station),
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
	}
}

// GET /api/status/stations
func (s *statusController) stations(ctx *gin.Context) (any, *Error) {
	now := s.mgr.Now()
	snap := s.mgr.Snapshot()

	out := make(map[string]gin.H, len(model.Stations))
	for _, station := range model.Stations {
		entry := gin.H{"current": nil, "next": nil}
		if cur := schedule.CurrentSlot(snap.Schedule, station, s.clk, now); cur != nil {
			entry["current"] = cur
		}
		if next := schedule.NextSlot(snap.Schedule, station, s.clk, now); next != nil {
			entry["next"] = next
		}
		out[string(station)] = entry
	}
	return out, nil
}

// GET /api/status/arrivals?day=YYYY-MM-DD
func (s *statusController) arrivals(ctx *gin.Context) (any, *Error) {
	return schedule.PlayerArrivalsForDay(s.mgr.Snapshot().Schedule, s.day(ctx)), nil
}

// GET /api/status/sync
func (s *statusController) syncState(ctx *gin.Context) (any, *Error) {
	tables := gin.H{}
	for _, t := range sync.Tables() {
		tables[t] = s.mgr.State(t)
	}
	return gin.H{
		"online": s.mon.Online(),
		"tables": tables,
	}, nil
}
