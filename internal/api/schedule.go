package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/schedule"
	"github.com/showdeskhq/showdesk/internal/sync"
)

type scheduleController struct {
	mgr *sync.Manager
	clk *schedule.Clock
}

// ScheduleModule mounts the day-sheet endpoints.
func ScheduleModule(mgr *sync.Manager, clk *schedule.Clock) Module {
	ctl := &scheduleController{mgr: mgr, clk: clk}
	return ModuleFunc(func(grp *gin.RouterGroup) {
		grp.GET("/schedule", resolve(ctl.listSlots))
		grp.POST("/schedule", resolve(ctl.saveSlot))
		grp.POST("/schedule/bulk", resolve(ctl.importSlots))
		grp.DELETE("/schedule/:id", resolve(ctl.deleteSlot))
		grp.GET("/schedule/tbd", resolve(ctl.listTBD))
		grp.GET("/schedule/calls", resolve(ctl.listCalls))
	})
}

// GET /api/schedule?day=YYYY-MM-DD&station=signing&player=p1
func (s *scheduleController) listSlots(ctx *gin.Context) (any, *Error) {
	slots := s.mgr.Snapshot().Schedule

	day := ctx.Query("day")
	station := ctx.Query("station")
	player := ctx.Query("player")

	out := make([]model.ScheduleSlot, 0, len(slots))
	for _, slot := range slots {
		if day != "" && slot.Date != day {
			continue
		}
		if station != "" && string(slot.Station) != station {
			continue
		}
		if player != "" && slot.PlayerID != player {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

// POST /api/schedule
func (s *scheduleController) saveSlot(ctx *gin.Context) (any, *Error) {
	var slot model.ScheduleSlot
	if err := ctx.ShouldBindJSON(&slot); err != nil {
		return nil, errBadRequest(err.Error())
	}
	if slot.PlayerID == "" || slot.Date == "" {
		return nil, errBadRequest("player_id and date are required")
	}
	if slot.Status != model.SlotTBD {
		if _, ok := schedule.MinuteOf(slot.StartTime); !ok {
			return nil, errBadRequest("start_time must be zero-padded HH:MM")
		}
		if _, ok := schedule.MinuteOf(slot.EndTime); !ok {
			return nil, errBadRequest("end_time must be zero-padded HH:MM")
		}
		if slot.StartTime >= slot.EndTime {
			return nil, errBadRequest("start_time must precede end_time")
		}
	}
	return s.mgr.SaveSlot(slot), nil
}

// POST /api/schedule/bulk imports a rundown in one shot, replacing slots by
// id. Each timed slot is validated the same way as a single save.
func (s *scheduleController) importSlots(ctx *gin.Context) (any, *Error) {
	var slots []model.ScheduleSlot
	if err := ctx.ShouldBindJSON(&slots); err != nil {
		return nil, errBadRequest(err.Error())
	}
	if len(slots) == 0 {
		return nil, errBadRequest("import requires at least one slot")
	}
	for _, slot := range slots {
		if slot.PlayerID == "" || slot.Date == "" {
			return nil, errBadRequest("player_id and date are required")
		}
		if slot.Status != model.SlotTBD {
			if _, ok := schedule.MinuteOf(slot.StartTime); !ok {
				return nil, errBadRequest("start_time must be zero-padded HH:MM")
			}
			if _, ok := schedule.MinuteOf(slot.EndTime); !ok {
				return nil, errBadRequest("end_time must be zero-padded HH:MM")
			}
			if slot.StartTime >= slot.EndTime {
				return nil, errBadRequest("start_time must precede end_time")
			}
		}
	}
	return s.mgr.ImportSlots(slots), nil
}

// DELETE /api/schedule/:id
func (s *scheduleController) deleteSlot(ctx *gin.Context) (any, *Error) {
	id := ctx.Param("id")
	for _, slot := range s.mgr.Snapshot().Schedule {
		if slot.ID == id {
			s.mgr.DeleteSlot(id)
			return gin.H{"deleted": id}, nil
		}
	}
	return nil, errNotFound("no such slot")
}

// GET /api/schedule/tbd
func (s *scheduleController) listTBD(ctx *gin.Context) (any, *Error) {
	return schedule.TBDSlots(s.mgr.Snapshot().Schedule), nil
}

// GET /api/schedule/calls?day=YYYY-MM-DD
func (s *scheduleController) listCalls(ctx *gin.Context) (any, *Error) {
	day := ctx.Query("day")
	if day == "" {
		day = s.clk.Day(s.mgr.Now())
	}
	if !s.clk.IsEventDay(day) {
		return nil, &Error{Code: http.StatusBadRequest, Message: "day is not an event day"}
	}
	return schedule.CallSlotsForDay(s.mgr.Snapshot().Schedule, day), nil
}
