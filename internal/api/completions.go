package api

import (
	"github.com/gin-gonic/gin"

	"github.com/showdeskhq/showdesk/internal/sync"
)

type completionController struct {
	mgr *sync.Manager
}

// CompletionModule mounts the per-player station-checklist endpoints.
func CompletionModule(mgr *sync.Manager) Module {
	ctl := &completionController{mgr: mgr}
	return ModuleFunc(func(grp *gin.RouterGroup) {
		grp.GET("/completions", resolve(ctl.listCompletions))
		grp.POST("/completions/toggle", resolve(ctl.toggle))
		grp.POST("/completions/reset", resolve(ctl.reset))
	})
}

// GET /api/completions?player=p1
func (c *completionController) listCompletions(ctx *gin.Context) (any, *Error) {
	cs := c.mgr.Snapshot().Completions
	player := ctx.Query("player")
	if player == "" {
		return cs, nil
	}
	out := cs[:0:0]
	for _, completion := range cs {
		if completion.PlayerID == player {
			out = append(out, completion)
		}
	}
	return out, nil
}

// POST /api/completions/toggle
func (c *completionController) toggle(ctx *gin.Context) (any, *Error) {
	var req struct {
		PlayerID  string `json:"player_id"`
		StationID string `json:"station_id"`
		By        string `json:"by"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, errBadRequest(err.Error())
	}
	if req.PlayerID == "" || req.StationID == "" {
		return nil, errBadRequest("player_id and station_id are required")
	}
	return c.mgr.ToggleCompletion(req.PlayerID, req.StationID, req.By), nil
}

// POST /api/completions/reset
func (c *completionController) reset(ctx *gin.Context) (any, *Error) {
	c.mgr.ResetCompletions()
	return gin.H{"reset": true}, nil
}
