package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/schedule"
	"github.com/showdeskhq/showdesk/internal/sync"
)

type clipController struct {
	mgr *sync.Manager
	clk *schedule.Clock
}

// ClipModule mounts the clip-marker endpoints.
func ClipModule(mgr *sync.Manager, clk *schedule.Clock) Module {
	ctl := &clipController{mgr: mgr, clk: clk}
	return ModuleFunc(func(grp *gin.RouterGroup) {
		grp.GET("/clips", resolve(ctl.listClips))
		grp.POST("/clips", resolve(ctl.addClip))
		grp.PATCH("/clips/:id", resolve(ctl.updateClip))
		grp.DELETE("/clips/:id", resolve(ctl.deleteClip))
		grp.POST("/clips/delete", resolve(ctl.deleteClips))
		grp.GET("/clips/analytics", resolve(ctl.analytics))
	})
}

// GET /api/clips?category=highlight&flagged=true&q=text
func (c *clipController) listClips(ctx *gin.Context) (any, *Error) {
	clips := c.mgr.Snapshot().Clips

	category := ctx.Query("category")
	flagged := ctx.Query("flagged") == "true"
	q := strings.ToLower(strings.TrimSpace(ctx.Query("q")))
	if q != "" {
		c.mgr.Store().AddRecentSearch(q)
	}

	out := make([]model.ClipMarker, 0, len(clips))
	for _, clip := range clips {
		if category != "" && string(clip.Category) != category {
			continue
		}
		if flagged && !clip.Flagged {
			continue
		}
		if q != "" && !clipMatches(clip, q) {
			continue
		}
		out = append(out, clip)
	}
	return out, nil
}

func clipMatches(clip model.ClipMarker, q string) bool {
	if clip.Notes != nil && strings.Contains(strings.ToLower(*clip.Notes), q) {
		return true
	}
	if clip.PlayerID != nil && strings.Contains(strings.ToLower(*clip.PlayerID), q) {
		return true
	}
	for _, tag := range clip.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// POST /api/clips
func (c *clipController) addClip(ctx *gin.Context) (any, *Error) {
	var clip model.ClipMarker
	if err := ctx.ShouldBindJSON(&clip); err != nil {
		return nil, errBadRequest(err.Error())
	}
	if clip.MediaType == "" {
		return nil, errBadRequest("media_type is required")
	}
	return c.mgr.AddClip(clip), nil
}

// PATCH /api/clips/:id
func (c *clipController) updateClip(ctx *gin.Context) (any, *Error) {
	id := ctx.Param("id")
	var patch model.ClipPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		return nil, errBadRequest(err.Error())
	}
	for _, clip := range c.mgr.Snapshot().Clips {
		if clip.ID == id {
			c.mgr.UpdateClip(id, patch)
			return gin.H{"updated": id}, nil
		}
	}
	return nil, errNotFound("no such clip")
}

// DELETE /api/clips/:id
func (c *clipController) deleteClip(ctx *gin.Context) (any, *Error) {
	id := ctx.Param("id")
	for _, clip := range c.mgr.Snapshot().Clips {
		if clip.ID == id {
			c.mgr.DeleteClip(id)
			return gin.H{"deleted": id}, nil
		}
	}
	return nil, errNotFound("no such clip")
}

// POST /api/clips/delete
func (c *clipController) deleteClips(ctx *gin.Context) (any, *Error) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, errBadRequest(err.Error())
	}
	if len(req.IDs) == 0 {
		return nil, errBadRequest("ids is required")
	}
	c.mgr.DeleteClips(req.IDs)
	return gin.H{"deleted": len(req.IDs)}, nil
}

// GET /api/clips/analytics
func (c *clipController) analytics(ctx *gin.Context) (any, *Error) {
	return schedule.AnalyzeClips(c.mgr.Snapshot().Clips, c.clk, c.mgr.Now()), nil
}
