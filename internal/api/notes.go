package api

import (
	"github.com/gin-gonic/gin"

	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/sync"
)

type noteController struct {
	mgr *sync.Manager
}

// NoteModule mounts the production-notes endpoints.
func NoteModule(mgr *sync.Manager) Module {
	ctl := &noteController{mgr: mgr}
	return ModuleFunc(func(grp *gin.RouterGroup) {
		grp.GET("/notes", resolve(ctl.listNotes))
		grp.POST("/notes", resolve(ctl.addNote))
		grp.PATCH("/notes/:id", resolve(ctl.updateNote))
		grp.POST("/notes/:id/resolve", resolve(ctl.resolveNote))
		grp.POST("/notes/delete", resolve(ctl.deleteNotes))
		grp.POST("/notes/clear-resolved", resolve(ctl.clearResolved))
	})
}

// GET /api/notes?status=open&station=signing
func (n *noteController) listNotes(ctx *gin.Context) (any, *Error) {
	notes := n.mgr.Snapshot().Notes
	status := ctx.Query("status")
	station := ctx.Query("station")

	out := make([]model.Note, 0, len(notes))
	for _, note := range notes {
		if status != "" && string(note.Status) != status {
			continue
		}
		if station != "" && (note.StationID == nil || *note.StationID != station) {
			continue
		}
		out = append(out, note)
	}
	return out, nil
}

// POST /api/notes
func (n *noteController) addNote(ctx *gin.Context) (any, *Error) {
	var note model.Note
	if err := ctx.ShouldBindJSON(&note); err != nil {
		return nil, errBadRequest(err.Error())
	}
	if note.Content == "" {
		return nil, errBadRequest("content is required")
	}
	return n.mgr.AddNote(note), nil
}

// PATCH /api/notes/:id
func (n *noteController) updateNote(ctx *gin.Context) (any, *Error) {
	id := ctx.Param("id")
	var patch model.NotePatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		return nil, errBadRequest(err.Error())
	}
	for _, note := range n.mgr.Snapshot().Notes {
		if note.ID == id {
			n.mgr.UpdateNote(id, patch)
			return gin.H{"updated": id}, nil
		}
	}
	return nil, errNotFound("no such note")
}

// POST /api/notes/:id/resolve
func (n *noteController) resolveNote(ctx *gin.Context) (any, *Error) {
	id := ctx.Param("id")
	for _, note := range n.mgr.Snapshot().Notes {
		if note.ID == id {
			n.mgr.ResolveNote(id)
			return gin.H{"resolved": id}, nil
		}
	}
	return nil, errNotFound("no such note")
}

// POST /api/notes/delete
func (n *noteController) deleteNotes(ctx *gin.Context) (any, *Error) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, errBadRequest(err.Error())
	}
	if len(req.IDs) == 0 {
		return nil, errBadRequest("ids is required")
	}
	n.mgr.DeleteNotes(req.IDs)
	return gin.H{"deleted": len(req.IDs)}, nil
}

// POST /api/notes/clear-resolved
func (n *noteController) clearResolved(ctx *gin.Context) (any, *Error) {
	return gin.H{"deleted": n.mgr.ClearResolvedNotes()}, nil
}
