package api

import (
	"github.com/gin-gonic/gin"

	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/schedule"
	"github.com/showdeskhq/showdesk/internal/sync"
)

type deliverableController struct {
	mgr *sync.Manager
}

// DeliverableModule mounts the deliverable-tracking endpoints.
func DeliverableModule(mgr *sync.Manager) Module {
	ctl := &deliverableController{mgr: mgr}
	return ModuleFunc(func(grp *gin.RouterGroup) {
		grp.GET("/deliverables", resolve(ctl.listDeliverables))
		grp.POST("/deliverables", resolve(ctl.saveDeliverable))
		grp.POST("/deliverables/bulk", resolve(ctl.importDeliverables))
		grp.PATCH("/deliverables/:id/status", resolve(ctl.setStatus))
		grp.DELETE("/deliverables/:id", resolve(ctl.deleteDeliverable))
		grp.GET("/deliverables/progress", resolve(ctl.progress))
	})
}

// GET /api/deliverables?day=YYYY-MM-DD&status=pending
func (d *deliverableController) listDeliverables(ctx *gin.Context) (any, *Error) {
	ds := d.mgr.Snapshot().Deliverables
	day := ctx.Query("day")
	status := ctx.Query("status")

	out := make([]model.Deliverable, 0, len(ds))
	for _, item := range ds {
		if day != "" && item.DueDay != day {
			continue
		}
		if status != "" && string(item.Status) != status {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// POST /api/deliverables
func (d *deliverableController) saveDeliverable(ctx *gin.Context) (any, *Error) {
	var item model.Deliverable
	if err := ctx.ShouldBindJSON(&item); err != nil {
		return nil, errBadRequest(err.Error())
	}
	if item.Title == "" {
		return nil, errBadRequest("title is required")
	}
	return d.mgr.SaveDeliverable(item), nil
}

// POST /api/deliverables/bulk imports a deliverable list, replacing by id.
func (d *deliverableController) importDeliverables(ctx *gin.Context) (any, *Error) {
	var items []model.Deliverable
	if err := ctx.ShouldBindJSON(&items); err != nil {
		return nil, errBadRequest(err.Error())
	}
	if len(items) == 0 {
		return nil, errBadRequest("import requires at least one deliverable")
	}
	for _, item := range items {
		if item.Title == "" {
			return nil, errBadRequest("title is required")
		}
	}
	return d.mgr.ImportDeliverables(items), nil
}

// PATCH /api/deliverables/:id/status
func (d *deliverableController) setStatus(ctx *gin.Context) (any, *Error) {
	id := ctx.Param("id")
	var req struct {
		Status model.DeliverableStatus `json:"status"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, errBadRequest(err.Error())
	}
	switch req.Status {
	case model.DeliverablePending, model.DeliverableInProgress,
		model.DeliverableCompleted, model.DeliverableDelivered:
	default:
		return nil, errBadRequest("unknown status")
	}
	for _, item := range d.mgr.Snapshot().Deliverables {
		if item.ID == id {
			d.mgr.SetDeliverableStatus(id, req.Status)
			return gin.H{"updated": id}, nil
		}
	}
	return nil, errNotFound("no such deliverable")
}

// DELETE /api/deliverables/:id
func (d *deliverableController) deleteDeliverable(ctx *gin.Context) (any, *Error) {
	id := ctx.Param("id")
	for _, item := range d.mgr.Snapshot().Deliverables {
		if item.ID == id {
			d.mgr.DeleteDeliverable(id)
			return gin.H{"deleted": id}, nil
		}
	}
	return nil, errNotFound("no such deliverable")
}

// GET /api/deliverables/progress
func (d *deliverableController) progress(ctx *gin.Context) (any, *Error) {
	return schedule.DeliverableProgress(d.mgr.Snapshot().Deliverables), nil
}
