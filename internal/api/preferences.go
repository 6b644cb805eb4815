package api

import (
	"github.com/gin-gonic/gin"

	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/store"
	"github.com/showdeskhq/showdesk/internal/sync"
)

type preferenceController struct {
	mgr *sync.Manager
}

// PreferenceModule mounts the UI-settings endpoints.
func PreferenceModule(mgr *sync.Manager) Module {
	ctl := &preferenceController{mgr: mgr}
	return ModuleFunc(func(grp *gin.RouterGroup) {
		grp.GET("/preferences", resolve(ctl.getPreferences))
		grp.PATCH("/preferences", resolve(ctl.patchPreferences))
	})
}

// GET /api/preferences
func (p *preferenceController) getPreferences(ctx *gin.Context) (any, *Error) {
	return p.mgr.Snapshot().Preferences, nil
}

// PATCH /api/preferences
func (p *preferenceController) patchPreferences(ctx *gin.Context) (any, *Error) {
	var req struct {
		LargeText            *bool            `json:"large_text"`
		NotificationsEnabled *bool            `json:"notifications_enabled"`
		NotificationSound    *bool            `json:"notification_sound"`
		SelectedStation      *model.StationID `json:"selected_station"`
		SelectedDay          *string          `json:"selected_day"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, errBadRequest(err.Error())
	}
	if req.SelectedStation != nil {
		valid := false
		for _, s := range model.Stations {
			if s == *req.SelectedStation {
				valid = true
				break
			}
		}
		if !valid {
			return nil, errBadRequest("unknown station")
		}
	}
	p.mgr.Store().Set(store.Patch{
		LargeText:            req.LargeText,
		NotificationsEnabled: req.NotificationsEnabled,
		NotificationSound:    req.NotificationSound,
		SelectedStation:      req.SelectedStation,
		SelectedDay:          req.SelectedDay,
	})
	return p.mgr.Snapshot().Preferences, nil
}
