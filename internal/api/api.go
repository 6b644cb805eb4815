// Package api exposes the dashboard's HTTP surface. Handlers are thin: they
// bind the request, call into the sync manager or the schedule engine, and
// return JSON. All derived status values are computed per request, never
// stored.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Error is a handler failure with its HTTP status.
type Error struct {
	Code    int
	Message string
}

func errBadRequest(msg string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: msg}
}

func errNotFound(msg string) *Error {
	return &Error{Code: http.StatusNotFound, Message: msg}
}

// HandlerFunc is the shape every endpoint implements.
type HandlerFunc func(ctx *gin.Context) (any, *Error)

func resolve(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}

// Module is a pluggable feature that attaches its endpoints to a router group.
type Module interface {
	Mount(grp *gin.RouterGroup)
}

// ModuleFunc lets a module be defined as a plain function.
type ModuleFunc func(grp *gin.RouterGroup)

func (f ModuleFunc) Mount(grp *gin.RouterGroup) { f(grp) }

// NewRouter builds the engine with CORS open to any origin (the dashboard is
// served from whatever host the desk has handy) and mounts every module under
// /api.
func NewRouter(modules ...Module) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	grp := r.Group("/api")
	for _, m := range modules {
		m.Mount(grp)
	}
	return r
}
