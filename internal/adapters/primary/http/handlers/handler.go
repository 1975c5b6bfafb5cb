package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/NusretOzates/simple-model-registry/internal/core/services"
)

// Pinger reports backing-store liveness for the health endpoint. A pgxpool
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	registry *services.RegistryService
	pinger   Pinger
}

func New(registry *services.RegistryService, pinger Pinger) *Handler {
	return &Handler{registry: registry, pinger: pinger}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Models
	r.GET("/models", h.ListModels)
	r.GET("/models/:name", h.GetModel)
	r.DELETE("/models/:name", h.DeleteModel)

	// Versions
	r.POST("/models/:name/versions", h.RegisterVersion)
	r.GET("/models/:name/versions/:version", h.GetVersion)
	r.PATCH("/models/:name/versions/:version", h.UpdateVersion)
	r.DELETE("/models/:name/versions/:version", h.DeleteVersion)
	r.GET("/models/:name/versions/:version/download", h.DownloadVersion)

	// Aliases
	r.PUT("/models/:name/aliases/:alias", h.SetAlias)
	r.GET("/models/:name/aliases/:alias", h.ResolveAlias)

	// Cross-model version search
	r.GET("/versions", h.ListVersions)
}
