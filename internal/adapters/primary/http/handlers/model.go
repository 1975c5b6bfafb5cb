package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/NusretOzates/simple-model-registry/internal/adapters/primary/http/dto"
)

func (h *Handler) ListModels(c *gin.Context) {
	models, err := h.registry.ListModels(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list models failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ModelResponse, 0, len(models))
	for _, m := range models {
		items = append(items, dto.ToModelResponse(m))
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetModel(c *gin.Context) {
	name := c.Param("name")

	model, err := h.registry.GetModel(c.Request.Context(), name)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	versions, err := h.registry.ListModelVersions(c.Request.Context(), name)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	resp := dto.ModelWithVersionsResponse{
		ModelResponse: dto.ToModelResponse(model),
		Versions:      make([]dto.ModelVersionResponse, 0, len(versions)),
	}
	for _, v := range versions {
		resp.Versions = append(resp.Versions, dto.ToModelVersionResponse(v))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteModel(c *gin.Context) {
	name := c.Param("name")

	if err := h.registry.DeleteModel(c.Request.Context(), name); err != nil {
		log.WithError(err).WithField("model", name).Error("delete model failed")
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
