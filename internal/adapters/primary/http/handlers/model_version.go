package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/NusretOzates/simple-model-registry/internal/adapters/primary/http/dto"
	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
	ports "github.com/NusretOzates/simple-model-registry/internal/core/ports/output"
)

// RegisterVersion accepts a multipart upload: the artifact under "model_file"
// and a JSON metadata document under "metadata".
func (h *Handler) RegisterVersion(c *gin.Context) {
	name := c.Param("name")

	file, err := c.FormFile("model_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrEmptyArtifact.Error()})
		return
	}

	var meta dto.CreateVersionMetadata
	if err := json.Unmarshal([]byte(c.PostForm("metadata")), &meta); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metadata: " + err.Error()})
		return
	}
	if meta.CreatedBy == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "created_by is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open uploaded file"})
		return
	}
	defer src.Close()

	version, err := h.registry.RegisterVersion(
		c.Request.Context(), name, meta.CreatedBy, meta.Description,
		meta.Parameters, meta.Metrics, meta.Tags, src, file.Size,
	)
	if err != nil {
		log.WithError(err).WithField("model", name).Error("register version failed")
		mapDomainError(c, err)
		return
	}

	if meta.Alias != "" {
		if _, err := h.registry.SetAlias(c.Request.Context(), name, meta.Alias, version.Version); err != nil {
			log.WithError(err).WithField("model", name).Error("set alias on register failed")
			mapDomainError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, dto.ToModelVersionResponse(version))
}

func (h *Handler) GetVersion(c *gin.Context) {
	name, number, ok := versionParams(c)
	if !ok {
		return
	}

	version, err := h.registry.GetVersion(c.Request.Context(), name, number)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToModelVersionResponse(version))
}

func (h *Handler) UpdateVersion(c *gin.Context) {
	name, number, ok := versionParams(c)
	if !ok {
		return
	}

	var req dto.UpdateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := domain.VersionPatch{
		Parameters:  req.Parameters,
		Metrics:     req.Metrics,
		Tags:        req.Tags,
		Description: req.Description,
	}

	version, err := h.registry.UpdateVersion(c.Request.Context(), name, number, patch)
	if err != nil {
		log.WithError(err).WithField("model", name).Error("update version failed")
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToModelVersionResponse(version))
}

func (h *Handler) DeleteVersion(c *gin.Context) {
	name, number, ok := versionParams(c)
	if !ok {
		return
	}

	if err := h.registry.DeleteVersion(c.Request.Context(), name, number); err != nil {
		log.WithError(err).WithField("model", name).Error("delete version failed")
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) DownloadVersion(c *gin.Context) {
	name, number, ok := versionParams(c)
	if !ok {
		return
	}

	rc, version, err := h.registry.OpenArtifact(c.Request.Context(), name, number)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	defer rc.Close()

	headers := map[string]string{
		"Model-Name":          version.ModelName,
		"Content-Disposition": `attachment; filename="` + version.ModelName + "-v" + strconv.Itoa(version.Version) + `"`,
	}
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", rc, headers)
}

func (h *Handler) SetAlias(c *gin.Context) {
	name := c.Param("name")
	aliasName := c.Param("alias")

	var req dto.SetAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alias, err := h.registry.SetAlias(c.Request.Context(), name, aliasName, req.Version)
	if err != nil {
		log.WithError(err).WithField("model", name).Error("set alias failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AliasResponse{
		ModelName: name,
		Alias:     alias.Name,
		Version:   alias.Version,
	})
}

func (h *Handler) ResolveAlias(c *gin.Context) {
	name := c.Param("name")
	aliasName := c.Param("alias")

	version, err := h.registry.ResolveAlias(c.Request.Context(), name, aliasName)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToModelVersionResponse(version))
}

func (h *Handler) ListVersions(c *gin.Context) {
	filter := ports.VersionListFilter{
		ModelName:  c.Query("model_name"),
		Creator:    c.Query("creator"),
		Tag:        c.Query("tag"),
		NamePrefix: c.Query("name_prefix"),
	}

	versions, err := h.registry.ListVersions(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list versions failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ModelVersionResponse, 0, len(versions))
	for _, v := range versions {
		items = append(items, dto.ToModelVersionResponse(v))
	}
	c.JSON(http.StatusOK, dto.ListVersionsResponse{Items: items, Total: len(items)})
}

func versionParams(c *gin.Context) (string, int, bool) {
	name := c.Param("name")
	number, err := strconv.Atoi(c.Param("version"))
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version number"})
		return "", 0, false
	}
	return name, number, true
}
