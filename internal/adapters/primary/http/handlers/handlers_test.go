package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NusretOzates/simple-model-registry/internal/core/services"
	"github.com/NusretOzates/simple-model-registry/internal/testutil"
)

func setupRouter() (*services.RegistryService, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	models, versions, aliases := testutil.NewMemoryRepos()
	registry := services.NewRegistryService(models, versions, aliases, testutil.NewMemoryStore())

	h := New(registry, nil)
	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	r.GET("/healthz", h.Health)

	return registry, r
}

func uploadRequest(t *testing.T, url, metadata string, artifact []byte) *http.Request {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if artifact != nil {
		fw, err := w.CreateFormFile("model_file", "model.skops")
		require.NoError(t, err)
		_, err = fw.Write(artifact)
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("metadata", metadata))
	require.NoError(t, w.Close())

	req, err := http.NewRequest("POST", url, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func doRegister(t *testing.T, r *gin.Engine, model, metadata string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/models/"+model+"/versions", metadata, []byte("weights")))
	return w
}

const defaultMetadata = `{
	"created_by": "alice",
	"description": "first cut",
	"parameters": {"lr": 0.1},
	"metrics": {"acc": 0.9},
	"tags": ["prod"]
}`

func TestRegisterVersion(t *testing.T) {
	_, r := setupRouter()

	w := doRegister(t, r, "iris-clf", defaultMetadata)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["version"])
	assert.Equal(t, "iris-clf", resp["model_name"])

	w = doRegister(t, r, "iris-clf", defaultMetadata)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["version"])
}

func TestRegisterVersion_MissingFile(t *testing.T) {
	_, r := setupRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/models/m/versions", defaultMetadata, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterVersion_InvalidMetadata(t *testing.T) {
	_, r := setupRouter()

	w := doRegister(t, r, "m", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterVersion_MissingCreator(t *testing.T) {
	_, r := setupRouter()

	w := doRegister(t, r, "m", `{"description": "no author"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterVersion_WithAlias(t *testing.T) {
	_, r := setupRouter()

	w := doRegister(t, r, "m", `{"created_by": "alice", "alias": "latest"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	req, _ := http.NewRequest("GET", "/api/v1/models/m/aliases/latest", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["version"])
}

func TestGetVersion(t *testing.T) {
	_, r := setupRouter()
	doRegister(t, r, "m", defaultMetadata)

	req, _ := http.NewRequest("GET", "/api/v1/models/m/versions/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "first cut", resp["description"])
	assert.Equal(t, []interface{}{"prod"}, resp["tags"])
}

func TestGetVersion_NotFound(t *testing.T) {
	_, r := setupRouter()
	doRegister(t, r, "m", defaultMetadata)

	req, _ := http.NewRequest("GET", "/api/v1/models/m/versions/99", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetVersion_InvalidNumber(t *testing.T) {
	_, r := setupRouter()

	req, _ := http.NewRequest("GET", "/api/v1/models/m/versions/latest", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateVersion(t *testing.T) {
	_, r := setupRouter()
	doRegister(t, r, "m", defaultMetadata)

	body := bytes.NewBufferString(`{"description": "tuned"}`)
	req, _ := http.NewRequest("PATCH", "/api/v1/models/m/versions/1", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tuned", resp["description"])
	// Unpatched fields survive.
	assert.Equal(t, []interface{}{"prod"}, resp["tags"])
}

func TestDeleteVersion(t *testing.T) {
	_, r := setupRouter()
	doRegister(t, r, "m", defaultMetadata)

	req, _ := http.NewRequest("DELETE", "/api/v1/models/m/versions/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/api/v1/models/m/versions/1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetAliasAndResolve(t *testing.T) {
	_, r := setupRouter()
	doRegister(t, r, "m", defaultMetadata)
	doRegister(t, r, "m", defaultMetadata)

	put := func(version string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("PUT", "/api/v1/models/m/aliases/prod", bytes.NewBufferString(version))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, put(`{"version": 1}`).Code)

	// Rebinding overwrites.
	require.Equal(t, http.StatusOK, put(`{"version": 2}`).Code)

	req, _ := http.NewRequest("GET", "/api/v1/models/m/aliases/prod", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["version"])
}

func TestSetAlias_VersionNotFound(t *testing.T) {
	_, r := setupRouter()
	doRegister(t, r, "m", defaultMetadata)

	req, _ := http.NewRequest("PUT", "/api/v1/models/m/aliases/prod", bytes.NewBufferString(`{"version": 9}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadVersion(t *testing.T) {
	_, r := setupRouter()
	doRegister(t, r, "m", defaultMetadata)

	req, _ := http.NewRequest("GET", "/api/v1/models/m/versions/1/download", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "weights", w.Body.String())
	assert.Equal(t, "m", w.Header().Get("Model-Name"))
}

func TestListVersions_TagFilter(t *testing.T) {
	_, r := setupRouter()
	doRegister(t, r, "iris-clf", `{"created_by": "alice", "tags": ["prod"]}`)
	doRegister(t, r, "iris-clf", `{"created_by": "alice", "tags": ["staging"]}`)

	req, _ := http.NewRequest("GET", "/api/v1/versions?model_name=iris-clf&tag=prod", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []map[string]interface{} `json:"items"`
		Total int                      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, float64(1), resp.Items[0]["version"])
}

func TestListModels_And_GetModel(t *testing.T) {
	_, r := setupRouter()
	doRegister(t, r, "a-model", defaultMetadata)
	doRegister(t, r, "b-model", defaultMetadata)
	doRegister(t, r, "b-model", defaultMetadata)

	req, _ := http.NewRequest("GET", "/api/v1/models", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "a-model", list[0]["name"])

	req, _ = http.NewRequest("GET", "/api/v1/models/b-model", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var model struct {
		Name     string                   `json:"name"`
		Versions []map[string]interface{} `json:"versions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &model))
	assert.Equal(t, "b-model", model.Name)
	assert.Len(t, model.Versions, 2)
}

func TestDeleteModel(t *testing.T) {
	_, r := setupRouter()
	doRegister(t, r, "m", defaultMetadata)

	req, _ := http.NewRequest("DELETE", "/api/v1/models/m", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/api/v1/models/m", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	_, r := setupRouter()
	doRegister(t, r, "m", defaultMetadata)

	req, _ := http.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(1), resp["number_of_models"])
}
