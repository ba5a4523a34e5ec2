package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iconforge/iconforge-backend/internal/application"
	"github.com/iconforge/iconforge-backend/internal/domain/entity"
	"github.com/iconforge/iconforge-backend/internal/domain/repository"
	"github.com/iconforge/iconforge-backend/internal/infrastructure/snapshot"
	"github.com/iconforge/iconforge-backend/pkg/iconset"
	"github.com/iconforge/iconforge-backend/pkg/validation"
)

// stubProjectRepo backs one project in memory; methods the icon routes never
// touch fall through to the nil embedded interface.
type stubProjectRepo struct {
	repository.ProjectRepository
	project *entity.Project
	updated []byte
}

func (r *stubProjectRepo) GetByID(_ context.Context, id int64) (*entity.Project, error) {
	if r.project != nil && r.project.ID == id {
		cp := *r.project
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubProjectRepo) UpdateIconSet(_ context.Context, id int64, blob []byte, total int) error {
	r.updated = append([]byte(nil), blob...)
	r.project.IconSetJSON = r.updated
	r.project.Total = total
	return nil
}

func newIconsTestRouter(t *testing.T) (*gin.Engine, *stubProjectRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	store, err := snapshot.NewStore(t.TempDir())
	require.NoError(t, err)
	blob, err := iconset.New("acme-icons", "Acme", "alice").Export()
	require.NoError(t, err)

	repo := &stubProjectRepo{project: &entity.Project{ID: 1, Prefix: "acme-icons", IconSetJSON: blob}}
	svc := application.NewProjectService(repo, store, nil, nil, nil, "", nil)
	h := NewProjectHandler(svc, nil, nil)

	r := gin.New()
	r.POST("/project/icons/add", h.AddIcons)
	r.POST("/project/icons/remove", h.RemoveIcons)
	return r, repo
}

type envelope struct {
	Code  int `json:"code"`
	Error any `json:"error"`
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) envelope {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAddIconsRejectsIncompleteDefinition(t *testing.T) {
	r, repo := newIconsTestRouter(t)

	env := postJSON(t, r, "/project/icons/add", `{"projectId":1,"icons":{"star":{}}}`)
	assert.Equal(t, http.StatusBadRequest, env.Code)
	details, ok := env.Error.(map[string]any)
	require.True(t, ok, "error should carry per-field details, got %v", env.Error)
	assert.Contains(t, details, "body")
	assert.Contains(t, details, "width")
	assert.Contains(t, details, "height")
	assert.Nil(t, repo.updated, "invalid payload must not reach the document")
}

func TestAddIconsRejectsMissingDimensions(t *testing.T) {
	r, repo := newIconsTestRouter(t)

	env := postJSON(t, r, "/project/icons/add", `{"projectId":1,"icons":{"star":{"body":"<g/>"}}}`)
	assert.Equal(t, http.StatusBadRequest, env.Code)
	assert.Nil(t, repo.updated)
}

func TestAddIconsAcceptsZeroDimensions(t *testing.T) {
	r, repo := newIconsTestRouter(t)

	env := postJSON(t, r, "/project/icons/add",
		`{"projectId":1,"icons":{"star":{"body":"<path d=\"M0 0h24v24H0z\"/>","width":0,"height":0}}}`)
	assert.Equal(t, http.StatusOK, env.Code)

	require.NotNil(t, repo.updated)
	set, err := iconset.Parse(repo.updated)
	require.NoError(t, err)
	assert.True(t, set.Exists("star"))
}

func TestRemoveIconsEmptyListIsNoop(t *testing.T) {
	r, repo := newIconsTestRouter(t)

	env := postJSON(t, r, "/project/icons/remove", `{"projectId":1,"icons":[]}`)
	assert.Equal(t, http.StatusOK, env.Code)
	require.NotNil(t, repo.updated)
	set, err := iconset.Parse(repo.updated)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Count())
}

func TestRemoveIconsMissingListRejected(t *testing.T) {
	r, _ := newIconsTestRouter(t)

	env := postJSON(t, r, "/project/icons/remove", `{"projectId":1}`)
	assert.Equal(t, http.StatusBadRequest, env.Code)
}
