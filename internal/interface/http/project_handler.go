package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/iconforge/iconforge-backend/internal/application"
	"github.com/iconforge/iconforge-backend/internal/interface/middleware"
	"github.com/iconforge/iconforge-backend/pkg/iconset"
	"github.com/iconforge/iconforge-backend/pkg/response"
	"github.com/iconforge/iconforge-backend/pkg/validation"
)

type ProjectHandler struct {
	Svc    *application.ProjectService
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewProjectHandler(svc *application.ProjectService, users *application.UserService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Svc: svc, Users: users, Logger: logger}
}

type createProjectRequest struct {
	Prefix  string  `json:"prefix" binding:"required,prefix"`
	Name    string  `json:"name" binding:"required"`
	Desc    string  `json:"desc"`
	UserIDs []int64 `json:"userIds"`
	Logo    string  `json:"logo"`
}

// iconDefinition mirrors the accepted icon payload: body, width, and height
// must be present, but zero view-box values are valid, hence the pointers.
type iconDefinition struct {
	Body   string   `json:"body" binding:"required"`
	Left   float64  `json:"left"`
	Top    float64  `json:"top"`
	Width  *float64 `json:"width" binding:"required"`
	Height *float64 `json:"height" binding:"required"`
	HFlip  bool     `json:"hFlip"`
	VFlip  bool     `json:"vFlip"`
}

type addIconsRequest struct {
	ProjectID int64                     `json:"projectId" binding:"required"`
	Icons     map[string]iconDefinition `json:"icons" binding:"required,dive"`
}

type removeIconsRequest struct {
	ProjectID int64    `json:"projectId" binding:"required"`
	Icons     []string `json:"icons" binding:"required"`
}

type memberRequest struct {
	ProjectID int64 `json:"projectId" binding:"required"`
	UserID    int64 `json:"userId" binding:"required"`
}

// queryID parses a numeric identifier arriving as a query string value.
func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, name+" is required")
		return 0, false
	}
	return id, true
}

// Create POST /api/project/create
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, validation.ToDetails(err))
		return
	}
	owner, err := h.Users.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	doc, err := h.Svc.CreateProject(c.Request.Context(), owner, application.CreateProjectInput{
		Prefix:  req.Prefix,
		Name:    req.Name,
		Desc:    req.Desc,
		UserIDs: req.UserIDs,
		Logo:    req.Logo,
	})
	if err != nil {
		if errors.Is(err, application.ErrPrefixExists) {
			response.FailMessage(c, err.Error())
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("prefix", req.Prefix).Error("create project failed")
		}
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, doc)
}

// List GET /api/project/list
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.Svc.ListProjects(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, projects)
}

// Info GET /api/project/info?prefix=
func (h *ProjectHandler) Info(c *gin.Context) {
	prefix := c.Query("prefix")
	if prefix == "" {
		response.Fail(c, "prefix is required")
		return
	}
	info, err := h.Svc.ProjectInfo(c.Request.Context(), prefix)
	if err != nil {
		if errors.Is(err, application.ErrCollectionNotFound) {
			response.Fail(c, "iconset returned 404")
			return
		}
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, info)
}

// AddIcons POST /api/project/icons/add
func (h *ProjectHandler) AddIcons(c *gin.Context) {
	var req addIconsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, validation.ToDetails(err))
		return
	}
	icons := make(map[string]iconset.Icon, len(req.Icons))
	for name, def := range req.Icons {
		icons[name] = iconset.Icon{
			Body: def.Body,
			Left: def.Left, Top: def.Top,
			Width: *def.Width, Height: *def.Height,
			HFlip: def.HFlip, VFlip: def.VFlip,
		}
	}
	if err := h.Svc.AddIcons(c.Request.Context(), req.ProjectID, icons); err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, nil)
}

// RemoveIcons POST /api/project/icons/remove
func (h *ProjectHandler) RemoveIcons(c *gin.Context) {
	var req removeIconsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, validation.ToDetails(err))
		return
	}
	if err := h.Svc.RemoveIcons(c.Request.Context(), req.ProjectID, req.Icons); err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, nil)
}

// PackJSON GET /api/project/pack/json?projectId=
func (h *ProjectHandler) PackJSON(c *gin.Context) {
	projectID, ok := queryID(c, "projectId")
	if !ok {
		return
	}
	doc, err := h.Svc.PackJSON(c.Request.Context(), projectID)
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, gin.H{"projectIconSetJSON": doc})
}

// UploadLogo POST /api/project/logo (multipart: projectId, file)
func (h *ProjectHandler) UploadLogo(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.PostForm("projectId"), 10, 64)
	if err != nil || projectID <= 0 {
		response.Fail(c, "projectId is required")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadLogo(c.Request.Context(), projectID, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, gin.H{"logo": url})
}

// AddMember POST /api/project/member/add
func (h *ProjectHandler) AddMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, validation.ToDetails(err))
		return
	}
	if err := h.Svc.AddMember(c.Request.Context(), req.ProjectID, req.UserID); err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, nil)
}

// RemoveMember POST /api/project/member/remove
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, validation.ToDetails(err))
		return
	}
	if err := h.Svc.RemoveMember(c.Request.Context(), req.ProjectID, req.UserID); err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, nil)
}

// MemberList GET /api/project/member/list?projectId=
func (h *ProjectHandler) MemberList(c *gin.Context) {
	projectID, ok := queryID(c, "projectId")
	if !ok {
		return
	}
	members, err := h.Svc.MemberList(c.Request.Context(), projectID)
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, members)
}

// MemberInfo GET /api/project/member/info?projectId=
// Returns the requesting user's membership rows for the project.
func (h *ProjectHandler) MemberInfo(c *gin.Context) {
	projectID, ok := queryID(c, "projectId")
	if !ok {
		return
	}
	members, err := h.Svc.MemberInfo(c.Request.Context(), projectID, middleware.UserID(c))
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, members)
}
