package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iconforge/iconforge-backend/internal/container"
	handlers "github.com/iconforge/iconforge-backend/internal/interface/http"
	"github.com/iconforge/iconforge-backend/internal/interface/middleware"
	"github.com/iconforge/iconforge-backend/pkg/helpers"
)

// ProjectModule wires project, icon, and membership routes. Everything here
// requires an authenticated session.
type ProjectModule struct {
	Handler *handlers.ProjectHandler
	JWT     *helpers.JWTManager
}

func NewProjectModule(h *handlers.ProjectHandler, jwt *helpers.JWTManager) *ProjectModule {
	return &ProjectModule{Handler: h, JWT: jwt}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/project")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/create", m.Handler.Create)
		auth.GET("/list", m.Handler.List)
		auth.GET("/info", m.Handler.Info)

		auth.POST("/icons/add", m.Handler.AddIcons)
		auth.POST("/icons/remove", m.Handler.RemoveIcons)
		auth.GET("/pack/json", m.Handler.PackJSON)
		auth.POST("/logo", m.Handler.UploadLogo)

		auth.POST("/member/add", m.Handler.AddMember)
		auth.POST("/member/remove", m.Handler.RemoveMember)
		auth.GET("/member/list", m.Handler.MemberList)
		auth.GET("/member/info", m.Handler.MemberInfo)
	}
}
