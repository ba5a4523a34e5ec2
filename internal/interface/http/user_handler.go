package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/iconforge/iconforge-backend/internal/application"
	"github.com/iconforge/iconforge-backend/internal/interface/middleware"
	"github.com/iconforge/iconforge-backend/pkg/helpers"
	"github.com/iconforge/iconforge-backend/pkg/response"
	"github.com/iconforge/iconforge-backend/pkg/validation"
)

type UserHandler struct {
	Svc     *application.UserService
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewUserHandler(svc *application.UserService, cookies *helpers.CookieManager, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

func (h *UserHandler) setSessionCookies(c *gin.Context, pair application.TokenPair) {
	if h.Cookies != nil {
		h.Cookies.SetPair(c, pair.Access, h.Svc.JWT.AccessTTL, pair.Refresh, h.Svc.JWT.RefreshTTL)
	}
}

type registerRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
	Pwd   string `json:"pwd" binding:"required,pwd"`
}

type loginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Pwd   string `json:"pwd" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register POST /api/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, validation.ToDetails(err))
		return
	}
	u, pair, err := h.Svc.Register(c.Request.Context(), req.Email, req.Name, req.Pwd)
	if err != nil {
		if !errors.Is(err, application.ErrEmailTaken) && h.Logger != nil {
			h.Logger.WithError(err).Warn("register failed")
		}
		response.Fail(c, err.Error())
		return
	}
	h.setSessionCookies(c, pair)
	response.OKWithToken(c, u, pair.Access)
}

// Login POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, validation.ToDetails(err))
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Pwd)
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	h.setSessionCookies(c, pair)
	response.OKWithToken(c, u, pair.Access)
}

// Refresh POST /api/refresh
// The refresh token arrives as the refresh_token cookie or in the JSON body.
func (h *UserHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie("refresh_token")
	if token == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		response.Fail(c, application.ErrInvalidRefresh.Error())
		return
	}
	u, pair, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	h.setSessionCookies(c, pair)
	response.OKWithToken(c, u, pair.Access)
}

// Logout POST /api/logout
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), middleware.UserID(c)); err != nil {
		response.Fail(c, err.Error())
		return
	}
	if h.Cookies != nil {
		h.Cookies.Clear(c)
	}
	response.OK(c, nil)
}

// Search GET /api/users/search?keyword=
func (h *UserHandler) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	users, err := h.Svc.Search(c.Request.Context(), keyword, 10)
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, users)
}

// Profile GET /api/profile
func (h *UserHandler) Profile(c *gin.Context) {
	u, err := h.Svc.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.OK(c, u)
}
