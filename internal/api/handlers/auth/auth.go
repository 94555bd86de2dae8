package auth

import (
	"context"
	"net/http"

	"snap2cook/internal/api/handlers"
	"snap2cook/internal/api/middleware"
	authService "snap2cook/internal/core/auth"
	"snap2cook/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Service 身分驗證操作
type Service interface {
	Signup(ctx context.Context, username, password, diet string) error
	Login(ctx context.Context, username, password string) (*authService.Token, error)
	Me(ctx context.Context, username string) (*authService.Profile, error)
	UpdateDiet(ctx context.Context, username, diet string) (*authService.Profile, error)
}

// SignupRequest 註冊請求
type SignupRequest struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required"`
	DietPreference string `json:"diet_preference"`
}

// LoginRequest 登入請求，支援 OAuth2 password 表單與 JSON
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// UpdateMeRequest 更新個人資料
type UpdateMeRequest struct {
	DietPreference string `json:"diet_preference"`
}

// Handler 身分驗證處理程序
type Handler struct {
	svc Service
}

// NewHandler 創建身分驗證處理程序
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// HandleSignup 註冊
func (h *Handler) HandleSignup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBindError(c, err)
		return
	}

	if err := h.svc.Signup(c.Request.Context(), req.Username, req.Password, req.DietPreference); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User created successfully"})
}

// HandleLogin 登入並回傳 bearer token
func (h *Handler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		handlers.RespondBindError(c, err)
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// HandleMe 取得目前使用者
func (h *Handler) HandleMe(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		handlers.RespondError(c, common.ErrUnauthorized)
		return
	}

	profile, err := h.svc.Me(c.Request.Context(), username)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// HandleUpdateMe 更新飲食偏好
func (h *Handler) HandleUpdateMe(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		handlers.RespondError(c, common.ErrUnauthorized)
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBindError(c, err)
		return
	}

	profile, err := h.svc.UpdateDiet(c.Request.Context(), username, req.DietPreference)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
