package cookbook

import (
	"context"
	"net/http"
	"strconv"

	"snap2cook/internal/api/handlers"
	"snap2cook/internal/api/middleware"
	cookbookService "snap2cook/internal/core/cookbook"
	"snap2cook/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Service 收藏食譜操作
type Service interface {
	Save(ctx context.Context, username string, req cookbookService.SaveRequest) (uint, error)
	List(ctx context.Context, username string) ([]cookbookService.SavedRecipe, error)
	Delete(ctx context.Context, username string, id uint) error
}

// Handler 收藏食譜處理程序
type Handler struct {
	svc Service
}

// NewHandler 創建收藏食譜處理程序
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// HandleSave 收藏食譜
func (h *Handler) HandleSave(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		handlers.RespondError(c, common.ErrUnauthorized)
		return
	}

	var req cookbookService.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBindError(c, err)
		return
	}

	id, err := h.svc.Save(c.Request.Context(), username, req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe saved successfully!", "recipe_id": id})
}

// HandleList 列出收藏
func (h *Handler) HandleList(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		handlers.RespondError(c, common.ErrUnauthorized)
		return
	}

	recipes, err := h.svc.List(c.Request.Context(), username)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// HandleDelete 刪除收藏
func (h *Handler) HandleDelete(c *gin.Context) {
	username, ok := middleware.Username(c)
	if !ok {
		handlers.RespondError(c, common.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		handlers.RespondError(c, common.NewFieldError("id", "must be a positive integer"))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), username, uint(id)); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully!"})
}
