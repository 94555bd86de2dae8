package recipe

import (
	"context"
	"net/http"
	"strings"

	"snap2cook/internal/api/handlers"
	"snap2cook/internal/api/middleware"
	recipeService "snap2cook/internal/core/recipe"
	"snap2cook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SourceHeader 標示食譜來自模型或備用食譜
const SourceHeader = "X-Recipe-Source"

// Generator 產生食譜
type Generator interface {
	Generate(ctx context.Context, req common.RecipeRequest) recipeService.Outcome
}

// Recognizer 辨識食材
type Recognizer interface {
	Recognize(ctx context.Context, in recipeService.RecognitionInput) ([]common.IngredientObservation, error)
}

// DietLookup 查詢使用者儲存的飲食偏好
type DietLookup interface {
	DietPreference(ctx context.Context, username string) string
}

// Handler 食譜處理程序
type Handler struct {
	recipes       Generator
	ingredients   Recognizer
	diets         DietLookup
	maxImageBytes int64
}

// NewHandler 創建新的食譜處理程序；diets 可為 nil
func NewHandler(recipes Generator, ingredients Recognizer, diets DietLookup, maxImageBytes int64) *Handler {
	return &Handler{
		recipes:       recipes,
		ingredients:   ingredients,
		diets:         diets,
		maxImageBytes: maxImageBytes,
	}
}

// HandleGenerate 依 pantry 生成食譜，模型失敗時回傳備用食譜
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req common.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if strings.TrimSpace(req.Diet) == "" && h.diets != nil {
		if username, ok := middleware.Username(c); ok {
			req.Diet = h.diets.DietPreference(ctx, username)
		}
	}

	normalized, err := recipeService.NormalizeRequest(req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	outcome := h.recipes.Generate(ctx, normalized)
	if outcome.UsedFallback() {
		common.LogWarn("回傳備用食譜",
			zap.Error(outcome.Cause),
			zap.Int("pantry_items", len(normalized.Pantry)),
			zap.String("request_id", common.RequestIDFrom(ctx)),
		)
	}

	c.Header(SourceHeader, string(outcome.Source))
	c.JSON(http.StatusOK, outcome.Recipe)
}
