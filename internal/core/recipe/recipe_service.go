package recipe

import (
	"context"
	"fmt"
	"math"
	"strings"

	"snap2cook/internal/core/ai/service"
	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/pkg/common"

	"go.uber.org/zap"
)

// Completer 執行模型呼叫，由 service.Service 實作
type Completer interface {
	Complete(ctx context.Context, c service.Completion) (string, error)
}

// RecipeService 食譜生成服務
// --------------------------------------------------
type RecipeService struct {
	ai          Completer
	model       string
	temperature float64
}

// NewRecipeService 創建新的食譜生成服務
func NewRecipeService(ai Completer, cfg config.LLMConfig) *RecipeService {
	return &RecipeService{
		ai:          ai,
		model:       cfg.Model,
		temperature: cfg.RecipeTemperature,
	}
}

// Generate 根據 pantry 生成食譜；模型失敗或輸出無效時回傳備用食譜，永不回傳錯誤
func (s *RecipeService) Generate(ctx context.Context, req common.RecipeRequest) Outcome {
	requestID := common.RequestIDFrom(ctx)

	content, err := s.ai.Complete(ctx, service.Completion{
		Operation:   "recipe_generate",
		Model:       s.model,
		Prompt:      buildRecipePrompt(req),
		Temperature: s.temperature,
	})
	if err != nil {
		common.LogWarn("食譜模型呼叫失敗，使用備用食譜",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		return fallbackOutcome(req, err)
	}

	recipe, err := parseRecipe(content)
	if err != nil {
		common.LogModelOutput("食譜模型輸出無效，使用備用食譜", content, err, requestID)
		return fallbackOutcome(req, err)
	}

	common.LogDebug("食譜生成完成",
		zap.String("title", recipe.Title),
		zap.Int("ingredients", len(recipe.Ingredients)),
		zap.String("request_id", requestID),
	)

	return Outcome{Recipe: recipe, Source: SourceModel}
}

func fallbackOutcome(req common.RecipeRequest, cause error) Outcome {
	return Outcome{Recipe: Fallback(req), Source: SourceFallback, Cause: cause}
}

// parseRecipe 從模型文字中取出食譜並驗證
func parseRecipe(content string) (common.Recipe, error) {
	var raw modelRecipe
	if err := common.ExtractJSON(content, common.ObjectBracket, &raw); err != nil {
		return common.Recipe{}, err
	}

	switch {
	case raw.Title == nil:
		return common.Recipe{}, fmt.Errorf("title is missing")
	case raw.Nutrition == nil:
		return common.Recipe{}, fmt.Errorf("nutrition is missing")
	case raw.Confidence == nil:
		return common.Recipe{}, fmt.Errorf("confidence is missing")
	}

	recipe := common.Recipe{
		Title:        strings.TrimSpace(*raw.Title),
		Ingredients:  raw.Ingredients,
		Instructions: raw.Instructions,
		Nutrition:    *raw.Nutrition,
		MissingItems: raw.MissingItems,
	}
	if recipe.MissingItems == nil {
		recipe.MissingItems = []string{}
	}
	if raw.Explanation != nil {
		recipe.Explanation = strings.TrimSpace(*raw.Explanation)
	}

	confidence, err := common.ParseNumber(raw.Confidence)
	if err != nil {
		return common.Recipe{}, fmt.Errorf("confidence: %w", err)
	}
	recipe.Confidence = confidence

	if raw.EstimatedTimeMinutes != nil {
		minutes, err := common.ParseNumber(raw.EstimatedTimeMinutes)
		if err != nil {
			return common.Recipe{}, fmt.Errorf("estimated_time_minutes: %w", err)
		}
		recipe.EstimatedTimeMinutes = common.IntPtr(int(math.Round(minutes)))
	}

	if err := ValidateRecipe(recipe); err != nil {
		return common.Recipe{}, err
	}
	return recipe, nil
}
