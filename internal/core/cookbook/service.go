package cookbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"snap2cook/internal/infrastructure/database"
	"snap2cook/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxRating = 5

// SaveRequest 收藏食譜的請求，RecipeData 可為字串或 JSON 物件
type SaveRequest struct {
	Title      string          `json:"title"`
	RecipeData json.RawMessage `json:"recipe_data"`
	Rating     float64         `json:"rating"`
}

// SavedRecipe 回傳給前端的收藏食譜
type SavedRecipe struct {
	ID         uint    `json:"id"`
	Title      string  `json:"title"`
	Rating     float64 `json:"rating"`
	RecipeData string  `json:"recipe_data"`
	CreatedAt  string  `json:"created_at"`
}

// Service 收藏食譜服務，所有操作都限定在單一使用者
type Service struct {
	db *gorm.DB
}

// NewService 創建新的收藏食譜服務
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Save 儲存食譜並回傳編號
func (s *Service) Save(ctx context.Context, username string, req SaveRequest) (uint, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return 0, common.NewFieldError("title", "is required")
	}
	if math.IsNaN(req.Rating) || req.Rating < 0 || req.Rating > maxRating {
		return 0, common.NewFieldError("rating", fmt.Sprintf("must be between 0 and %d", maxRating))
	}

	data, err := recipeDataText(req.RecipeData)
	if err != nil {
		return 0, err
	}

	row := database.SavedRecipe{
		Username:   username,
		Title:      title,
		RecipeData: data,
		Rating:     req.Rating,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to save recipe: %w", err)
	}

	common.LogInfo("食譜已收藏", zap.String("username", username), zap.Uint("recipe_id", row.ID))
	return row.ID, nil
}

// List 依編號順序列出使用者的收藏
func (s *Service) List(ctx context.Context, username string) ([]SavedRecipe, error) {
	var rows []database.SavedRecipe
	if err := s.db.WithContext(ctx).Where("username = ?", username).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	out := make([]SavedRecipe, 0, len(rows))
	for _, r := range rows {
		out = append(out, SavedRecipe{
			ID:         r.ID,
			Title:      r.Title,
			Rating:     r.Rating,
			RecipeData: r.RecipeData,
			CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// Delete 刪除使用者自己的收藏，不屬於該使用者時視為不存在
func (s *Service) Delete(ctx context.Context, username string, id uint) error {
	var row database.SavedRecipe
	err := s.db.WithContext(ctx).Where("id = ? AND username = ?", id, username).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrRecipeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up recipe: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&row).Error; err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	common.LogInfo("收藏食譜已刪除", zap.String("username", username), zap.Uint("recipe_id", id))
	return nil
}

// recipeDataText 字串原樣保存，其他 JSON 值壓縮後保存
func recipeDataText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", common.NewFieldError("recipe_data", "is required")
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", common.NewFieldError("recipe_data", "must be a string or an object")
		}
		return s, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", common.NewFieldError("recipe_data", "must be a string or an object")
	}
	return buf.String(), nil
}
