package recipe

import (
	"snap2cook/internal/pkg/common"
)

// Source 食譜來源
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Outcome 食譜生成結果，模型失敗時 Recipe 為備用食譜
type Outcome struct {
	Recipe common.Recipe
	Source Source
	// Cause 使用備用食譜的原因
	Cause error
}

// UsedFallback 是否使用了備用食譜
func (o Outcome) UsedFallback() bool {
	return o.Source == SourceFallback
}

// RecognitionInput 食材辨識的輸入，兩者皆有時以食材清單為準
type RecognitionInput struct {
	Ingredients []string
	Image       []byte
}

// modelRecipe 模型輸出的原始結構，必填欄位以指標判斷是否存在
type modelRecipe struct {
	Title                *string                   `json:"title"`
	Ingredients          []common.RecipeIngredient `json:"ingredients"`
	Instructions         []string                  `json:"instructions"`
	Nutrition            *common.Nutrition         `json:"nutrition"`
	MissingItems         []string                  `json:"missing_items"`
	EstimatedTimeMinutes interface{}               `json:"estimated_time_minutes"`
	Confidence           interface{}               `json:"confidence"`
	Explanation          *string                   `json:"explanation"`
}
