package recipe

import (
	"fmt"
	"math"
	"strings"

	"snap2cook/internal/pkg/common"
)

// 請求預設值與限制
const (
	DefaultDiet = "normal"

	ModeCreative = "creative"
	ModeStrict   = "strict"

	maxPantryItems    = 50
	maxNameLength     = 100
	maxCalorieTarget  = 10000
	maxTimeConstraint = 24 * 60
)

// NormalizeRequest 驗證並整理食譜請求，補上預設值
func NormalizeRequest(req common.RecipeRequest) (common.RecipeRequest, error) {
	out := common.RecipeRequest{
		Diet: strings.TrimSpace(req.Diet),
		Mode: strings.ToLower(strings.TrimSpace(req.Mode)),
	}

	pantry, err := cleanList("pantry", req.Pantry)
	if err != nil {
		return out, err
	}
	if len(pantry) == 0 {
		return out, common.NewFieldError("pantry", "must contain at least one ingredient")
	}
	if len(pantry) > maxPantryItems {
		return out, common.NewFieldError("pantry", fmt.Sprintf("must not exceed %d items", maxPantryItems))
	}
	out.Pantry = pantry

	if out.Diet == "" {
		out.Diet = DefaultDiet
	}

	switch out.Mode {
	case "":
		out.Mode = ModeCreative
	case ModeCreative, ModeStrict:
	default:
		return out, common.NewFieldError("mode", fmt.Sprintf("must be %q or %q", ModeCreative, ModeStrict))
	}

	if req.CalorieTarget != nil {
		if *req.CalorieTarget <= 0 || *req.CalorieTarget > maxCalorieTarget {
			return out, common.NewFieldError("calorie_target", fmt.Sprintf("must be between 1 and %d", maxCalorieTarget))
		}
		out.CalorieTarget = common.IntPtr(*req.CalorieTarget)
	}

	if c := req.Constraints; c != nil {
		constraint := &common.Constraint{Cuisine: strings.TrimSpace(c.Cuisine)}
		if c.TimeMinutes != nil {
			if *c.TimeMinutes <= 0 || *c.TimeMinutes > maxTimeConstraint {
				return out, common.NewFieldError("constraints.time_minutes", fmt.Sprintf("must be between 1 and %d", maxTimeConstraint))
			}
			constraint.TimeMinutes = common.IntPtr(*c.TimeMinutes)
		}
		if constraint.Equipment, err = cleanList("constraints.equipment", c.Equipment); err != nil {
			return out, err
		}
		out.Constraints = constraint
	}

	return out, nil
}

// ValidateRecipe 檢查食譜是否符合輸出格式
func ValidateRecipe(r common.Recipe) error {
	if strings.TrimSpace(r.Title) == "" {
		return common.NewFieldError("title", "is required")
	}

	if len(r.Ingredients) == 0 {
		return common.NewFieldError("ingredients", "must not be empty")
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return common.NewFieldError(fmt.Sprintf("ingredients[%d].name", i), "is required")
		}
	}

	if len(r.Instructions) == 0 {
		return common.NewFieldError("instructions", "must not be empty")
	}
	for i, step := range r.Instructions {
		if strings.TrimSpace(step) == "" {
			return common.NewFieldError(fmt.Sprintf("instructions[%d]", i), "must not be blank")
		}
	}

	nutrition := map[string]float64{
		"calories": r.Nutrition.Calories,
		"protein":  r.Nutrition.Protein,
		"carbs":    r.Nutrition.Carbs,
		"fat":      r.Nutrition.Fat,
	}
	for name, v := range nutrition {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return common.NewFieldError("nutrition."+name, "must be a non-negative number")
		}
	}

	if r.MissingItems == nil {
		return common.NewFieldError("missing_items", "must be a list")
	}

	if r.EstimatedTimeMinutes != nil && *r.EstimatedTimeMinutes < 0 {
		return common.NewFieldError("estimated_time_minutes", "must not be negative")
	}

	if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
		return common.NewFieldError("confidence", "must be between 0 and 1")
	}

	return nil
}

// cleanList 去除空白項目，並限制長度
func cleanList(field string, items []string) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if len([]rune(item)) > maxNameLength {
			return nil, common.NewFieldError(field, fmt.Sprintf("items must be at most %d characters", maxNameLength))
		}
		out = append(out, item)
	}
	return out, nil
}
