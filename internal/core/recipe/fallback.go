package recipe

import "snap2cook/internal/pkg/common"

// FallbackTitle 備用食譜的固定標題
const FallbackTitle = "Fallback Quick Dish"

const (
	fallbackQty         = "as needed"
	fallbackInstruction = "Combine the available ingredients in a pan, season to taste, and cook until everything is heated through."
	fallbackExplanation = "Fallback recipe used: the recipe model was unavailable or returned an invalid response, so this placeholder was built from your pantry items."
	fallbackMinutes     = 15
	fallbackConfidence  = 0.6
)

// Fallback 依請求產生固定的備用食譜，每個 pantry 項目對應一個食材
func Fallback(req common.RecipeRequest) common.Recipe {
	ingredients := make([]common.RecipeIngredient, 0, len(req.Pantry))
	for _, item := range req.Pantry {
		ingredients = append(ingredients, common.RecipeIngredient{Name: item, Qty: fallbackQty})
	}

	return common.Recipe{
		Title:                FallbackTitle,
		Ingredients:          ingredients,
		Instructions:         []string{fallbackInstruction},
		Nutrition:            common.Nutrition{Calories: 200, Protein: 5, Carbs: 30, Fat: 3},
		MissingItems:         []string{},
		EstimatedTimeMinutes: common.IntPtr(fallbackMinutes),
		Confidence:           fallbackConfidence,
		Explanation:          fallbackExplanation,
	}
}
