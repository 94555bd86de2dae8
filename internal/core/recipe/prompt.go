package recipe

import (
	"fmt"
	"strings"

	"snap2cook/internal/pkg/common"
)

// visionPrompt 影像辨識提示詞
const visionPrompt = `You are an AI kitchen assistant.
Analyze the given image and identify all visible food ingredients.
Return ONLY a JSON array like this:
[{"name": "ingredient_name", "confidence": 0.95}]
Do not include any other text or explanation.`

// buildRecipePrompt 依請求組合食譜提示詞
func buildRecipePrompt(req common.RecipeRequest) string {
	var b strings.Builder

	b.WriteString("You are an AI chef assistant.\n")
	fmt.Fprintf(&b, "Given these pantry items: %s,\n", strings.Join(req.Pantry, ", "))
	fmt.Fprintf(&b, "Diet preference: %s.\n", req.Diet)

	if req.CalorieTarget != nil {
		fmt.Fprintf(&b, "Target roughly %d calories per serving.\n", *req.CalorieTarget)
	}

	if c := req.Constraints; c != nil {
		if c.TimeMinutes != nil {
			fmt.Fprintf(&b, "The dish must be ready within %d minutes.\n", *c.TimeMinutes)
		}
		if len(c.Equipment) > 0 {
			fmt.Fprintf(&b, "Only use this equipment: %s.\n", strings.Join(c.Equipment, ", "))
		}
		if c.Cuisine != "" {
			fmt.Fprintf(&b, "Cuisine style: %s.\n", c.Cuisine)
		}
	}

	if req.Mode == ModeStrict {
		b.WriteString("Use only the pantry items plus basic staples (salt, pepper, oil, water). List anything else you would need in missing_items.\n")
	} else {
		b.WriteString("You may suggest a few extra ingredients; list every one not in the pantry in missing_items.\n")
	}

	b.WriteString(`Generate a recipe strictly in valid JSON with keys:
title, ingredients, instructions, nutrition, missing_items, estimated_time_minutes, confidence, explanation.
ingredients is a list of {"name": string, "qty": string}.
instructions is a list of strings.
nutrition is {"calories": number, "protein": number, "carbs": number, "fat": number}.
missing_items is a list of strings.
estimated_time_minutes is an integer and confidence is a number between 0 and 1.
Do NOT include markdown or text outside JSON.`)

	return b.String()
}
