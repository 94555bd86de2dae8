package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"snap2cook/internal/core/ai/service"
	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/pkg/common"
	"snap2cook/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRecipeJSON = `{
  "title": "Tomato Egg Scramble",
  "ingredients": [{"name": "tomato", "qty": "2"}, {"name": "egg", "qty": "3"}],
  "instructions": ["Chop the tomatoes.", "Scramble with eggs."],
  "nutrition": {"calories": 320, "protein": 18, "carbs": 12, "fat": 20},
  "missing_items": [],
  "estimated_time_minutes": 15,
  "confidence": 0.9,
  "explanation": "Quick and simple."
}`

func llmConfig() config.LLMConfig {
	return config.LLMConfig{
		Model:             "recipe/model",
		VisionModel:       "vision/model",
		MaxTokens:         500,
		Timeout:           time.Second,
		RecipeTemperature: 0.7,
		VisionTemperature: 0.2,
	}
}

func newRecipeService(fake *testhelpers.FakeProvider) *RecipeService {
	cfg := llmConfig()
	return NewRecipeService(service.NewService(fake, nil, cfg), cfg)
}

func pantryRequest(items ...string) common.RecipeRequest {
	req, err := NormalizeRequest(common.RecipeRequest{Pantry: items})
	if err != nil {
		panic(err)
	}
	return req
}

func TestGenerate_ReturnsModelRecipe(t *testing.T) {
	fake := testhelpers.NewFakeProvider(validRecipeJSON)
	svc := newRecipeService(fake)

	out := svc.Generate(context.Background(), pantryRequest("tomato", "egg"))

	assert.Equal(t, SourceModel, out.Source)
	assert.False(t, out.UsedFallback())
	assert.NoError(t, out.Cause)
	assert.Equal(t, "Tomato Egg Scramble", out.Recipe.Title)
	assert.Len(t, out.Recipe.Ingredients, 2)
	assert.Equal(t, 15, *out.Recipe.EstimatedTimeMinutes)
	assert.InDelta(t, 0.9, out.Recipe.Confidence, 1e-9)

	req := fake.LastRequest()
	assert.Equal(t, "recipe/model", req.Model)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
	assert.Contains(t, req.Messages[0].Text, "tomato, egg")
	assert.Empty(t, req.Messages[0].Images)
}

func TestGenerate_ProviderErrorUsesFallback(t *testing.T) {
	fake := testhelpers.NewFakeProvider()
	fake.Err = errors.New("upstream down")
	req := pantryRequest("rice", "beans")

	out := newRecipeService(fake).Generate(context.Background(), req)

	assert.True(t, out.UsedFallback())
	assert.Error(t, out.Cause)
	assert.Equal(t, Fallback(req), out.Recipe)
}

func TestGenerate_RecoversRecipeFromProseAndFences(t *testing.T) {
	wrapped := "Sure! Here is your recipe:\n```json\n" + validRecipeJSON + "\n```\nEnjoy!"
	out := newRecipeService(testhelpers.NewFakeProvider(wrapped)).
		Generate(context.Background(), pantryRequest("tomato"))

	require.Equal(t, SourceModel, out.Source)
	assert.Equal(t, "Tomato Egg Scramble", out.Recipe.Title)
}

func TestGenerate_NoBracesUsesFallback(t *testing.T) {
	req := pantryRequest("tomato")
	out := newRecipeService(testhelpers.NewFakeProvider("I cannot help with that.")).
		Generate(context.Background(), req)

	assert.True(t, out.UsedFallback())
	assert.Equal(t, FallbackTitle, out.Recipe.Title)
	assert.ErrorIs(t, out.Cause, common.ErrNoJSONFound)
}

func TestGenerate_InvalidRecipeUsesFallback(t *testing.T) {
	cases := map[string]string{
		"missing nutrition":   `{"title":"x","ingredients":["a"],"instructions":["b"],"missing_items":[],"confidence":0.5}`,
		"empty ingredients":   `{"title":"x","ingredients":[],"instructions":["b"],"nutrition":{"calories":1,"protein":1,"carbs":1,"fat":1},"confidence":0.5}`,
		"confidence too high": `{"title":"x","ingredients":["a"],"instructions":["b"],"nutrition":{"calories":1,"protein":1,"carbs":1,"fat":1},"confidence":7}`,
		"blank title":         `{"title":"  ","ingredients":["a"],"instructions":["b"],"nutrition":{"calories":1,"protein":1,"carbs":1,"fat":1},"confidence":0.5}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			out := newRecipeService(testhelpers.NewFakeProvider(body)).
				Generate(context.Background(), pantryRequest("a"))
			assert.True(t, out.UsedFallback())
		})
	}
}

func TestGenerate_LenientModelValues(t *testing.T) {
	body := `{"title":"Soup","ingredients":["water","salt"],"instructions":["Boil."],` +
		`"nutrition":{"calories":"120 kcal","protein":"2g","carbs":5,"fat":0},` +
		`"estimated_time_minutes":"20 minutes","confidence":"0.8","explanation":"ok"}`

	out := newRecipeService(testhelpers.NewFakeProvider(body)).
		Generate(context.Background(), pantryRequest("water"))

	require.Equal(t, SourceModel, out.Source, "cause: %v", out.Cause)
	assert.Equal(t, []string{}, out.Recipe.MissingItems)
	assert.Equal(t, 20, *out.Recipe.EstimatedTimeMinutes)
	assert.InDelta(t, 120, out.Recipe.Nutrition.Calories, 1e-9)
	assert.Equal(t, "water", out.Recipe.Ingredients[0].Name)
}

func TestGenerate_TimeoutUsesFallback(t *testing.T) {
	fake := testhelpers.NewFakeProvider(validRecipeJSON)
	fake.Delay = 200 * time.Millisecond

	cfg := llmConfig()
	cfg.Timeout = 20 * time.Millisecond
	svc := NewRecipeService(service.NewService(fake, nil, cfg), cfg)

	out := svc.Generate(context.Background(), pantryRequest("tomato"))
	assert.True(t, out.UsedFallback())
	assert.ErrorIs(t, out.Cause, context.DeadlineExceeded)
}

func TestFallback_MirrorsPantry(t *testing.T) {
	recipe := Fallback(pantryRequest("rice", "beans", "corn"))

	assert.Equal(t, FallbackTitle, recipe.Title)
	require.Len(t, recipe.Ingredients, 3)
	assert.Equal(t, "beans", recipe.Ingredients[1].Name)
	assert.NotNil(t, recipe.MissingItems)
	assert.Empty(t, recipe.MissingItems)
	assert.NoError(t, ValidateRecipe(recipe))
	assert.True(t, strings.Contains(strings.ToLower(recipe.Explanation), "fallback"))
}

func TestBuildRecipePrompt_IncludesPreferences(t *testing.T) {
	req, err := NormalizeRequest(common.RecipeRequest{
		Pantry:        []string{"chicken", "rice"},
		Diet:          "high-protein",
		CalorieTarget: common.IntPtr(600),
		Constraints: &common.Constraint{
			TimeMinutes: common.IntPtr(30),
			Equipment:   []string{"wok"},
			Cuisine:     "thai",
		},
		Mode: "strict",
	})
	require.NoError(t, err)

	prompt := buildRecipePrompt(req)
	for _, want := range []string{"chicken, rice", "high-protein", "600", "30 minutes", "wok", "thai", "Use only the pantry items", "missing_items"} {
		assert.Contains(t, prompt, want)
	}
}
