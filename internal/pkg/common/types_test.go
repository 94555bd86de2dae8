package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeIngredient_AcceptsStringsAndObjects(t *testing.T) {
	var got []RecipeIngredient
	raw := `["2 eggs", {"name":"rice","qty":"1 cup"}, {"name":"salt","quantity":1}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &got))

	assert.Equal(t, []RecipeIngredient{
		{Name: "2 eggs"},
		{Name: "rice", Qty: "1 cup"},
		{Name: "salt", Qty: "1"},
	}, got)
}

func TestNutrition_LenientNumbers(t *testing.T) {
	var n Nutrition
	raw := `{"calories": 420, "protein": "18g", "carbs": "55.5 g", "fat": 12}`
	require.NoError(t, json.Unmarshal([]byte(raw), &n))

	assert.Equal(t, Nutrition{Calories: 420, Protein: 18, Carbs: 55.5, Fat: 12}, n)
}

func TestNutrition_MissingOrNonNumeric(t *testing.T) {
	var n Nutrition
	assert.Error(t, json.Unmarshal([]byte(`{"calories": 1, "protein": 2, "carbs": 3}`), &n))
	assert.Error(t, json.Unmarshal([]byte(`{"calories": "lots", "protein": 2, "carbs": 3, "fat": 1}`), &n))
}

func TestRecipe_OmitsEmptyEstimatedTime(t *testing.T) {
	data, err := json.Marshal(Recipe{Instructions: []string{"cook"}, MissingItems: []string{}})
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "estimated_time_minutes")
	assert.Contains(t, out, `"missing_items":[]`)
}

func TestCustomError_WrapAndMatch(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := ErrAIServiceError.WithError(cause)

	assert.True(t, errors.Is(err, ErrAIServiceError))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "dial tcp: timeout")
	assert.Nil(t, ErrAIServiceError.Err)

	ce, ok := AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeAIServiceError, ce.Code)
}

func TestValidationError(t *testing.T) {
	err := NewFieldError("pantry", "must not be empty")
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "pantry: must not be empty", err.Error())
	assert.False(t, IsValidationError(errors.New("plain")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "番茄...", Truncate("番茄炒蛋", 2))
}
