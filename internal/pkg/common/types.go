package common

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// IngredientObservation 辨識出的食材
type IngredientObservation struct {
	Name       string   `json:"name"`
	Confidence *float64 `json:"confidence,omitempty"`
	Qty        string   `json:"qty,omitempty"`
}

// Constraint 烹飪限制
type Constraint struct {
	TimeMinutes *int     `json:"time_minutes,omitempty"`
	Equipment   []string `json:"equipment,omitempty"`
	Cuisine     string   `json:"cuisine,omitempty"`
}

// RecipeRequest 食譜生成請求
type RecipeRequest struct {
	Pantry        []string    `json:"pantry"`
	Diet          string      `json:"diet,omitempty"`
	CalorieTarget *int        `json:"calorie_target,omitempty"`
	Constraints   *Constraint `json:"constraints,omitempty"`
	Mode          string      `json:"mode,omitempty"`
}

// RecipeIngredient 食譜中的食材與用量
type RecipeIngredient struct {
	Name string `json:"name"`
	Qty  string `json:"qty"`
}

// UnmarshalJSON 同時接受 {"name","qty"} 物件與單純字串
func (i *RecipeIngredient) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		i.Name = plain
		i.Qty = ""
		return nil
	}

	var obj struct {
		Name     string      `json:"name"`
		Qty      interface{} `json:"qty"`
		Quantity interface{} `json:"quantity"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	i.Name = obj.Name
	i.Qty = stringify(obj.Qty)
	if i.Qty == "" {
		i.Qty = stringify(obj.Quantity)
	}
	return nil
}

// Nutrition 營養估算
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

var leadingNumber = regexp.MustCompile(`^-?\d+(\.\d+)?`)

// UnmarshalJSON 四個欄位皆必填，接受數字或以數字開頭的字串（如 "12g"）
func (n *Nutrition) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := []struct {
		key string
		dst *float64
	}{
		{"calories", &n.Calories},
		{"protein", &n.Protein},
		{"carbs", &n.Carbs},
		{"fat", &n.Fat},
	}
	for _, f := range fields {
		val, ok := raw[f.key]
		if !ok {
			return fmt.Errorf("nutrition.%s is missing", f.key)
		}
		num, err := ParseNumber(val)
		if err != nil {
			return fmt.Errorf("nutrition.%s: %w", f.key, err)
		}
		*f.dst = num
	}
	return nil
}

// Recipe 食譜，對外輸出的標準格式
type Recipe struct {
	Title                string             `json:"title"`
	Ingredients          []RecipeIngredient `json:"ingredients"`
	Instructions         []string           `json:"instructions"`
	Nutrition            Nutrition          `json:"nutrition"`
	MissingItems         []string           `json:"missing_items"`
	EstimatedTimeMinutes *int               `json:"estimated_time_minutes,omitempty"`
	Confidence           float64            `json:"confidence"`
	Explanation          string             `json:"explanation"`
}

// Float64Ptr 回傳指標
func Float64Ptr(v float64) *float64 {
	return &v
}

// IntPtr 回傳指標
func IntPtr(v int) *int {
	return &v
}

// ParseNumber 將 JSON 解出的數值或以數字開頭的字串轉為 float64
func ParseNumber(val interface{}) (float64, error) {
	switch v := val.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("not a finite number")
		}
		return v, nil
	case json.Number:
		return v.Float64()
	case string:
		m := leadingNumber.FindString(strings.TrimSpace(v))
		if m == "" {
			return 0, fmt.Errorf("%q is not numeric", v)
		}
		return strconv.ParseFloat(m, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", val)
	}
}

func stringify(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
