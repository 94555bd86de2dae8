package recipe

import (
	"context"
	"fmt"
	"strings"

	"snap2cook/internal/core/ai/provider"
	"snap2cook/internal/core/ai/service"
	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/pkg/common"

	"go.uber.org/zap"
)

// manualConfidence 使用者手動輸入的食材信心值
const manualConfidence = 0.98

// ImageNormalizer 圖片前處理，由 image.Service 實作
type ImageNormalizer interface {
	Normalize(data []byte) (provider.Image, error)
}

// IngredientService 食材識別服務
type IngredientService struct {
	ai          Completer
	images      ImageNormalizer
	model       string
	temperature float64
	useCache    bool
}

// NewIngredientService 創建新的食材識別服務
func NewIngredientService(ai Completer, images ImageNormalizer, cfg config.LLMConfig, useCache bool) *IngredientService {
	return &IngredientService{
		ai:          ai,
		images:      images,
		model:       cfg.VisionModelName(),
		temperature: cfg.VisionTemperature,
		useCache:    useCache,
	}
}

// Recognize 辨識食材；有食材清單時直接使用，否則送圖片給視覺模型
func (s *IngredientService) Recognize(ctx context.Context, in RecognitionInput) ([]common.IngredientObservation, error) {
	if names := cleanNames(in.Ingredients); len(names) > 0 {
		out := make([]common.IngredientObservation, 0, len(names))
		for _, name := range names {
			out = append(out, common.IngredientObservation{
				Name:       strings.ToLower(name),
				Confidence: common.Float64Ptr(manualConfidence),
			})
		}
		return out, nil
	}

	if len(in.Image) > 0 {
		return s.recognizeImage(ctx, in.Image)
	}

	return nil, common.ErrNoRecognitionInput
}

func (s *IngredientService) recognizeImage(ctx context.Context, data []byte) ([]common.IngredientObservation, error) {
	requestID := common.RequestIDFrom(ctx)

	img, err := s.images.Normalize(data)
	if err != nil {
		return nil, err
	}

	completion := service.Completion{
		Operation:   "ingredient_recognize",
		Model:       s.model,
		Prompt:      visionPrompt,
		Images:      []provider.Image{img},
		Temperature: s.temperature,
		Validate: func(content string) error {
			_, err := parseObservations(content)
			return err
		},
	}
	if s.useCache {
		completion.CacheKey = fmt.Sprintf("vision:%s:%s", s.model, common.HashBytes(img.Data))
	}

	content, err := s.ai.Complete(ctx, completion)
	if err != nil {
		common.LogError("視覺模型呼叫失敗", zap.Error(err), zap.String("request_id", requestID))
		return nil, common.ErrAIServiceError.WithError(err)
	}

	observations, err := parseObservations(content)
	if err != nil {
		common.LogModelOutput("視覺模型輸出無法解析", content, err, requestID)
		return nil, common.ErrInvalidModelOutput.WithError(err)
	}

	common.LogInfo("食材辨識完成",
		zap.Int("count", len(observations)),
		zap.String("request_id", requestID),
	)
	return observations, nil
}

// HasManualIngredients 是否帶有非空白的食材清單
func (in RecognitionInput) HasManualIngredients() bool {
	return len(cleanNames(in.Ingredients)) > 0
}

// cleanNames 拆分逗號分隔的項目並去除空白
func cleanNames(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseObservations 解析視覺模型輸出的 JSON 陣列，元素可為物件或字串
func parseObservations(content string) ([]common.IngredientObservation, error) {
	var raw []interface{}
	if err := common.ExtractJSON(content, common.ArrayBracket, &raw); err != nil {
		return nil, err
	}

	out := make([]common.IngredientObservation, 0, len(raw))
	for i, item := range raw {
		var obs common.IngredientObservation
		switch v := item.(type) {
		case string:
			obs.Name = v
		case map[string]interface{}:
			name, _ := v["name"].(string)
			obs.Name = name
			if c, ok := v["confidence"]; ok && c != nil {
				conf, err := common.ParseNumber(c)
				if err != nil {
					return nil, fmt.Errorf("item %d confidence: %w", i, err)
				}
				obs.Confidence = common.Float64Ptr(clamp(conf, 0, 1))
			}
			if qty, ok := v["qty"].(string); ok {
				obs.Qty = strings.TrimSpace(qty)
			}
		default:
			return nil, fmt.Errorf("item %d has unexpected type %T", i, item)
		}

		obs.Name = strings.ToLower(strings.TrimSpace(obs.Name))
		if obs.Name == "" {
			continue
		}
		out = append(out, obs)
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
