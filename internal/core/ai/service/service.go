package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snap2cook/internal/core/ai/cache"
	"snap2cook/internal/core/ai/gemini"
	"snap2cook/internal/core/ai/openrouter"
	"snap2cook/internal/core/ai/provider"
	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/pkg/common"

	"go.uber.org/zap"
)

// Completion 單次模型呼叫的參數
type Completion struct {
	Operation   string
	Model       string
	Prompt      string
	Images      []provider.Image
	Temperature float64
	// CacheKey 為空時不使用快取
	CacheKey string
	// Validate 通過才寫入快取
	Validate func(content string) error
}

// Service AI 服務
type Service struct {
	provider  provider.Provider
	cache     cache.Store
	timeout   time.Duration
	maxTokens int
}

// NewProvider 依設定建立模型供應商
func NewProvider(ctx context.Context, cfg config.LLMConfig) (provider.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.NewClient(ctx, cfg)
	case config.ProviderOpenRouter, config.ProviderAzure:
		return openrouter.NewClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// NewService 創建 AI 服務；store 可為 nil
func NewService(p provider.Provider, store cache.Store, cfg config.LLMConfig) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = p.GetTimeout()
	}
	return &Service{
		provider:  p,
		cache:     store,
		timeout:   timeout,
		maxTokens: cfg.MaxTokens,
	}
}

// Complete 執行一次模型呼叫並回傳文字內容
func (s *Service) Complete(ctx context.Context, c Completion) (string, error) {
	requestID := common.RequestIDFrom(ctx)

	if c.CacheKey != "" && s.cache != nil {
		val, err := s.cache.Get(ctx, c.CacheKey)
		switch {
		case err == nil:
			common.LogCacheHit(c.Operation)
			return val, nil
		case errors.Is(err, common.ErrCacheMiss):
			common.LogCacheMiss(c.Operation)
		default:
			common.LogWarn("快取讀取失敗", zap.Error(err), zap.String("request_id", requestID))
		}
	}

	model := c.Model
	if model == "" {
		model = s.provider.GetModel()
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.provider.Generate(callCtx, &provider.Request{
		Model:       model,
		Messages:    []provider.Message{provider.UserMessage(c.Prompt, c.Images...)},
		MaxTokens:   s.maxTokens,
		Temperature: c.Temperature,
	})
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("model call timed out after %s: %w", s.timeout, err)
	}
	common.LogAICall(c.Operation, model, time.Since(start), err, requestID)
	if err != nil {
		return "", err
	}

	if c.CacheKey != "" && s.cache != nil && (c.Validate == nil || c.Validate(resp.Content) == nil) {
		if err := s.cache.Set(ctx, c.CacheKey, resp.Content); err != nil {
			common.LogWarn("快取寫入失敗", zap.Error(err), zap.String("request_id", requestID))
		}
	}

	return resp.Content, nil
}

// Close 關閉供應商連線
func (s *Service) Close() error {
	return s.provider.Close()
}
