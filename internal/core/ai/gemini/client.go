package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"snap2cook/internal/core/ai/provider"
	"snap2cook/internal/infrastructure/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client Google Gemini 供應商
type Client struct {
	client    *genai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewClient 創建 Gemini 客戶端
func NewClient(ctx context.Context, cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}, nil
}

// Generate 以單次 GenerateContent 呼叫產生回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	name := req.Model
	if name == "" {
		name = c.model
	}

	// 每次請求建立 model，避免共享參數
	model := c.client.GenerativeModel(name)
	model.SetTemperature(float32(req.Temperature))
	if maxTokens := firstPositive(req.MaxTokens, c.maxTokens); maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	resp, err := model.GenerateContent(ctx, toParts(req.Messages)...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	content := collectText(resp)
	if content == "" {
		return nil, fmt.Errorf("no candidates in gemini response")
	}

	out := &provider.Response{Content: content, Model: name}
	if resp.UsageMetadata != nil {
		out.Usage = provider.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

// GetModel 獲取當前使用的模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.timeout
}

// Close 關閉 gRPC 連線
func (c *Client) Close() error {
	return c.client.Close()
}

func toParts(messages []provider.Message) []genai.Part {
	var parts []genai.Part
	for _, m := range messages {
		if m.Text != "" {
			parts = append(parts, genai.Text(m.Text))
		}
		for _, img := range m.Images {
			parts = append(parts, genai.ImageData(imageFormat(img.MIMEType), img.Data))
		}
	}
	return parts
}

// imageFormat image/jpeg -> jpeg
func imageFormat(mimeType string) string {
	if f := strings.TrimPrefix(mimeType, "image/"); f != "" && f != mimeType {
		return f
	}
	return "jpeg"
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
