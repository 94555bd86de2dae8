package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"snap2cook/internal/core/ai/provider"
	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client OpenAI 相容的 chat completions 客戶端（OpenRouter 與 Azure OpenAI）
type Client struct {
	client     *resty.Client
	azure      bool
	model      string
	apiVersion string
	maxTokens  int
	timeout    time.Duration
}

type imageURL struct {
	URL string `json:"url"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
	Error *apiError      `json:"error,omitempty"`
}

type apiError struct {
	Message string      `json:"message"`
	Code    interface{} `json:"code"`
}

// NewClient 創建 chat completions 客戶端
func NewClient(cfg config.LLMConfig) *Client {
	c := &Client{
		azure:      cfg.Provider == config.ProviderAzure,
		model:      cfg.Model,
		apiVersion: cfg.APIVersion,
		maxTokens:  cfg.MaxTokens,
		timeout:    cfg.Timeout,
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	if c.azure {
		client.SetHeader("api-key", cfg.APIKey)
	} else {
		client.SetAuthToken(cfg.APIKey).
			SetHeader("HTTP-Referer", "https://snap2cook-frontend-sbgg.vercel.app").
			SetHeader("X-Title", "Snap2Cook")
	}
	c.client = client

	return c
}

// Generate 發送一次 chat completion 請求
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	body := chatRequest{
		Messages:    toChatMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	}

	r := c.client.R().SetContext(ctx)
	path := "/chat/completions"
	if c.azure {
		// Azure 以 deployment 路徑指定模型
		path = fmt.Sprintf("/openai/deployments/%s/chat/completions", model)
		r.SetQueryParam("api-version", c.apiVersion)
	} else {
		body.Model = model
	}

	resp, err := r.SetBody(body).Post(path)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to model API: %w", err)
	}

	var result chatResponse
	parseErr := json.Unmarshal(resp.Body(), &result)

	if resp.StatusCode() != http.StatusOK {
		msg := sanitizeResponse(resp.Body())
		if parseErr == nil && result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		common.LogError("Model API returned error",
			zap.Int("status", resp.StatusCode()),
			zap.String("model", model),
			zap.String("response", common.Truncate(msg, 300)),
		)
		return nil, fmt.Errorf("model API returned status %d: %s", resp.StatusCode(), msg)
	}

	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", parseErr)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in model response")
	}

	return &provider.Response{
		Content: result.Choices[0].Message.Content,
		Model:   result.Model,
		Usage:   result.Usage,
	}, nil
}

// GetModel 獲取當前使用的模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.timeout
}

// Close resty 無需釋放資源
func (c *Client) Close() error {
	return nil
}

func toChatMessages(messages []provider.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		if len(m.Images) == 0 {
			out = append(out, chatMessage{Role: m.Role, Content: m.Text})
			continue
		}

		parts := []contentPart{{Type: "text", Text: m.Text}}
		for _, img := range m.Images {
			parts = append(parts, contentPart{
				Type:     "image_url",
				ImageURL: &imageURL{URL: img.DataURL()},
			})
		}
		out = append(out, chatMessage{Role: m.Role, Content: parts})
	}
	return out
}

// sanitizeResponse 清理響應內容，移除所有圖片數據
func sanitizeResponse(body []byte) string {
	s := string(body)
	if strings.Contains(s, "data:image/") || (len(s) > 100 && strings.Contains(s, "base64")) {
		return "[IMAGE_DATA_REMOVED]"
	}
	return s
}
