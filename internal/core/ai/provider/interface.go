package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"
)

// Image 隨訊息送出的圖片
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURL 轉為 data:image/...;base64, 格式
func (i Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, base64.StdEncoding.EncodeToString(i.Data))
}

// Message 表示與 AI 模型的對話消息
type Message struct {
	Role   string
	Text   string
	Images []Image
}

// Request 表示發送到 AI 提供者的請求
type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Usage token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response 表示從 AI 提供者收到的響應
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Generate 生成 AI 響應
	Generate(ctx context.Context, req *Request) (*Response, error)

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// GetTimeout 獲取請求超時時間
	GetTimeout() time.Duration

	// Close 關閉提供者連接
	Close() error
}

// UserMessage 建立單一使用者訊息
func UserMessage(text string, images ...Image) Message {
	return Message{Role: "user", Text: text, Images: images}
}
