package testhelpers

import (
	"context"
	"sync"
	"time"

	"snap2cook/internal/core/ai/provider"
)

// FakeProvider 可程式化的模型供應商，用於測試
type FakeProvider struct {
	mu sync.Mutex

	// Responses 依序回傳，用完後重複最後一個
	Responses []string
	Err       error
	Delay     time.Duration

	requests []provider.Request
}

// NewFakeProvider 建立回傳固定內容的供應商
func NewFakeProvider(responses ...string) *FakeProvider {
	return &FakeProvider{Responses: responses}
}

// Generate 記錄請求並回傳預設內容
func (f *FakeProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	idx := len(f.requests) - 1
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}

	content := ""
	if n := len(f.Responses); n > 0 {
		if idx >= n {
			idx = n - 1
		}
		content = f.Responses[idx]
	}
	return &provider.Response{Content: content, Model: req.Model}, nil
}

// GetModel 固定模型名稱
func (f *FakeProvider) GetModel() string {
	return "fake/model"
}

// GetTimeout 預設逾時
func (f *FakeProvider) GetTimeout() time.Duration {
	return time.Second
}

// Close 無動作
func (f *FakeProvider) Close() error {
	return nil
}

// Calls 已收到的請求數
func (f *FakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// LastRequest 最後一次請求
func (f *FakeProvider) LastRequest() provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return provider.Request{}
	}
	return f.requests[len(f.requests)-1]
}
