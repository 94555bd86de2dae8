package openrouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"snap2cook/internal/core/ai/provider"
	"snap2cook/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		Provider:   config.ProviderOpenRouter,
		BaseURL:    baseURL,
		APIKey:     "sk-test",
		Model:      "test/model",
		APIVersion: "2024-08-01-preview",
		MaxTokens:  256,
		Timeout:    5 * time.Second,
	}
}

func TestGenerate_TextAndImageParts(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"test/model","choices":[{"message":{"content":"[{\"name\":\"egg\"}]"}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	client := NewClient(newTestConfig(srv.URL))
	resp, err := client.Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{
			provider.UserMessage("list ingredients", provider.Image{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}),
		},
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"egg"}]`, resp.Content)
	assert.Equal(t, 42, resp.Usage.TotalTokens)

	assert.Equal(t, "test/model", captured["model"])
	assert.InDelta(t, 0.2, captured["temperature"], 1e-9)
	assert.EqualValues(t, 256, captured["max_tokens"])

	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 1)
	parts := messages[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].(map[string]interface{})["type"])
	imagePart := parts[1].(map[string]interface{})
	assert.Equal(t, "image_url", imagePart["type"])
	assert.Equal(t, "data:image/jpeg;base64,/9g=", imagePart["image_url"].(map[string]interface{})["url"])
}

func TestGenerate_PlainTextContent(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(newTestConfig(srv.URL))
	_, err := client.Generate(context.Background(), &provider.Request{
		Model:       "override/model",
		Messages:    []provider.Message{provider.UserMessage("make a recipe")},
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "override/model", captured["model"])
	msg := captured["messages"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "make a recipe", msg["content"])
}

func TestGenerate_AzureDialect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-08-01-preview", r.URL.Query().Get("api-version"))
		assert.Equal(t, "sk-test", r.Header.Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	cfg := newTestConfig(srv.URL)
	cfg.Provider = config.ProviderAzure
	cfg.Model = "gpt-4o"

	resp, err := NewClient(cfg).Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
}

func TestGenerate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","code":429}}`))
	}))
	defer srv.Close()

	_, err := NewClient(newTestConfig(srv.URL)).Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(newTestConfig(srv.URL)).Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	assert.ErrorContains(t, err, "no choices")
}

func TestGenerate_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 讀完請求體後伺服器才會偵測到連線中斷
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()
	defer srv.CloseClientConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(newTestConfig(srv.URL)).Generate(ctx, &provider.Request{
		Messages: []provider.Message{provider.UserMessage("hi")},
	})
	assert.Error(t, err)
}

func TestSanitizeResponse(t *testing.T) {
	assert.Equal(t, "[IMAGE_DATA_REMOVED]", sanitizeResponse([]byte(`{"echo":"data:image/jpeg;base64,AAAA"}`)))
	assert.Equal(t, `{"error":"bad"}`, sanitizeResponse([]byte(`{"error":"bad"}`)))
}
