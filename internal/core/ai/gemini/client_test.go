package gemini

import (
	"context"
	"testing"

	"snap2cook/internal/core/ai/provider"
	"snap2cook/internal/infrastructure/config"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), config.LLMConfig{Provider: config.ProviderGemini})
	assert.ErrorContains(t, err, "api key")
}

func TestToParts(t *testing.T) {
	parts := toParts([]provider.Message{
		provider.UserMessage("what is this?", provider.Image{MIMEType: "image/png", Data: []byte{1, 2}}),
	})
	require.Len(t, parts, 2)
	assert.Equal(t, genai.Text("what is this?"), parts[0])

	blob, ok := parts[1].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, []byte{1, 2}, blob.Data)
}

func TestImageFormat(t *testing.T) {
	assert.Equal(t, "webp", imageFormat("image/webp"))
	assert.Equal(t, "jpeg", imageFormat(""))
	assert.Equal(t, "jpeg", imageFormat("application/octet-stream"))
}

func TestCollectText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"title":`), genai.Text(`"X"}`)}},
		}},
	}
	assert.Equal(t, `{"title":"X"}`, collectText(resp))
	assert.Equal(t, "", collectText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", collectText(nil))
}
