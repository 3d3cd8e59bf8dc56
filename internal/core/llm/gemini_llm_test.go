package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseText(t *testing.T) {
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`[{"text":"Jane",`),
				genai.Blob{MIMEType: "image/png"},
				genai.Text(`"type":"PERSON"}]`),
			}},
		}},
	}
	assert.Equal(t, `[{"text":"Jane","type":"PERSON"}]`, responseText(resp))
}

func TestNewGeminiLLMRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := NewGeminiLLM(context.Background(), "", "")
	require.Error(t, err)
}
