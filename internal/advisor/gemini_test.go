package advisor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	calls  int
	text   string
	err    error
	block  bool
	config *genai.GenerateContentConfig
	prompt string
}

func (f *fakeModels) GenerateContent(ctx context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.config = cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestGenerate(t *testing.T) {
	t.Run("returns_text_verbatim", func(t *testing.T) {
		fake := &fakeModels{text: "## 💡 Verdict of the Week\n**Save** more"}
		g := newGemini(fake, "", time.Second)

		out, err := g.Generate(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "## 💡 Verdict of the Week\n**Save** more", out)
		assert.Equal(t, defaultModel, g.Model())
		assert.Equal(t, "prompt", fake.prompt)
		assert.Equal(t, 1, fake.calls)
	})

	cases := []struct {
		name string
		fake *fakeModels
		want error
	}{
		{name: "empty_response", fake: &fakeModels{text: "   "}, want: ErrEmptyResponse},
		{name: "unauthorized", fake: &fakeModels{err: genai.APIError{Code: 401, Message: "unauthenticated"}}, want: ErrInvalidCredential},
		{name: "bad_api_key", fake: &fakeModels{err: genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key."}}, want: ErrInvalidCredential},
		{name: "pointer_api_error", fake: &fakeModels{err: &genai.APIError{Code: 403, Message: "permission denied"}}, want: ErrInvalidCredential},
		{name: "server_error", fake: &fakeModels{err: genai.APIError{Code: 500, Message: "internal"}}, want: ErrFailed},
		{name: "transport_error", fake: &fakeModels{err: fmt.Errorf("dial tcp: %w", errors.New("connection refused"))}, want: ErrFailed},
		{name: "timeout", fake: &fakeModels{block: true}, want: ErrTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGemini(tc.fake, "m", 20*time.Millisecond)
			_, err := g.Generate(context.Background(), "prompt")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestExtractProduct(t *testing.T) {
	categories := []string{"Market", "Shopping"}

	t.Run("parses_json", func(t *testing.T) {
		fake := &fakeModels{text: "```json\n{\"description\": \"Noise cancelling headphones\", \"amount\": 349.999, \"category\": \"shopping\"}\n```"}
		g := newGemini(fake, "m", time.Second)

		got, err := g.ExtractProduct(context.Background(), "https://shop.example/headphones-x", categories)
		require.NoError(t, err)
		assert.Equal(t, "Noise cancelling headphones", got.Description)
		assert.Equal(t, "350", got.Amount.String())
		assert.Equal(t, "Shopping", got.Category)
		require.NotNil(t, fake.config)
		assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
		assert.Contains(t, fake.prompt, "https://shop.example/headphones-x")
		assert.Contains(t, fake.prompt, "Market, Shopping")
	})

	t.Run("unknown_category_dropped", func(t *testing.T) {
		fake := &fakeModels{text: `{"description": "Thing", "amount": -3, "category": "Gadgets"}`}
		got, err := newGemini(fake, "m", time.Second).ExtractProduct(context.Background(), "u", categories)
		require.NoError(t, err)
		assert.Empty(t, got.Category)
		assert.True(t, got.Amount.IsZero())
	})

	t.Run("invalid_json", func(t *testing.T) {
		fake := &fakeModels{text: "I cannot open links"}
		_, err := newGemini(fake, "m", time.Second).ExtractProduct(context.Background(), "u", categories)
		assert.ErrorIs(t, err, ErrFailed)
	})
}

func TestUnconfigured(t *testing.T) {
	a, err := New(context.Background(), "", "", time.Second)
	require.NoError(t, err)

	_, err = a.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = a.ExtractProduct(context.Background(), "u", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
