package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studentportal/internal/config"
	"studentportal/pkg/trace"
)

type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAIClient(config.CompletionConfig{
		APIKey:  apiKey,
		Model:   "gpt-3.5-turbo",
		BaseURL: srv.URL + "/v1",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestOpenAIClientComplete(t *testing.T) {
	var got chatRequest
	var gotTrace, gotAuth string

	c := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotTrace = r.Header.Get(trace.HeaderName())
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Force is mass times acceleration.  "},"finish_reason":"stop"}]}`))
	})

	ctx := trace.WithContext(context.Background(), "trace-123")
	out, err := c.Complete(ctx, Request{
		SystemPrompt: "be brief",
		UserMessage:  "What is force?",
		MaxTokens:    512,
		Temperature:  0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "  Force is mass times acceleration.  ", out)

	assert.Equal(t, "trace-123", gotTrace)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be brief", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "What is force?", got.Messages[1].Content)
}

func TestOpenAIClientMissingKey(t *testing.T) {
	called := false
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.Complete(context.Background(), Request{UserMessage: "hi"})
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.False(t, called)
}

func TestOpenAIClientUpstreamError(t *testing.T) {
	c := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
	})

	_, err := c.Complete(context.Background(), Request{UserMessage: "hi"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingCredential)
}

func TestOpenAIClientNoChoices(t *testing.T) {
	c := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Complete(context.Background(), Request{UserMessage: "hi"})
	assert.ErrorIs(t, err, errEmptyChoices)
}

func TestFunc(t *testing.T) {
	var tc TextCompleter = Func(func(_ context.Context, r Request) (string, error) {
		return "echo: " + r.UserMessage, nil
	})
	out, err := tc.Complete(context.Background(), Request{UserMessage: "x"})
	require.NoError(t, err)
	assert.Equal(t, "echo: x", out)
}
