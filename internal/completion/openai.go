package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"studentportal/internal/config"
	"studentportal/pkg/circuitbreaker"
	"studentportal/pkg/metrics"
	"studentportal/pkg/otel"
	"studentportal/pkg/trace"
)

var errEmptyChoices = errors.New("completion returned no choices")

// OpenAIClient calls an OpenAI-compatible chat completion endpoint behind a circuit breaker.
type OpenAIClient struct {
	client *openai.Client
	model  string
	apiKey string
	cb     *circuitbreaker.CircuitBreaker
	logger *zap.Logger
}

func NewOpenAIClient(cfg config.CompletionConfig, logger *zap.Logger) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: traceTransport{next: http.DefaultTransport},
	}

	cbConfig := circuitbreaker.DefaultConfig()
	cbConfig.OnStateChange = func(from, to circuitbreaker.State) {
		logger.Warn("Completion circuit breaker state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()))
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		cb:     circuitbreaker.NewCircuitBreaker(cbConfig),
		logger: logger,
	}
}

// Complete returns the first choice's message content as sent by the service.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingCredential
	}

	ctx, span := otel.StartSpan(ctx, "completion.chat")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model))

	var content string
	err := c.cb.Execute(func() error {
		start := time.Now()
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: req.UserMessage},
			},
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		})
		latency := time.Since(start)

		if err != nil {
			metrics.RecordCompletionCallLatency(c.model, statusOf(err), latency)
			return err
		}
		metrics.RecordCompletionCallLatency(c.model, "success", latency)

		if len(resp.Choices) == 0 {
			return errEmptyChoices
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return content, nil
}

func statusOf(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%d", apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("%d", reqErr.HTTPStatusCode)
	}
	return "error"
}

// traceTransport forwards the request trace id to the completion service.
type traceTransport struct {
	next http.RoundTripper
}

func (t traceTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if id := trace.FromContext(r.Context()); id != "" {
		r = r.Clone(r.Context())
		r.Header.Set(trace.HeaderName(), id)
	}
	return t.next.RoundTrip(r)
}
