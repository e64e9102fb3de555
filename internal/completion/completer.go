// Package completion wraps the hosted text-completion service used by the doubt solver.
package completion

import (
	"context"
	"errors"
)

// ErrMissingCredential no API key is configured.
var ErrMissingCredential = errors.New("completion api key not configured")

// Request is a single-turn chat completion.
type Request struct {
	SystemPrompt string
	UserMessage  string
	MaxTokens    int
	Temperature  float32
}

// TextCompleter produces a reply for one request.
type TextCompleter interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to TextCompleter.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
