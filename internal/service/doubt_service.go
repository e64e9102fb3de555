package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"studentportal/internal/completion"
	"studentportal/internal/ratelimit"
	"studentportal/pkg/metrics"
)

const (
	doubtSystemPrompt = "You are a helpful educational assistant. Answer student doubts in a very precise and short manner."
	doubtMaxTokens    = 512
	doubtTemperature  = 0.7
)

type DoubtSolverService struct {
	completer completion.TextCompleter
	limiter   ratelimit.Limiter
	logger    *zap.Logger
}

func NewDoubtSolverService(completer completion.TextCompleter, limiter ratelimit.Limiter, logger *zap.Logger) *DoubtSolverService {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &DoubtSolverService{completer: completer, limiter: limiter, logger: logger}
}

// Solve asks the completion service about message on behalf of clientKey.
// Errors from the completer are returned unchanged, including completion.ErrMissingCredential.
func (s *DoubtSolverService) Solve(ctx context.Context, clientKey, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrDoubtRequired
	}

	// a limiter error already admitted the request
	if ok, _ := s.limiter.Allow(ctx, clientKey); !ok {
		metrics.IncrementRateLimited("doubt_solver")
		return "", ErrRateLimited
	}

	answer, err := s.completer.Complete(ctx, completion.Request{
		SystemPrompt: doubtSystemPrompt,
		UserMessage:  message,
		MaxTokens:    doubtMaxTokens,
		Temperature:  doubtTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
