package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studentportal/internal/completion"
)

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) (bool, error) { return false, nil }

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return true, errors.New("redis down")
}

func TestDoubtSolver(t *testing.T) {
	var got completion.Request
	completer := completion.Func(func(_ context.Context, req completion.Request) (string, error) {
		got = req
		return "\n  Newton's second law.  \n", nil
	})
	svc := NewDoubtSolverService(completer, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Solve(ctx, "c", "   ")
	assert.ErrorIs(t, err, ErrDoubtRequired)

	out, err := svc.Solve(ctx, "c", " What is F=ma? ")
	require.NoError(t, err)
	assert.Equal(t, "Newton's second law.", out)
	assert.Equal(t, "What is F=ma?", got.UserMessage)
	assert.Equal(t, doubtSystemPrompt, got.SystemPrompt)
	assert.Equal(t, 512, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
}

func TestDoubtSolverErrors(t *testing.T) {
	ctx := context.Background()
	missing := completion.Func(func(context.Context, completion.Request) (string, error) {
		return "", completion.ErrMissingCredential
	})

	_, err := NewDoubtSolverService(missing, nil, zap.NewNop()).Solve(ctx, "c", "hi")
	assert.ErrorIs(t, err, completion.ErrMissingCredential)

	_, err = NewDoubtSolverService(missing, denyLimiter{}, zap.NewNop()).Solve(ctx, "c", "hi")
	assert.ErrorIs(t, err, ErrRateLimited)

	ok := completion.Func(func(context.Context, completion.Request) (string, error) { return "yes", nil })
	out, err := NewDoubtSolverService(ok, brokenLimiter{}, zap.NewNop()).Solve(ctx, "c", "hi")
	require.NoError(t, err)
	assert.Equal(t, "yes", out)
}

func TestVideoCatalogPick(t *testing.T) {
	c := NewVideoCatalog(nil)
	ids := make(map[string]bool)
	for _, v := range c.Videos() {
		ids[v.ID] = true
	}
	require.Len(t, ids, 5)

	for n := 0; n < 100; n++ {
		sel := c.Pick()
		assert.True(t, ids[sel.Current.ID])
		require.Len(t, sel.Upcoming, 4)
		seen := make(map[string]bool)
		for _, v := range sel.Upcoming {
			assert.True(t, ids[v.ID])
			assert.False(t, seen[v.ID], "duplicate upcoming video %s", v.ID)
			seen[v.ID] = true
		}
	}
}
