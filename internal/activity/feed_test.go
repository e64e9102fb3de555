package activity

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankMentions(t *testing.T) {
	raw := map[string]string{"#math": "3", "#exam": "3", "#optics": "1", "#bad": "x"}

	got := rankMentions(raw, 2)
	assert.Equal(t, []MentionCount{{"#exam", 3}, {"#math", 3}}, got)

	assert.Len(t, rankMentions(raw, 0), 3)
}

func TestFeedAgainstRedis(t *testing.T) {
	addr := os.Getenv("PORTAL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PORTAL_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	f := NewFeed(rdb, "test-"+uuid.NewString(), 2)
	at := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, f.Record(ctx, Entry{Kind: KindQuery, QueryID: 1, Text: "q1", Tags: []string{"#math"}, At: at}))
	require.NoError(t, f.Record(ctx, Entry{Kind: KindAnswer, QueryID: 1, AnswerID: 1, Text: "a1", At: at}))
	require.NoError(t, f.Record(ctx, Entry{Kind: KindAnswer, QueryID: 1, AnswerID: 2, Text: "a2", At: at}))

	recent, err := f.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "a2", recent[0].Text)
	assert.Equal(t, "a1", recent[1].Text)

	top, err := f.TopMentions(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []MentionCount{{"#math", 1}}, top)

	n, err := f.AnswerCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = f.AnswerCount(ctx, 99)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, f.Reset(ctx))
	recent, err = f.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
	n, err = f.AnswerCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}
