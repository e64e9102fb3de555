// Package activity keeps a Redis projection of recent doubt forum activity.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KindQuery  = "query"
	KindAnswer = "answer"

	DefaultSize = 100
)

// Entry is one line of the feed.
type Entry struct {
	Kind     string    `json:"kind"`
	QueryID  int       `json:"query_id"`
	AnswerID int       `json:"answer_id,omitempty"`
	Text     string    `json:"text"`
	Tags     []string  `json:"tags,omitempty"`
	At       time.Time `json:"at"`
}

type MentionCount struct {
	Mention string `json:"mention"`
	Count   int64  `json:"count"`
}

// Feed stores entries under prefix. The list holds at most size entries, newest first.
type Feed struct {
	rdb    *redis.Client
	prefix string
	size   int64
}

func NewFeed(rdb *redis.Client, prefix string, size int) *Feed {
	if size <= 0 {
		size = DefaultSize
	}
	return &Feed{rdb: rdb, prefix: prefix, size: int64(size)}
}

func (f *Feed) entriesKey() string { return f.prefix + ":activity" }
func (f *Feed) mentionsKey() string { return f.prefix + ":mentions" }
func (f *Feed) answersKey() string  { return f.prefix + ":answers" }

// Record appends e and updates the mention and answer counters atomically.
func (f *Feed) Record(ctx context.Context, e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}

	_, err = f.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, f.entriesKey(), line)
		pipe.LTrim(ctx, f.entriesKey(), 0, f.size-1)
		switch e.Kind {
		case KindQuery:
			for _, tag := range e.Tags {
				pipe.HIncrBy(ctx, f.mentionsKey(), tag, 1)
			}
		case KindAnswer:
			pipe.HIncrBy(ctx, f.answersKey(), strconv.Itoa(e.QueryID), 1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (f *Feed) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 || int64(n) > f.size {
		n = int(f.size)
	}
	lines, err := f.rdb.LRange(ctx, f.entriesKey(), 0, int64(n)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read activity: %w", err)
	}

	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// TopMentions returns the n most used mentions, ties broken alphabetically.
func (f *Feed) TopMentions(ctx context.Context, n int) ([]MentionCount, error) {
	raw, err := f.rdb.HGetAll(ctx, f.mentionsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("read mentions: %w", err)
	}
	return rankMentions(raw, n), nil
}

// Reset deletes the feed and its counters.
func (f *Feed) Reset(ctx context.Context) error {
	if err := f.rdb.Del(ctx, f.entriesKey(), f.mentionsKey(), f.answersKey()).Err(); err != nil {
		return fmt.Errorf("reset activity: %w", err)
	}
	return nil
}

// AnswerCount returns how many answers the feed has seen for queryID.
func (f *Feed) AnswerCount(ctx context.Context, queryID int) (int64, error) {
	n, err := f.rdb.HGet(ctx, f.answersKey(), strconv.Itoa(queryID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func rankMentions(raw map[string]string, n int) []MentionCount {
	out := make([]MentionCount, 0, len(raw))
	for mention, v := range raw {
		count, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, MentionCount{Mention: mention, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Mention < out[j].Mention
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
