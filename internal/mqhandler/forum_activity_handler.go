package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "studentportal/contracts/mq"
	"studentportal/internal/activity"
	"studentportal/internal/service"
)

// Recorder stores one activity entry.
type Recorder interface {
	Record(ctx context.Context, e activity.Entry) error
}

// ForumActivityHandler projects forum events into the activity feed.
type ForumActivityHandler struct {
	feed   Recorder
	logger *zap.Logger
}

func NewForumActivityHandler(feed Recorder, logger *zap.Logger) *ForumActivityHandler {
	return &ForumActivityHandler{feed: feed, logger: logger}
}

func (h *ForumActivityHandler) HandleQueryRaised(ctx context.Context, raw json.RawMessage) error {
	var ev mqcontracts.QueryRaisedPayload
	if err := json.Unmarshal(raw, &ev); err != nil {
		return err
	}

	h.logger.Info("Recording raised query", zap.Int("query_id", ev.QueryID), zap.String("event_id", ev.EventID))
	return h.feed.Record(ctx, activity.Entry{
		Kind:    activity.KindQuery,
		QueryID: ev.QueryID,
		Text:    ev.Brief,
		Tags:    service.RenderTags(ev.SpecialMentions),
		At:      ev.CreatedAt,
	})
}

func (h *ForumActivityHandler) HandleAnswerAdded(ctx context.Context, raw json.RawMessage) error {
	var ev mqcontracts.AnswerAddedPayload
	if err := json.Unmarshal(raw, &ev); err != nil {
		return err
	}

	h.logger.Info("Recording answer",
		zap.Int("query_id", ev.QueryID),
		zap.Int("answer_id", ev.AnswerID),
	)
	return h.feed.Record(ctx, activity.Entry{
		Kind:     activity.KindAnswer,
		QueryID:  ev.QueryID,
		AnswerID: ev.AnswerID,
		Text:     ev.Answer,
		At:       ev.CreatedAt,
	})
}

// QueryRaisedID extracts the dedup id of a forum.query.raised payload.
func QueryRaisedID(raw json.RawMessage) (string, error) {
	var ev mqcontracts.QueryRaisedPayload
	if err := json.Unmarshal(raw, &ev); err != nil {
		return "", err
	}
	if ev.EventID == "" {
		return "", fmt.Errorf("event_id missing")
	}
	return ev.EventID, nil
}

// AnswerAddedID extracts the dedup id of a forum.answer.added payload.
func AnswerAddedID(raw json.RawMessage) (string, error) {
	var ev mqcontracts.AnswerAddedPayload
	if err := json.Unmarshal(raw, &ev); err != nil {
		return "", err
	}
	if ev.EventID == "" {
		return "", fmt.Errorf("event_id missing")
	}
	return ev.EventID, nil
}
