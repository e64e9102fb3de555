package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	mqcontracts "studentportal/contracts/mq"
	"studentportal/internal/events"
	"studentportal/internal/model"
	"studentportal/internal/repository"
	"studentportal/pkg/metrics"
)

type ForumService struct {
	forum   repository.ForumRepository
	tx      repository.TxRunner
	emitter *events.Emitter
	logger  *zap.Logger
}

func NewForumService(forum repository.ForumRepository, tx repository.TxRunner, emitter *events.Emitter, logger *zap.Logger) *ForumService {
	return &ForumService{forum: forum, tx: tx, emitter: emitter, logger: logger}
}

// RaiseQuery stores a new question. mentions are kept as given.
func (s *ForumService) RaiseQuery(ctx context.Context, mentions json.RawMessage, brief string) (*model.Query, error) {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return nil, ErrBriefRequired
	}

	q := &model.Query{SpecialMentions: mentions, Brief: brief}
	var ev mqcontracts.QueryRaisedPayload
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.forum.CreateQuery(ctx, q); err != nil {
			return fmt.Errorf("create query: %w", err)
		}
		ev = mqcontracts.QueryRaisedPayload{
			EventID:         events.NewEventID(),
			QueryID:         q.ID,
			SpecialMentions: q.SpecialMentions,
			Brief:           q.Brief,
			CreatedAt:       q.CreatedAt,
		}
		return s.emitter.Stage(ctx, mqcontracts.RoutingQueryRaised, ev)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncrementForumPost("query")
	s.logger.Info("Query raised", zap.Int("query_id", q.ID), zap.String("event_id", ev.EventID))
	s.emitter.Announce(ctx, mqcontracts.RoutingQueryRaised, ev)
	return q, nil
}

// AddAnswer attaches an answer to an existing query.
func (s *ForumService) AddAnswer(ctx context.Context, queryID int, text string) (*model.Answer, error) {
	text = strings.TrimSpace(text)
	if queryID == 0 || text == "" {
		return nil, ErrAnswerRequired
	}

	a := &model.Answer{QueryID: queryID, Text: text}
	var ev mqcontracts.AnswerAddedPayload
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		exists, err := s.forum.QueryExists(ctx, queryID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrQueryNotFound
		}
		if err := s.forum.AddAnswer(ctx, a); err != nil {
			return fmt.Errorf("add answer: %w", err)
		}
		ev = mqcontracts.AnswerAddedPayload{
			EventID:   events.NewEventID(),
			AnswerID:  a.ID,
			QueryID:   a.QueryID,
			Answer:    a.Text,
			CreatedAt: a.CreatedAt,
		}
		return s.emitter.Stage(ctx, mqcontracts.RoutingAnswerAdded, ev)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncrementForumPost("answer")
	s.logger.Info("Answer added", zap.Int("query_id", queryID), zap.Int("answer_id", a.ID))
	s.emitter.Announce(ctx, mqcontracts.RoutingAnswerAdded, ev)
	return a, nil
}
