package mq

import (
	"encoding/json"
	"time"
)

// Routing keys of doubt forum events.
const (
	RoutingQueryRaised = "forum.query.raised"
	RoutingAnswerAdded = "forum.answer.added"
)

// QueryRaisedPayload is published after a query is stored.
// EventID is unique per event; QueryID restarts at 1 after a reseed.
type QueryRaisedPayload struct {
	EventID         string          `json:"event_id"`
	QueryID         int             `json:"query_id"`
	SpecialMentions json.RawMessage `json:"special_mentions"`
	Brief           string          `json:"brief"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AggregateKey is the query the event belongs to.
func (p QueryRaisedPayload) AggregateKey() int64 { return int64(p.QueryID) }

// AnswerAddedPayload is published after an answer is stored.
type AnswerAddedPayload struct {
	EventID   string    `json:"event_id"`
	AnswerID  int       `json:"answer_id"`
	QueryID   int       `json:"query_id"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

func (p AnswerAddedPayload) AggregateKey() int64 { return int64(p.QueryID) }
