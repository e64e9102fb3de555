package model

import (
	"encoding/json"
	"time"
)

// Query is a doubt forum question. It is global, not owned by a user.
// SpecialMentions holds the JSON sent by the client, unvalidated.
type Query struct {
	ID              int
	SpecialMentions json.RawMessage
	Brief           string
	CreatedAt       time.Time
}

type Answer struct {
	ID        int
	QueryID   int
	Text      string
	CreatedAt time.Time
}
