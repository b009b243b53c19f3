package domain

import (
	"encoding/json"
	"time"
)

const (
	EventGameCreated = "game.created"
	EventGameUpdated = "game.updated"
	EventGameDeleted = "game.deleted"
)

type MutationMetadata struct {
	Source     string
	RequestID  string
	OccurredAt time.Time
}

func (m MutationMetadata) Normalize() MutationMetadata {
	if m.Source == "" {
		m.Source = "api"
	}
	if m.OccurredAt.IsZero() {
		m.OccurredAt = time.Now().UTC()
	}
	return m
}

// GameEvent is one committed mutation of a game, written in the same
// transaction as the mutation itself.
type GameEvent struct {
	ID            int64
	EventID       string
	GameID        int64
	Action        string
	Source        string
	RequestID     string
	Before        json.RawMessage
	After         json.RawMessage
	ChangedFields []string
	OccurredAt    time.Time
}

type GameEventFilter struct {
	GameID  int64
	AfterID int64
	Limit   int
}
