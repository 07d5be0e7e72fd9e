package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("action store unavailable")
)

// Well-known action types. The tag is an open string: stores accept any
// non-empty value, these are just the ones the clients emit today.
const (
	ActionChat         = "chat"
	ActionDiceRoll     = "dice_roll"
	ActionStatusChange = "status_change"
)

// Action is one immutable log entry in a table's history. Timestamp and
// Sequence are assigned at persistence time; Sequence is strictly
// increasing per table.
type Action struct {
	ID         string         `bson:"_id" json:"id"`
	TableID    string         `bson:"table_id" json:"tableId"`
	AuthorID   string         `bson:"author_id" json:"authorId"`
	ActionType string         `bson:"action_type" json:"actionType"`
	Details    map[string]any `bson:"details" json:"details"`
	Timestamp  time.Time      `bson:"timestamp" json:"timestamp"`
	Sequence   int64          `bson:"sequence" json:"sequence"`
}

// ActionStore is the durable, append-only log of actions per table.
// There is no update or delete.
type ActionStore interface {
	// Append validates that the table and author exist, assigns a server
	// timestamp and the next per-table sequence, persists synchronously
	// and returns the stored record.
	Append(ctx context.Context, tableID, authorID, actionType string, details map[string]any) (*Action, error)

	// History returns every action for a table ordered by timestamp
	// ascending, ties broken by sequence. Each call re-reads current state.
	History(ctx context.Context, tableID string) ([]Action, error)
}
