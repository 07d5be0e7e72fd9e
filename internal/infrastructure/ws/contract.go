package ws

import (
	"encoding/json"
	"time"
)

// WSMessage is the outbound frame envelope.
type WSMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Frame is the inbound envelope; Data stays raw until the event type is
// known.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Payload structs
type JoinPayload struct {
	TableID  string `json:"table_id"`
	Nickname string `json:"nickname,omitempty"` // hint only
}

type SendActionPayload struct {
	TableID    string         `json:"table_id"`
	UserID     string         `json:"user_id"`
	ActionType string         `json:"action_type"`
	Details    map[string]any `json:"details"`
}

type ReceiveActionPayload struct {
	AuthorID       string         `json:"author_id"`
	AuthorNickname string         `json:"author_nickname"`
	ActionType     string         `json:"action_type"`
	Details        map[string]any `json:"details"`
	Timestamp      string         `json:"timestamp"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// timestampLayout matches what the chat clients render inline.
const timestampLayout = "15:04:05"

func NewReceiveAction(authorID, authorNickname, actionType string, details map[string]any, at time.Time) *WSMessage {
	return &WSMessage{
		Event: EventReceiveAction,
		Data: ReceiveActionPayload{
			AuthorID:       authorID,
			AuthorNickname: authorNickname,
			ActionType:     actionType,
			Details:        details,
			Timestamp:      at.Format(timestampLayout),
		},
	}
}

func NewError(code, message string) *WSMessage {
	return &WSMessage{
		Event: EventError,
		Data: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}
