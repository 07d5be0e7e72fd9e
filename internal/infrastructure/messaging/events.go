package messaging

import "github.com/mesarpg/mesa/internal/domain"

const (
	ActionsQueue    = "actions"
	DeadLetterQueue = "dead_letter_queue"
)

type ActionEventData struct {
	Action domain.Action `json:"action"`
}
