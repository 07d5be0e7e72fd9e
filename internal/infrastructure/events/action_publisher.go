package events

import (
	"context"
	"encoding/json"

	"github.com/mesarpg/mesa/internal/domain"
	"github.com/mesarpg/mesa/internal/infrastructure/contracts"
	"github.com/mesarpg/mesa/internal/infrastructure/messaging"
)

type ActionPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewActionPublisher(rabbitmq *messaging.RabbitMQ) *ActionPublisher {
	return &ActionPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *ActionPublisher) PublishActionLogged(ctx context.Context, action domain.Action) error {
	payload := messaging.ActionEventData{
		Action: action,
	}

	actionEventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, contracts.EventActionLogged, contracts.AmqpMessage{
		AuthorID: action.AuthorID,
		Data:     actionEventJSON,
	})
}
