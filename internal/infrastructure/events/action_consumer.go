package events

import (
	"context"
	"encoding/json"

	"github.com/mesarpg/mesa/internal/infrastructure/contracts"
	"github.com/mesarpg/mesa/internal/infrastructure/logging"
	"github.com/mesarpg/mesa/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

// actionConsumer drains the actions queue and writes an audit trail of
// everything appended across the cluster.
type actionConsumer struct {
	rabbitmq *messaging.RabbitMQ
	logger   logging.Logger
}

func NewActionConsumer(rabbitmq *messaging.RabbitMQ, logger logging.Logger) *actionConsumer {
	return &actionConsumer{
		rabbitmq: rabbitmq,
		logger:   logger,
	}
}

func (c *actionConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.ActionsQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var message contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			c.logger.Error(logging.RabbitMQ, logging.Consume, "failed to unmarshal envelope", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
			return err
		}

		var payload messaging.ActionEventData
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			c.logger.Error(logging.RabbitMQ, logging.Consume, "failed to unmarshal action event", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
			return err
		}

		c.logger.Info(logging.RabbitMQ, logging.Consume, "action logged", map[logging.ExtraKey]any{
			logging.TableID:    payload.Action.TableID,
			logging.ActionType: payload.Action.ActionType,
			logging.Sequence:   payload.Action.Sequence,
		})

		return nil
	})
}
