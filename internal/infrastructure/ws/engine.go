package ws

import (
	"context"
	"errors"

	"github.com/mesarpg/mesa/internal/domain"
	"github.com/mesarpg/mesa/internal/infrastructure/logging"
	"github.com/mesarpg/mesa/internal/infrastructure/metrics"
)

// Publisher forwards durably logged actions to interested consumers.
// A nil Publisher disables forwarding.
type Publisher interface {
	PublishActionLogged(ctx context.Context, action domain.Action) error
}

// Engine turns validated submissions into durable history entries and fans
// the result out to the table room.
type Engine struct {
	store     domain.ActionStore
	users     domain.UserDirectory
	registry  *Registry
	publisher Publisher
	logger    logging.Logger
}

func NewEngine(
	store domain.ActionStore,
	users domain.UserDirectory,
	registry *Registry,
	publisher Publisher,
	logger logging.Logger,
) *Engine {
	return &Engine{
		store:     store,
		users:     users,
		registry:  registry,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitAction appends the action and broadcasts the logged result to every
// current member of the table room, the author included. Nothing is
// broadcast when the append fails.
func (e *Engine) SubmitAction(ctx context.Context, p SendActionPayload) (*domain.Action, error) {
	action, err := e.store.Append(ctx, p.TableID, p.UserID, p.ActionType, p.Details)
	if err != nil {
		metrics.AppendFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	metrics.ActionsAppended.WithLabelValues(action.ActionType).Inc()

	// The append already proved the author exists; fall back to the raw ID
	// if the directory hiccups between the two lookups.
	nickname := action.AuthorID
	if author, lookupErr := e.users.GetByID(ctx, action.AuthorID); lookupErr == nil {
		nickname = author.Nickname
	}

	msg := NewReceiveAction(action.AuthorID, nickname, action.ActionType, action.Details, action.Timestamp)
	e.broadcast(domain.RoomKey(action.TableID), msg)

	if e.publisher != nil {
		if pubErr := e.publisher.PublishActionLogged(ctx, *action); pubErr != nil {
			e.logger.Warn(logging.RabbitMQ, logging.Publish, "failed to publish logged action", map[logging.ExtraKey]any{
				logging.TableID:      action.TableID,
				logging.Sequence:     action.Sequence,
				logging.ErrorMessage: pubErr.Error(),
			})
		}
	}

	return action, nil
}

// broadcast delivers to a snapshot of the room. Per-recipient failures are
// counted and skipped; they never abort the fan-out.
func (e *Engine) broadcast(roomKey string, msg *WSMessage) {
	members := e.registry.MembersOf(roomKey)

	delivered := 0
	for _, member := range members {
		if err := member.Deliver(msg); err != nil {
			metrics.DeliveriesDropped.Inc()
			e.logger.Warn(logging.WebSocket, logging.Broadcast, "dropping delivery", map[logging.ExtraKey]any{
				logging.ConnectionID: member.ConnectionID(),
				logging.RoomKeyName:  roomKey,
				logging.ErrorMessage: err.Error(),
			})
			continue
		}
		delivered++
	}

	metrics.Broadcasts.Inc()
	metrics.Deliveries.Add(float64(delivered))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTableNotFound), errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "store"
	}
}
