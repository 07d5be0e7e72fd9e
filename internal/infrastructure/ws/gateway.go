package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mesarpg/mesa/internal/domain"
	"github.com/mesarpg/mesa/internal/infrastructure/configs"
	"github.com/mesarpg/mesa/internal/infrastructure/logging"
	"github.com/mesarpg/mesa/internal/infrastructure/metrics"
	"github.com/mesarpg/mesa/internal/infrastructure/ratelimiter"
)

// Gateway owns the upgrade endpoint and the per-connection lifecycle:
// frame parsing, room membership and action submission.
type Gateway struct {
	registry *Registry
	engine   *Engine
	logger   logging.Logger
	cfg      configs.GatewayConfig

	upgrader websocket.Upgrader
	frames   *ratelimiter.FixedWindowRateLimiter
}

func NewGateway(
	registry *Registry,
	engine *Engine,
	logger logging.Logger,
	cfg configs.GatewayConfig,
	allowedOrigins []string,
) *Gateway {
	return &Gateway{
		registry: registry,
		engine:   engine,
		logger:   logger,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		frames: ratelimiter.NewFixedWindowRateLimiter(cfg.MaxFramesPerSecond, time.Second),
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		allowedSet[origin] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowedSet[origin]
		return ok
	}
}

// ServeWS upgrades the request and runs the connection until it drops.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn(logging.WebSocket, logging.Connection, "upgrade failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := NewClient(conn, g.cfg.SendBuffer)
	metrics.ConnectedClients.Inc()
	g.logger.Info(logging.WebSocket, logging.Connection, "client connected", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ConnectionID(),
	})

	go client.writePump()
	g.readLoop(r.Context(), client)
}

func (g *Gateway) readLoop(ctx context.Context, client *Client) {
	defer g.disconnect(client)

	for {
		frame, err := client.ReadFrame()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.logger.Warn(logging.WebSocket, logging.Connection, "read failed", map[logging.ExtraKey]any{
					logging.ConnectionID: client.ConnectionID(),
					logging.ErrorMessage: err.Error(),
				})
			}
			return
		}

		if ok, retryAfter := g.frames.Allow(client.ConnectionID()); !ok {
			_ = client.Deliver(NewError(CodeRateLimited,
				fmt.Sprintf("too many frames, retry in %s", retryAfter.Round(time.Millisecond))))
			continue
		}

		g.handleFrame(ctx, client, frame)
	}
}

func (g *Gateway) handleFrame(ctx context.Context, client *Client, frame *Frame) {
	switch frame.Event {
	case EventJoin:
		g.handleJoin(client, frame.Data)
	case EventLeave:
		g.handleLeave(client, frame.Data)
	case EventSendAction:
		g.handleSendAction(ctx, client, frame.Data)
	default:
		_ = client.Deliver(NewError(CodeInvalidArgument, "unknown event: "+frame.Event))
	}
}

func (g *Gateway) handleJoin(client *Client, data json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(data, &p); err != nil || strings.TrimSpace(p.TableID) == "" {
		_ = client.Deliver(NewError(CodeInvalidArgument, "join requires table_id"))
		return
	}

	roomKey := domain.RoomKey(p.TableID)
	g.registry.Join(client, roomKey)
	metrics.RoomMembers.WithLabelValues(roomKey).Set(float64(len(g.registry.MembersOf(roomKey))))

	g.logger.Info(logging.WebSocket, logging.Membership, "joined room", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ConnectionID(),
		logging.TableID:      p.TableID,
		logging.RoomKeyName:  roomKey,
	})
}

func (g *Gateway) handleLeave(client *Client, data json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(data, &p); err != nil || strings.TrimSpace(p.TableID) == "" {
		_ = client.Deliver(NewError(CodeInvalidArgument, "leave requires table_id"))
		return
	}

	roomKey := domain.RoomKey(p.TableID)
	g.registry.Leave(client.ConnectionID(), roomKey)
	metrics.RoomMembers.WithLabelValues(roomKey).Set(float64(len(g.registry.MembersOf(roomKey))))

	g.logger.Info(logging.WebSocket, logging.Membership, "left room", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ConnectionID(),
		logging.TableID:      p.TableID,
		logging.RoomKeyName:  roomKey,
	})
}

func (g *Gateway) handleSendAction(ctx context.Context, client *Client, data json.RawMessage) {
	var p SendActionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		_ = client.Deliver(NewError(CodeInvalidArgument, "malformed send_action payload"))
		return
	}

	if missing := missingActionField(p); missing != "" {
		_ = client.Deliver(NewError(CodeInvalidArgument, "missing field: "+missing))
		return
	}

	if _, err := g.engine.SubmitAction(ctx, p); err != nil {
		g.logger.Warn(logging.WebSocket, logging.Broadcast, "action rejected", map[logging.ExtraKey]any{
			logging.ConnectionID: client.ConnectionID(),
			logging.TableID:      p.TableID,
			logging.ActionType:   p.ActionType,
			logging.ErrorMessage: err.Error(),
		})
		_ = client.Deliver(errorEventFor(err))
	}
}

// missingActionField reports the first absent field; all four are required
// before the submission reaches the engine.
func missingActionField(p SendActionPayload) string {
	switch {
	case strings.TrimSpace(p.TableID) == "":
		return "table_id"
	case strings.TrimSpace(p.UserID) == "":
		return "user_id"
	case strings.TrimSpace(p.ActionType) == "":
		return "action_type"
	case len(p.Details) == 0:
		return "details"
	}
	return ""
}

func errorEventFor(err error) *WSMessage {
	switch {
	case errors.Is(err, domain.ErrTableNotFound):
		return NewError(CodeNotFound, "table not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return NewError(CodeNotFound, "user not found")
	case errors.Is(err, domain.ErrInvalidInput):
		return NewError(CodeInvalidArgument, "invalid action")
	default:
		return NewError(CodeStoreFailure, "action could not be logged")
	}
}

// disconnect tears down registry state before the send channel closes, so
// a concurrent broadcast sees either a deliverable member or no member.
func (g *Gateway) disconnect(client *Client) {
	rooms := g.registry.RoomsOf(client.ConnectionID())
	g.registry.DropConnection(client.ConnectionID())
	client.shutdown()

	metrics.ConnectedClients.Dec()
	for _, roomKey := range rooms {
		metrics.RoomMembers.WithLabelValues(roomKey).Set(float64(len(g.registry.MembersOf(roomKey))))
	}

	g.logger.Info(logging.WebSocket, logging.Connection, "client disconnected", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ConnectionID(),
	})
}

// Close stops the shared frame limiter.
func (g *Gateway) Close() {
	g.frames.Close()
}
