package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mesarpg/mesa/internal/domain"
	"github.com/mesarpg/mesa/internal/infrastructure/configs"
	"github.com/mesarpg/mesa/internal/infrastructure/repository"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, maxFramesPerSecond int) *httptest.Server {
	t.Helper()

	tables := repository.NewTableRepository()
	users := repository.NewUserDirectory()

	tables.Put(domain.Table{ID: "t1", Name: "A Caverna do Dragão", OwnerID: "gm"})
	tables.Put(domain.Table{ID: "t2", Name: "Floresta Sombria", OwnerID: "gm"})
	users.Put(domain.User{ID: "gm", Nickname: "Mestre"})
	users.Put(domain.User{ID: "p1", Nickname: "Jogador1"})

	registry := NewRegistry()
	engine := NewEngine(repository.NewActionStore(tables, users), users, registry, nil, noopLogger{})
	gateway := NewGateway(registry, engine, noopLogger{}, configs.GatewayConfig{
		MaxFramesPerSecond: maxFramesPerSecond,
		SendBuffer:         16,
	}, []string{"*"})
	t.Cleanup(gateway.Close)

	server := httptest.NewServer(http.HandlerFunc(gateway.ServeWS))
	t.Cleanup(server.Close)
	return server
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(WSMessage{Event: event, Data: payload}))
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var frame Frame
	require.Error(t, conn.ReadJSON(&frame), "unexpected frame: %+v", frame)
}

func TestGatewayDeliversActionsToJoinedClients(t *testing.T) {
	server := newTestServer(t, 100)

	author := dialWS(t, server)
	peer := dialWS(t, server)
	outsider := dialWS(t, server)

	sendFrame(t, author, EventJoin, JoinPayload{TableID: "t1"})
	sendFrame(t, peer, EventJoin, JoinPayload{TableID: "t1"})
	sendFrame(t, outsider, EventJoin, JoinPayload{TableID: "t2"})

	// Joins are processed in order on each connection; the author's join is
	// applied before this frame is read.
	time.Sleep(100 * time.Millisecond)

	sendFrame(t, author, EventSendAction, SendActionPayload{
		TableID:    "t1",
		UserID:     "gm",
		ActionType: domain.ActionChat,
		Details:    map[string]any{"message": "Olá"},
	})

	for _, conn := range []*websocket.Conn{author, peer} {
		frame := readFrame(t, conn)
		require.Equal(t, EventReceiveAction, frame.Event)

		var payload ReceiveActionPayload
		require.NoError(t, json.Unmarshal(frame.Data, &payload))
		require.Equal(t, "gm", payload.AuthorID)
		require.Equal(t, "Mestre", payload.AuthorNickname)
		require.Equal(t, domain.ActionChat, payload.ActionType)
		require.Equal(t, "Olá", payload.Details["message"])
		require.Regexp(t, clockRe, payload.Timestamp)
	}

	expectSilence(t, outsider)
}

func TestGatewayRejectsIncompleteSubmission(t *testing.T) {
	server := newTestServer(t, 100)
	conn := dialWS(t, server)

	sendFrame(t, conn, EventJoin, JoinPayload{TableID: "t1"})
	sendFrame(t, conn, EventSendAction, SendActionPayload{
		TableID:    "t1",
		ActionType: domain.ActionChat,
		Details:    map[string]any{"message": "no author"},
	})

	frame := readFrame(t, conn)
	require.Equal(t, EventError, frame.Event)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	require.Equal(t, CodeInvalidArgument, payload.Code)
	require.Contains(t, payload.Message, "user_id")
}

func TestGatewayReportsUnknownTable(t *testing.T) {
	server := newTestServer(t, 100)
	conn := dialWS(t, server)

	sendFrame(t, conn, EventSendAction, SendActionPayload{
		TableID:    "missing",
		UserID:     "gm",
		ActionType: domain.ActionChat,
		Details:    map[string]any{"message": "x"},
	})

	frame := readFrame(t, conn)
	require.Equal(t, EventError, frame.Event)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	require.Equal(t, CodeNotFound, payload.Code)
}

func TestGatewayRejectsUnknownEvent(t *testing.T) {
	server := newTestServer(t, 100)
	conn := dialWS(t, server)

	sendFrame(t, conn, "shout", map[string]any{"at": "everyone"})

	frame := readFrame(t, conn)
	require.Equal(t, EventError, frame.Event)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	require.Equal(t, CodeInvalidArgument, payload.Code)
}

func TestGatewayLeaveStopsDelivery(t *testing.T) {
	server := newTestServer(t, 100)

	leaver := dialWS(t, server)
	sender := dialWS(t, server)

	sendFrame(t, leaver, EventJoin, JoinPayload{TableID: "t1"})
	sendFrame(t, leaver, EventLeave, JoinPayload{TableID: "t1"})
	time.Sleep(100 * time.Millisecond)

	sendFrame(t, sender, EventSendAction, SendActionPayload{
		TableID:    "t1",
		UserID:     "p1",
		ActionType: domain.ActionChat,
		Details:    map[string]any{"message": "anyone here?"},
	})

	expectSilence(t, leaver)
}

func TestGatewayThrottlesFrameFlood(t *testing.T) {
	server := newTestServer(t, 1)
	conn := dialWS(t, server)

	const flood = 5
	for i := 0; i < flood; i++ {
		sendFrame(t, conn, EventSendAction, SendActionPayload{
			TableID:    "missing",
			UserID:     "gm",
			ActionType: domain.ActionChat,
			Details:    map[string]any{"message": "spam"},
		})
	}

	limited := 0
	for i := 0; i < flood; i++ {
		frame := readFrame(t, conn)
		require.Equal(t, EventError, frame.Event)

		var payload ErrorPayload
		require.NoError(t, json.Unmarshal(frame.Data, &payload))
		if payload.Code == CodeRateLimited {
			limited++
		}
	}

	require.Greater(t, limited, 0, "expected at least one throttled frame")
}
