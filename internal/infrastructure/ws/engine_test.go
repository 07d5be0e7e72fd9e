package ws

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/mesarpg/mesa/internal/domain"
	"github.com/mesarpg/mesa/internal/infrastructure/logging"
	"github.com/mesarpg/mesa/internal/infrastructure/repository"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Init()                                                                  {}
func (noopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (noopLogger) Debugf(string, ...any)                                                  {}
func (noopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (noopLogger) Infof(string, ...any)                                                   {}
func (noopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (noopLogger) Warnf(string, ...any)                                                   {}
func (noopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (noopLogger) Errorf(string, ...any)                                                  {}
func (noopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (noopLogger) Fatalf(string, ...any)                                                  {}

type recordingReceiver struct {
	id  string
	err error

	mu   sync.Mutex
	msgs []*WSMessage
}

func (r *recordingReceiver) ConnectionID() string { return r.id }

func (r *recordingReceiver) Deliver(msg *WSMessage) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingReceiver) received() []*WSMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*WSMessage(nil), r.msgs...)
}

func newTestEngine(t *testing.T) (*Engine, *Registry) {
	t.Helper()

	tables := repository.NewTableRepository()
	users := repository.NewUserDirectory()

	tables.Put(domain.Table{ID: "t1", Name: "A Caverna do Dragão", OwnerID: "gm"})
	tables.Put(domain.Table{ID: "t2", Name: "Floresta Sombria", OwnerID: "gm"})
	users.Put(domain.User{ID: "gm", Nickname: "Mestre"})
	users.Put(domain.User{ID: "p1", Nickname: "Jogador1"})

	store := repository.NewActionStore(tables, users)
	registry := NewRegistry()

	return NewEngine(store, users, registry, nil, noopLogger{}), registry
}

var clockRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

func TestSubmitActionBroadcastsToWholeRoom(t *testing.T) {
	engine, registry := newTestEngine(t)
	roomKey := domain.RoomKey("t1")

	author := &recordingReceiver{id: "author"}
	peer1 := &recordingReceiver{id: "peer1"}
	peer2 := &recordingReceiver{id: "peer2"}
	for _, conn := range []*recordingReceiver{author, peer1, peer2} {
		registry.Join(conn, roomKey)
	}

	action, err := engine.SubmitAction(context.Background(), SendActionPayload{
		TableID:    "t1",
		UserID:     "gm",
		ActionType: domain.ActionChat,
		Details:    map[string]any{"message": "Olá"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), action.Sequence)

	// Total broadcast: the author's own connection is a recipient too.
	for _, conn := range []*recordingReceiver{author, peer1, peer2} {
		msgs := conn.received()
		require.Len(t, msgs, 1)
		require.Equal(t, EventReceiveAction, msgs[0].Event)

		payload, ok := msgs[0].Data.(ReceiveActionPayload)
		require.True(t, ok)
		require.Equal(t, "gm", payload.AuthorID)
		require.Equal(t, "Mestre", payload.AuthorNickname)
		require.Equal(t, domain.ActionChat, payload.ActionType)
		require.Equal(t, "Olá", payload.Details["message"])
		require.Regexp(t, clockRe, payload.Timestamp)
	}
}

func TestSubmitActionFailureBroadcastsNothing(t *testing.T) {
	engine, registry := newTestEngine(t)
	roomKey := domain.RoomKey("t1")

	peer := &recordingReceiver{id: "peer"}
	registry.Join(peer, roomKey)

	cases := []struct {
		name    string
		payload SendActionPayload
		want    error
	}{
		{
			name: "unknown table",
			payload: SendActionPayload{
				TableID: "missing", UserID: "gm",
				ActionType: domain.ActionChat, Details: map[string]any{"message": "x"},
			},
			want: domain.ErrTableNotFound,
		},
		{
			name: "unknown user",
			payload: SendActionPayload{
				TableID: "t1", UserID: "missing",
				ActionType: domain.ActionChat, Details: map[string]any{"message": "x"},
			},
			want: domain.ErrUserNotFound,
		},
		{
			name: "empty details",
			payload: SendActionPayload{
				TableID: "t1", UserID: "gm",
				ActionType: domain.ActionChat, Details: nil,
			},
			want: domain.ErrInvalidInput,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.SubmitAction(context.Background(), tc.payload)
			require.ErrorIs(t, err, tc.want)
			require.Empty(t, peer.received())
		})
	}
}

func TestSubmitActionRespectsRoomBoundaries(t *testing.T) {
	engine, registry := newTestEngine(t)

	inRoom := &recordingReceiver{id: "in"}
	elsewhere := &recordingReceiver{id: "out"}
	registry.Join(inRoom, domain.RoomKey("t1"))
	registry.Join(elsewhere, domain.RoomKey("t2"))

	_, err := engine.SubmitAction(context.Background(), SendActionPayload{
		TableID:    "t1",
		UserID:     "p1",
		ActionType: domain.ActionDiceRoll,
		Details:    map[string]any{"formula": "2d6", "result": 9},
	})
	require.NoError(t, err)

	require.Len(t, inRoom.received(), 1)
	require.Empty(t, elsewhere.received())
}

func TestSlowConsumerDoesNotAbortFanOut(t *testing.T) {
	engine, registry := newTestEngine(t)
	roomKey := domain.RoomKey("t1")

	slow := &recordingReceiver{id: "slow", err: ErrSlowConsumer}
	healthy := &recordingReceiver{id: "healthy"}
	registry.Join(slow, roomKey)
	registry.Join(healthy, roomKey)

	_, err := engine.SubmitAction(context.Background(), SendActionPayload{
		TableID:    "t1",
		UserID:     "gm",
		ActionType: domain.ActionChat,
		Details:    map[string]any{"message": "still delivered"},
	})
	require.NoError(t, err)

	require.Len(t, healthy.received(), 1)
}

func TestSubmitActionSequencesAreStrictlyIncreasing(t *testing.T) {
	engine, _ := newTestEngine(t)

	var last int64
	for i := 0; i < 5; i++ {
		action, err := engine.SubmitAction(context.Background(), SendActionPayload{
			TableID:    "t1",
			UserID:     "gm",
			ActionType: domain.ActionStatusChange,
			Details:    map[string]any{"hp": i},
		})
		require.NoError(t, err)
		require.Greater(t, action.Sequence, last)
		last = action.Sequence
	}
}

type failingPublisher struct{}

func (failingPublisher) PublishActionLogged(context.Context, domain.Action) error {
	return errors.New("broker down")
}

func TestPublisherFailureDoesNotFailSubmission(t *testing.T) {
	tables := repository.NewTableRepository()
	users := repository.NewUserDirectory()
	tables.Put(domain.Table{ID: "t1", OwnerID: "gm"})
	users.Put(domain.User{ID: "gm", Nickname: "Mestre"})

	registry := NewRegistry()
	engine := NewEngine(repository.NewActionStore(tables, users), users, registry, failingPublisher{}, noopLogger{})

	peer := &recordingReceiver{id: "peer"}
	registry.Join(peer, domain.RoomKey("t1"))

	action, err := engine.SubmitAction(context.Background(), SendActionPayload{
		TableID:    "t1",
		UserID:     "gm",
		ActionType: domain.ActionChat,
		Details:    map[string]any{"message": "Olá"},
	})
	require.NoError(t, err)
	require.NotNil(t, action)
	require.Len(t, peer.received(), 1)
}
