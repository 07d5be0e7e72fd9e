package tables

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mesarpg/mesa/internal/domain"
	"github.com/mesarpg/mesa/internal/infrastructure/logging"
	"github.com/mesarpg/mesa/internal/infrastructure/repository"
	"github.com/stretchr/testify/require"
)

type quietLogger struct{}

func (quietLogger) Init()                                                                  {}
func (quietLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (quietLogger) Debugf(string, ...any)                                                  {}
func (quietLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (quietLogger) Infof(string, ...any)                                                   {}
func (quietLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (quietLogger) Warnf(string, ...any)                                                   {}
func (quietLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (quietLogger) Errorf(string, ...any)                                                  {}
func (quietLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (quietLogger) Fatalf(string, ...any)                                                  {}

func newTestRouter(t *testing.T) (*chi.Mux, *repository.ActionStore) {
	t.Helper()

	tableRepo := repository.NewTableRepository()
	users := repository.NewUserDirectory()

	tableRepo.Put(domain.Table{
		ID:        "t1",
		Name:      "A Caverna do Dragão",
		OwnerID:   "gm",
		CustomCSS: ".log { color: gold; }",
	})
	users.Put(domain.User{ID: "gm", Nickname: "Mestre"})
	users.Put(domain.User{ID: "p1", Nickname: "Jogador1"})
	tableRepo.AddMember("t1", "gm", domain.RoleGameMaster)
	tableRepo.AddMember("t1", "p1", domain.RolePlayer)

	store := repository.NewActionStore(tableRepo, users)
	handler := NewHandler(store, tableRepo, users, quietLogger{})

	r := chi.NewRouter()
	r.Get("/api/tables/{tableId}", handler.GetTableHandler)
	r.Get("/api/tables/{tableId}/history", handler.GetHistoryHandler)
	r.Get("/api/tables/{tableId}/members", handler.GetMembersHandler)

	return r, store
}

func doGet(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetTableReturnsDisplayData(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doGet(t, router, "/api/tables/t1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tableResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "t1", resp.ID)
	require.Equal(t, "A Caverna do Dragão", resp.Name)
	require.Equal(t, ".log { color: gold; }", resp.CustomCSS)
}

func TestGetTableNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doGet(t, router, "/api/tables/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetHistoryReplaysLogWithNicknames(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "t1", "gm", domain.ActionChat, map[string]any{"message": "Bem-vindos"})
	require.NoError(t, err)
	_, err = store.Append(ctx, "t1", "p1", domain.ActionDiceRoll, map[string]any{"formula": "1d20", "result": float64(17)})
	require.NoError(t, err)

	rec := doGet(t, router, "/api/tables/t1/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "t1", resp.Table.ID)
	require.Equal(t, ".log { color: gold; }", resp.Table.CustomCSS)
	require.Len(t, resp.Actions, 2)

	require.Equal(t, "Mestre", resp.Actions[0].AuthorNickname)
	require.Equal(t, int64(1), resp.Actions[0].Sequence)
	require.Regexp(t, `^\d{2}:\d{2}:\d{2}$`, resp.Actions[0].Timestamp)

	require.Equal(t, "Jogador1", resp.Actions[1].AuthorNickname)
	require.Equal(t, domain.ActionDiceRoll, resp.Actions[1].ActionType)
	require.Equal(t, float64(17), resp.Actions[1].Details["result"])
}

func TestGetHistoryUnknownTable(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doGet(t, router, "/api/tables/missing/history")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMembersListsRoles(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doGet(t, router, "/api/tables/t1/members")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []memberResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)

	byID := make(map[string]memberResponse, len(resp))
	for _, member := range resp {
		byID[member.UserID] = member
	}
	require.Equal(t, domain.RoleGameMaster, byID["gm"].Role)
	require.Equal(t, "Mestre", byID["gm"].Nickname)
	require.Equal(t, domain.RolePlayer, byID["p1"].Role)
}
