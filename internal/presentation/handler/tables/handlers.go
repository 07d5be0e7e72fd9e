package tables

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mesarpg/mesa/internal/domain"
	"github.com/mesarpg/mesa/internal/infrastructure/json"
	"github.com/mesarpg/mesa/internal/infrastructure/logging"
)

type Handler struct {
	store  domain.ActionStore
	tables domain.TableRepository
	users  domain.UserDirectory
	logger logging.Logger
}

func NewHandler(
	store domain.ActionStore,
	tables domain.TableRepository,
	users domain.UserDirectory,
	logger logging.Logger,
) Handler {
	return Handler{
		store:  store,
		tables: tables,
		users:  users,
		logger: logger,
	}
}

func (h *Handler) GetTableHandler(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableId")
	if tableID == "" {
		json.WriteBadRequestError(w, "table ID is missing")
		return
	}

	table, err := h.tables.GetByID(r.Context(), tableID)
	if err != nil {
		writeTableError(w, err)
		return
	}

	json.Write(w, http.StatusOK, tableResponse{
		ID:          table.ID,
		Name:        table.Name,
		Description: table.Description,
		OwnerID:     table.OwnerID,
		CustomCSS:   table.CustomCSS,
	})
}

// GetHistoryHandler replays a table's action log in append order, the same
// payload shape the live channel delivers.
func (h *Handler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableId")
	if tableID == "" {
		json.WriteBadRequestError(w, "table ID is missing")
		return
	}

	ctx := r.Context()

	table, err := h.tables.GetByID(ctx, tableID)
	if err != nil {
		writeTableError(w, err)
		return
	}

	actions, err := h.store.History(ctx, tableID)
	if err != nil {
		writeTableError(w, err)
		return
	}

	nicknames := make(map[string]string)
	resp := historyResponse{
		Table: tableResponse{
			ID:          table.ID,
			Name:        table.Name,
			Description: table.Description,
			OwnerID:     table.OwnerID,
			CustomCSS:   table.CustomCSS,
		},
		Actions: make([]actionResponse, 0, len(actions)),
	}

	for _, action := range actions {
		resp.Actions = append(resp.Actions, actionResponse{
			AuthorID:       action.AuthorID,
			AuthorNickname: h.nicknameFor(ctx, nicknames, action.AuthorID),
			ActionType:     action.ActionType,
			Details:        action.Details,
			Timestamp:      action.Timestamp.Format("15:04:05"),
			Sequence:       action.Sequence,
		})
	}

	json.Write(w, http.StatusOK, resp)
}

func (h *Handler) GetMembersHandler(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableId")
	if tableID == "" {
		json.WriteBadRequestError(w, "table ID is missing")
		return
	}

	ctx := r.Context()

	members, err := h.tables.ListMembers(ctx, tableID)
	if err != nil {
		writeTableError(w, err)
		return
	}

	nicknames := make(map[string]string)
	resp := make([]memberResponse, 0, len(members))
	for _, member := range members {
		resp = append(resp, memberResponse{
			UserID:   member.UserID,
			Nickname: h.nicknameFor(ctx, nicknames, member.UserID),
			Role:     member.Role,
		})
	}

	json.Write(w, http.StatusOK, resp)
}

// nicknameFor resolves an author nickname with a per-request cache; a
// missing user falls back to the raw ID.
func (h *Handler) nicknameFor(ctx context.Context, cache map[string]string, userID string) string {
	if nickname, ok := cache[userID]; ok {
		return nickname
	}

	nickname := userID
	if user, err := h.users.GetByID(ctx, userID); err == nil {
		nickname = user.Nickname
	}

	cache[userID] = nickname
	return nickname
}

func writeTableError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTableNotFound):
		json.WriteNotFoundError(w, "Table not found")
	case errors.Is(err, domain.ErrUserNotFound):
		json.WriteNotFoundError(w, "User not found")
	case errors.Is(err, domain.ErrInvalidInput):
		json.WriteBadRequestError(w, "Invalid request")
	default:
		json.WriteInternalError(w, err)
	}
}
