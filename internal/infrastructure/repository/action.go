package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mesarpg/mesa/internal/domain"
)

// ActionStore is the in-memory append-only log. Per-table state lives in
// its own tableLog so appends against different tables never contend.
type ActionStore struct {
	tables domain.TableRepository
	users  domain.UserDirectory

	mu   sync.RWMutex
	logs map[string]*tableLog // tableID -> log
}

type tableLog struct {
	mu      sync.Mutex
	seq     int64
	lastTS  time.Time
	actions []domain.Action
}

func NewActionStore(tables domain.TableRepository, users domain.UserDirectory) *ActionStore {
	return &ActionStore{
		tables: tables,
		users:  users,
		logs:   make(map[string]*tableLog),
	}
}

func (s *ActionStore) Append(ctx context.Context, tableID, authorID, actionType string, details map[string]any) (*domain.Action, error) {
	if strings.TrimSpace(actionType) == "" || len(details) == 0 {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.tables.GetByID(ctx, tableID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	log := s.logFor(tableID)

	log.mu.Lock()
	defer log.mu.Unlock()

	log.seq++
	ts := time.Now().UTC()
	// Timestamps must read back non-decreasing per table
	if ts.Before(log.lastTS) {
		ts = log.lastTS
	}
	log.lastTS = ts

	action := domain.Action{
		ID:         uuid.NewString(),
		TableID:    tableID,
		AuthorID:   authorID,
		ActionType: actionType,
		Details:    details,
		Timestamp:  ts,
		Sequence:   log.seq,
	}

	log.actions = append(log.actions, action)

	cpy := action
	return &cpy, nil
}

func (s *ActionStore) History(ctx context.Context, tableID string) ([]domain.Action, error) {
	if tableID == "" {
		return nil, domain.ErrInvalidInput
	}

	log := s.logFor(tableID)

	log.mu.Lock()
	defer log.mu.Unlock()

	// Appended in (timestamp, sequence) order already; return a copy to
	// prevent external mutation.
	cpy := make([]domain.Action, len(log.actions))
	copy(cpy, log.actions)

	return cpy, nil
}

func (s *ActionStore) logFor(tableID string) *tableLog {
	s.mu.RLock()
	log, ok := s.logs[tableID]
	s.mu.RUnlock()
	if ok {
		return log
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if log, ok = s.logs[tableID]; !ok {
		log = &tableLog{}
		s.logs[tableID] = log
	}
	return log
}
