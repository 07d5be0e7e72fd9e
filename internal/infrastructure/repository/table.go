package repository

import (
	"context"
	"sync"

	"github.com/mesarpg/mesa/internal/domain"
)

type TableRepository struct {
	tables  map[string]domain.Table
	members map[string]map[string]string // tableID -> userID -> role
	mu      sync.RWMutex
}

func NewTableRepository() *TableRepository {
	return &TableRepository{
		tables:  make(map[string]domain.Table),
		members: make(map[string]map[string]string),
	}
}

func (r *TableRepository) Put(table domain.Table) {
	r.mu.Lock()
	r.tables[table.ID] = table
	r.mu.Unlock()
}

func (r *TableRepository) AddMember(tableID, userID, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[tableID]
	if !ok {
		set = make(map[string]string)
		r.members[tableID] = set
	}
	set[userID] = role
}

func (r *TableRepository) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.tables[id]
	if !ok {
		return nil, domain.ErrTableNotFound
	}

	cpy := table
	return &cpy, nil
}

func (r *TableRepository) ListMembers(ctx context.Context, tableID string) ([]domain.TableMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.tables[tableID]; !ok {
		return nil, domain.ErrTableNotFound
	}

	set := r.members[tableID]
	members := make([]domain.TableMember, 0, len(set))
	for userID, role := range set {
		members = append(members, domain.TableMember{TableID: tableID, UserID: userID, Role: role})
	}

	return members, nil
}
