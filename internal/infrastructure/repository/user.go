package repository

import (
	"context"
	"sync"

	"github.com/mesarpg/mesa/internal/domain"
)

// UserDirectory is an in-memory identity collaborator. Production runs
// resolve users from MongoDB; this one backs tests and standalone mode.
type UserDirectory struct {
	users map[string]domain.User
	mu    sync.RWMutex
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{
		users: make(map[string]domain.User),
	}
}

func (d *UserDirectory) Put(user domain.User) {
	d.mu.Lock()
	d.users[user.ID] = user
	d.mu.Unlock()
}

func (d *UserDirectory) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	cpy := user
	return &cpy, nil
}
