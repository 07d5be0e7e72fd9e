package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mesarpg/mesa/internal/infrastructure/validate"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID       string    `bson:"_id" json:"id"`
	Nickname string    `bson:"nickname" json:"nickname"`
	Joined   time.Time `bson:"joined" json:"joined"`
}

// UserDirectory resolves user identities supplied by the excluded auth
// collaborator. The core only ever needs id and display name.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

func NewUser(rawNickname string) (*User, error) {
	validateNickname := validate.Compose(
		validate.Required(),
		validate.MinLength(2),
		validate.MaxLength(32),
		validate.NoSpaces(),
	)

	if err := validateNickname(rawNickname); err != nil {
		return nil, err
	}

	return &User{
		ID:       uuid.NewString(),
		Nickname: strings.TrimSpace(rawNickname),
		Joined:   time.Now(),
	}, nil
}
