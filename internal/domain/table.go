package domain

import (
	"context"
	"errors"
)

var ErrTableNotFound = errors.New("table not found")

// Table is the room identity. The core only relies on id and existence;
// name and custom display data are carried through for the first-paint
// history response.
type Table struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
	OwnerID     string `bson:"owner_id" json:"ownerId"`
	CustomCSS   string `bson:"custom_css,omitempty" json:"customCss,omitempty"`
}

// TableMember records that a user plays at a table. Informational only:
// the core does not gate submissions on membership (authorization belongs
// to the excluded collaborator).
type TableMember struct {
	TableID string `bson:"table_id" json:"tableId"`
	UserID  string `bson:"user_id" json:"userId"`
	Role    string `bson:"role" json:"role"`
}

// Membership roles.
const (
	RoleGameMaster = "gm"
	RolePlayer     = "player"
)

type TableRepository interface {
	GetByID(ctx context.Context, id string) (*Table, error)
	ListMembers(ctx context.Context, tableID string) ([]TableMember, error)
}

// RoomKey maps a table id to its broadcast room. The mapping is stable for
// the table's lifetime.
func RoomKey(tableID string) string {
	return "table_" + tableID
}
