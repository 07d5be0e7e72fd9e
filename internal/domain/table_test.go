package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomKeyIsStablePerTable(t *testing.T) {
	require.Equal(t, "table_42", RoomKey("42"))
	require.Equal(t, RoomKey("abc"), RoomKey("abc"))
	require.NotEqual(t, RoomKey("t1"), RoomKey("t2"))
}

func TestRoomKeysDoNotCollideAcrossIDs(t *testing.T) {
	// The prefix keeps table rooms out of any future namespace.
	require.NotEqual(t, RoomKey("1"), "1")
}
