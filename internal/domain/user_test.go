package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUserAssignsIdentity(t *testing.T) {
	user, err := NewUser("Mestre")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "Mestre", user.Nickname)
	require.False(t, user.Joined.IsZero())
}

func TestNewUserRejectsBadNicknames(t *testing.T) {
	cases := []struct {
		name     string
		nickname string
	}{
		{"empty", ""},
		{"too short", "a"},
		{"spaces", "dungeon master"},
		{"too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser(tc.nickname)
			require.Error(t, err)
		})
	}
}
