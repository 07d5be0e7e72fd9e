package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComposeStopsAtFirstError(t *testing.T) {
	v := Compose(Required(), MinLength(3))

	require.Error(t, v(""))
	require.Error(t, v("ab"))
	require.NoError(t, v("abc"))
}

func TestNoSpaces(t *testing.T) {
	v := NoSpaces()

	require.NoError(t, v("Mestre"))
	require.Error(t, v("game master"))
	require.Error(t, v("tab\there"))
}

func TestMatchesUsesCustomMessage(t *testing.T) {
	v := Matches(`^[a-z0-9_]+$`, "only lowercase letters, digits and underscores")

	require.NoError(t, v("jogador_1"))

	err := v("Jogador 1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "lowercase")
}
