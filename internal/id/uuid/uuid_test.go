package uuid

import (
	"testing"

	guuid "github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	gen := New()

	first, err := gen.NewID()
	require.NoError(t, err)
	parsed, err := guuid.Parse(first)
	require.NoError(t, err)
	require.Equal(t, guuid.Version(7), parsed.Version())
}

func TestNewIDOrdering(t *testing.T) {
	// UUIDv7 IDs generated in sequence must sort in generation order.
	gen := New()
	prev, err := gen.NewID()
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		next, err := gen.NewID()
		require.NoError(t, err)
		require.LessOrEqual(t, prev, next)
		prev = next
	}
}
