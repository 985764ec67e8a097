package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := New()

	_, ok, err := m.Get(ctx, "window")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.SetLocal(ctx, "window", "[]"))
	v, ok, err := m.Get(ctx, "window")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]", v)

	require.NoError(t, m.SetLocal(ctx, "blockly", "[]"))
	keys, err := m.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"blockly", "window"}, keys)

	require.NoError(t, m.RemoveLocal(ctx, "window"))
	require.NoError(t, m.RemoveLocal(ctx, "window"))
	_, ok, _ = m.Get(ctx, "window")
	require.False(t, ok)
}
