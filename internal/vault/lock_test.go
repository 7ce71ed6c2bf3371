package vault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_OpenClose(t *testing.T) {
	l := NewLock()
	ctx := context.Background()

	assert.False(t, l.IsOpen("vault-1"))
	require.NoError(t, l.OpenResource(ctx, "vault-1"))
	require.NoError(t, l.OpenResource(ctx, "vault-1"))
	require.NoError(t, l.OpenResource(ctx, "vault-0"))
	assert.Equal(t, []string{"vault-0", "vault-1"}, l.Opened())

	l.CloseResource("vault-1")
	assert.False(t, l.IsOpen("vault-1"))
}

func TestLock_Freeze(t *testing.T) {
	l := NewLock()
	require.NoError(t, l.OpenResource(context.Background(), "vault-1"))

	l.Freeze("vault-1")
	assert.False(t, l.IsOpen("vault-1"))
	assert.Error(t, l.OpenResource(context.Background(), "vault-1"))
}

func TestLock_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewLock().OpenResource(ctx, "vault-1"), context.Canceled)
}
