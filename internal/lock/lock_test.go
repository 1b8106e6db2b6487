package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	release, err := l.Obtain(ctx, "reindex")
	require.NoError(t, err)

	_, err = l.Obtain(ctx, "reindex")
	assert.ErrorIs(t, err, ErrLocked)

	other, err := l.Obtain(ctx, "export")
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	release, err = l.Obtain(ctx, "reindex")
	require.NoError(t, err)
	assert.NoError(t, release(ctx))
}
