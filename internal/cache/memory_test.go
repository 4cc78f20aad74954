package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSetDel(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	_, err := mem.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, mem.Set(ctx, "k", "v", 0))
	value, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	require.NoError(t, mem.Del(ctx, "k"))
	_, err = mem.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := mem.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}
