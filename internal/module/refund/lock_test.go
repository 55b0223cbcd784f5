package refund

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockFixture(t *testing.T, ttl time.Duration) (*OrderLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewOrderLock(client, ttl), mr
}

func TestOrderLock_SecondAcquireBlockedUntilRelease(t *testing.T) {
	lock, _ := lockFixture(t, 30*time.Second)
	ctx := context.Background()
	orderID := uuid.New()

	ok, err := lock.Acquire(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lock.Acquire(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx, orderID))

	ok, err = lock.Acquire(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOrderLock_DistinctOrdersDoNotContend(t *testing.T) {
	lock, _ := lockFixture(t, 30*time.Second)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lock.Acquire(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOrderLock_TTLExpiryFreesCrashedHolder(t *testing.T) {
	lock, mr := lockFixture(t, 5*time.Second)
	ctx := context.Background()
	orderID := uuid.New()

	ok, err := lock.Acquire(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, ok)

	// A holder that never releases is bounded by the TTL.
	mr.FastForward(6 * time.Second)

	ok, err = lock.Acquire(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, ok)
}
