package refund

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// OrderLock serializes refund creation per order. The lock is held for
// the duration of one create call; the TTL bounds how long a crashed
// holder can block the order.
type OrderLock struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewOrderLock creates a new per-order refund lock.
func NewOrderLock(client redis.UniversalClient, ttl time.Duration) *OrderLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &OrderLock{client: client, ttl: ttl}
}

func lockKey(orderID uuid.UUID) string {
	return fmt.Sprintf("refund:lock:order:%s", orderID)
}

// Acquire takes the order's refund lock. Returns false when another
// refund for the same order is already in flight.
func (l *OrderLock) Acquire(ctx context.Context, orderID uuid.UUID) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(orderID), time.Now().UTC().Format(time.RFC3339Nano), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire refund lock: %w", err)
	}
	return ok, nil
}

// Release frees the order's refund lock.
func (l *OrderLock) Release(ctx context.Context, orderID uuid.UUID) error {
	if err := l.client.Del(ctx, lockKey(orderID)).Err(); err != nil {
		return fmt.Errorf("release refund lock: %w", err)
	}
	return nil
}
