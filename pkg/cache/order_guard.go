package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"go-inventory-bom/pkg/logger"
)

// OrderGuard keeps order placement single-flight per tenant and remembers idempotency keys.
type OrderGuard struct {
	client  *redis.Client
	locker  *redislock.Client
	lockTTL time.Duration
	keyTTL  time.Duration
}

func NewOrderGuard(client *redis.Client, locker *redislock.Client, lockTTL, keyTTL time.Duration) *OrderGuard {
	return &OrderGuard{client: client, locker: locker, lockTTL: lockTTL, keyTTL: keyTTL}
}

func lockKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("lock:order:%s", tenantID)
}

func idempotencyKey(tenantID uuid.UUID, key string) string {
	return fmt.Sprintf("idempotency:order:%s:%s", tenantID, key)
}

// Lock waits briefly for the tenant's order lock.
func (g *OrderGuard) Lock(ctx context.Context, tenantID uuid.UUID) (func(), bool, error) {
	retry := redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 30)
	lock, err := g.locker.Obtain(ctx, lockKey(tenantID), g.lockTTL, &redislock.Options{RetryStrategy: retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	unlock := func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.LogError(logger.GetLogger(), "cache", "OrderGuard.Lock", "release order lock", tenantID.String(), err)
		}
	}
	return unlock, true, nil
}

func (g *OrderGuard) Reserve(ctx context.Context, tenantID uuid.UUID, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, idempotencyKey(tenantID, key), 1, g.keyTTL).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		logger.GetLogger().WithFields(logrus.Fields{"tenant_id": tenantID, "key": key}).Info("duplicate order submission")
	}
	return ok, nil
}

func (g *OrderGuard) Release(ctx context.Context, tenantID uuid.UUID, key string) error {
	return g.client.Del(ctx, idempotencyKey(tenantID, key)).Err()
}
