package cache

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"go-inventory-bom/pkg/logger"
)

// Connect pings addr a few times before giving up; callers treat a nil client as "redis disabled".
func Connect(ctx context.Context, addr string, attempts int) (*redis.Client, *redislock.Client, error) {
	log := logger.GetLogger()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			DB:       0, // use default DB
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err == nil {
			log.WithFields(logrus.Fields{"addr": addr, "attempt": attempt}).Info("connected to redis")
			return rdb, redislock.New(rdb), nil
		} else {
			lastErr = err
			_ = rdb.Close()
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.WithFields(logrus.Fields{"addr": addr, "attempt": attempt, "retry_in": sleep.String()}).
			Warnf("failed to connect redis: %v", lastErr)
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, nil, lastErr
}
