package keylock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLock is a lease-based Locker for deployments where the stock ledger
// may run more than one replica. A lock is a SETNX key with a TTL; release
// deletes the key only if the holder's token still owns it.
type RedisLock struct {
	rdb   *redis.Client
	ttl   time.Duration
	retry time.Duration
}

func NewRedisLock(rdb *redis.Client, ttl time.Duration) *RedisLock {
	return &RedisLock{rdb: rdb, ttl: ttl, retry: 20 * time.Millisecond}
}

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

func (l *RedisLock) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	lockKey := "lock:" + key

	for {
		ok, err := l.rdb.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = l.rdb.Eval(ctx, releaseScript, []string{lockKey}, token).Err()
	}
	return release, nil
}
