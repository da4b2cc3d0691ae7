package ticket

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLock serializes ticket issuance across process instances using a
// single Redis key (SET NX with a TTL). The counter's compare-and-swap
// already guarantees correctness; the lock exists so that batches from
// different instances do not thrash each other with conflict retries.
type RedisLock struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

// NewRedisLock returns a lock over the given client with sane defaults.
func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{Client: client, Key: "lock:ticket_counter", TTL: 10 * time.Second}
}

// Acquire polls until the key is claimed or the context expires. The
// returned release deletes the key; if the holder dies, the TTL frees
// the lock on its own.
func (l *RedisLock) Acquire(ctx context.Context) (func(), error) {
	for {
		ok, err := l.Client.SetNX(ctx, l.Key, "1", l.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = l.Client.Del(relCtx, l.Key).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
