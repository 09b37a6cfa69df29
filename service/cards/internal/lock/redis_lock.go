package lock

import (
	"context"
	"errors"
	"time"

	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
)

// RedisLock implementa un lock distribuito basato su Redis.
type RedisLock struct {
	client  *redis.Client
	clock   quartz.Clock
	ttl     time.Duration
	retries int
	backoff time.Duration
}

func NewRedisLock(client *redis.Client, clock quartz.Clock, ttl time.Duration, retries int, backoff time.Duration) *RedisLock {
	// TTL breve evita lock orfani in caso di crash.
	return &RedisLock{
		client:  client,
		clock:   clock,
		ttl:     ttl,
		retries: retries,
		backoff: backoff,
	}
}

func (l *RedisLock) Acquire(ctx context.Context, key string) (string, bool, error) {
	token := newToken()
	ok, err := retry(ctx, l.clock, l.retries, l.backoff, func() (bool, error) {
		return l.client.SetNX(ctx, key, token, l.ttl).Result()
	})
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (l *RedisLock) Release(ctx context.Context, key, token string) error {
	if key == "" || token == "" {
		return errors.New("key and token are required")
	}
	return releaseLua.Run(ctx, l.client, []string{key}, token).Err()
}

// Cancella la chiave solo se il token e' ancora quello di chi ha preso il lock.
var releaseLua = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)
