package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Test d'integrazione: richiede un Redis raggiungibile.
func TestRedisLockAcquireRelease(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	l := NewRedisLock(client, quartz.NewReal(), 5*time.Second, 0, 0)
	key := "lock:test:" + uuid.NewString()
	t.Cleanup(func() { _ = client.Del(ctx, key).Err() })

	token, ok, err := l.Acquire(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected acquire to succeed, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := l.Acquire(ctx, key); err != nil || ok {
		t.Fatalf("expected second acquire to fail, got ok=%v err=%v", ok, err)
	}

	// Un token estraneo non deve cancellare il lock.
	if err := l.Release(ctx, key, "foreign"); err != nil {
		t.Fatalf("release foreign: %v", err)
	}
	if _, ok, _ := l.Acquire(ctx, key); ok {
		t.Fatalf("lock released by a foreign token")
	}

	if err := l.Release(ctx, key, token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok, err := l.Acquire(ctx, key); err != nil || !ok {
		t.Fatalf("expected acquire after release, got ok=%v err=%v", ok, err)
	}
}
