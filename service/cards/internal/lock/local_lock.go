package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// LocalLock e' il lock in-process usato quando Redis non e' configurato.
// Vale solo per una singola istanza del servizio.
type LocalLock struct {
	clock   quartz.Clock
	retries int
	backoff time.Duration

	mu     sync.Mutex
	tokens map[string]string
}

func NewLocalLock(clock quartz.Clock, retries int, backoff time.Duration) *LocalLock {
	return &LocalLock{
		clock:   clock,
		retries: retries,
		backoff: backoff,
		tokens:  make(map[string]string),
	}
}

func (l *LocalLock) Acquire(ctx context.Context, key string) (string, bool, error) {
	token := newToken()
	ok, err := retry(ctx, l.clock, l.retries, l.backoff, func() (bool, error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, held := l.tokens[key]; held {
			return false, nil
		}
		l.tokens[key] = token
		return true, nil
	})
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (l *LocalLock) Release(_ context.Context, key, token string) error {
	if key == "" || token == "" {
		return errors.New("key and token are required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tokens[key] == token {
		delete(l.tokens, key)
	}
	return nil
}
