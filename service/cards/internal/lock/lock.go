package lock

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// Manager gestisce l'acquisizione e il rilascio di lock per chiave.
type Manager interface {
	Acquire(ctx context.Context, key string) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// retry ritenta try fino a retries volte, attendendo backoff fra un tentativo e l'altro.
func retry(ctx context.Context, clock quartz.Clock, retries int, backoff time.Duration, try func() (bool, error)) (bool, error) {
	for attempt := 0; attempt <= retries; attempt++ {
		ok, err := try()
		if err != nil || ok {
			return ok, err
		}
		if attempt == retries {
			break
		}
		timer := clock.NewTimer(backoff, "lock", "backoff")
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}
	return false, nil
}

func newToken() string {
	return uuid.NewString()
}
