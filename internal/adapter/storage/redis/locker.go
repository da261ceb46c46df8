package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-ledger/internal/core/ports"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
)

// Locker implements ports.DistributedLocker with redislock.
// Obtain does not retry: a held lock is reported immediately as ports.ErrLockHeld.
type Locker struct {
	client *redislock.Client
	prefix string
}

// NewLocker creates a Redis-backed distributed locker.
func NewLocker(client goredis.UniversalClient) *Locker {
	return &Locker{
		client: redislock.New(client),
		prefix: "lock:",
	}
}

func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, l.prefix+key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ports.ErrLockHeld
		}
		return nil, fmt.Errorf("redis obtain lock %s: %w", key, err)
	}

	release := func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("redis release lock %s: %w", key, err)
		}
		return nil
	}
	return release, nil
}
