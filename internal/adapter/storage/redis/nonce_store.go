package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// NonceStore implements ports.NonceStore with SET NX claims. The stored value
// is the claim time, which makes a stuck claim easy to spot from redis-cli.
type NonceStore struct {
	client goredis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewNonceStore(client goredis.UniversalClient) *NonceStore {
	return &NonceStore{
		client: client,
		prefix: "nonce:",
		now:    time.Now,
	}
}

func (s *NonceStore) key(namespace, nonce string) string {
	return s.prefix + namespace + ":" + nonce
}

// CheckAndSet claims nonce under namespace. It reports false when the nonce
// was already claimed within ttl.
func (s *NonceStore) CheckAndSet(ctx context.Context, namespace string, nonce string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetArgs(ctx, s.key(namespace, nonce), s.now().UTC().Format(time.RFC3339), goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis nonce check: %w", err)
	}
	return result == "OK", nil
}

// Release removes a claim. Releasing an unknown nonce is not an error.
func (s *NonceStore) Release(ctx context.Context, namespace string, nonce string) error {
	if err := s.client.Del(ctx, s.key(namespace, nonce)).Err(); err != nil {
		return fmt.Errorf("redis nonce release: %w", err)
	}
	return nil
}
