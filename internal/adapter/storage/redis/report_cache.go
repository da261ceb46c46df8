package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReportCache implements ports.ReportCache. It holds rendered verification reports.
type ReportCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewReportCache creates a new Redis-backed report cache.
func NewReportCache(client goredis.UniversalClient) *ReportCache {
	return &ReportCache{
		client: client,
		prefix: "ledger:report:",
	}
}

// Get returns nil, nil on a miss.
func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis report get: %w", err)
	}
	return val, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis report set: %w", err)
	}
	return nil
}
