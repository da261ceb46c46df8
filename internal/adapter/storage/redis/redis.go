package redis

import (
	"context"
	"fmt"
	"time"

	"clinic-ledger/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	clientName     = "clinic-ledger"
	healthProbeKey = "health:probe"
	healthProbeTTL = 5 * time.Second
)

// NewClient connects to Redis and pings it once before handing the client out.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:       cfg.Addr(),
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: clientName,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Msg("Redis connection established")

	return client, nil
}

// HealthCheck implements ports.HealthChecker. It writes a short-lived key
// because the replay guard and the verification lock both need writes;
// a read-only replica answers PING but cannot serve either.
type HealthCheck struct {
	client goredis.UniversalClient
}

func NewHealthCheck(client goredis.UniversalClient) *HealthCheck {
	return &HealthCheck{client: client}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.client.Set(ctx, healthProbeKey, time.Now().UTC().Unix(), healthProbeTTL).Err()
}

func (h *HealthCheck) Name() string {
	return "redis"
}
