package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Budget is one request spending against an endpoint group's allowance.
// Subject names whose allowance it is: "staff:<id>", "branch:<id>" or "ip:<addr>".
type Budget struct {
	Group   string
	Subject string
	Limit   int64
	Window  time.Duration
}

// Spent reports what is left of a budget after a request.
type Spent struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time // when the oldest counted request leaves the window
}

// RateLimitStore keeps a sliding log of admitted requests per group and
// subject, one sorted set per budget scored by admission time in ms.
type RateLimitStore struct {
	client goredis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRateLimitStore(client goredis.UniversalClient) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

func (s *RateLimitStore) key(b Budget) string {
	return s.prefix + b.Group + ":" + b.Subject
}

// Spend prunes entries older than the window, logs this request and counts
// the log in one MULTI. A refused request is taken back out so clients
// hammering a closed budget do not keep it closed.
func (s *RateLimitStore) Spend(ctx context.Context, b Budget) (*Spent, error) {
	now := s.now()
	key := s.key(b)
	member := uuid.NewString()
	floor := "(" + strconv.FormatInt(now.Add(-b.Window).UnixMilli(), 10)

	var used *goredis.IntCmd
	var oldest *goredis.ZSliceCmd
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, key, "-inf", floor)
		p.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixMilli()), Member: member})
		used = p.ZCard(ctx, key)
		oldest = p.ZRangeWithScores(ctx, key, 0, 0)
		p.PExpire(ctx, key, b.Window+time.Second)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis spend %s budget: %w", b.Group, err)
	}

	count := used.Val()
	allowed := count <= b.Limit
	if !allowed {
		if err := s.client.ZRem(ctx, key, member).Err(); err != nil {
			return nil, fmt.Errorf("redis refund %s budget: %w", b.Group, err)
		}
		count--
	}

	reset := now.Add(b.Window)
	if z := oldest.Val(); len(z) > 0 {
		reset = time.UnixMilli(int64(z[0].Score)).Add(b.Window)
	}
	remaining := b.Limit - count
	if remaining < 0 || !allowed {
		remaining = 0
	}
	return &Spent{
		Allowed:   allowed,
		Limit:     b.Limit,
		Remaining: remaining,
		ResetAt:   reset,
	}, nil
}
