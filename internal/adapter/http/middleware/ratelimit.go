package middleware

import (
	"context"
	"strconv"
	"time"

	redisStore "clinic-ledger/internal/adapter/storage/redis"
	"clinic-ledger/pkg/apperror"
	"clinic-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitStore spends request budgets.
type RateLimitStore interface {
	Spend(ctx context.Context, b redisStore.Budget) (*redisStore.Spent, error)
}

// Scope says whose budget a request spends.
type Scope int

const (
	// PerStaff charges the signed-in staff member, or the client IP without a token.
	PerStaff Scope = iota
	// PerBranch charges the staff member's branch. Org-wide roles fall back to PerStaff.
	PerBranch
	// PerSource charges the client IP whatever the token says.
	PerSource
)

// RateLimitRule is the allowance of one endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
	Scope  Scope
}

// DefaultRateLimitRules returns the per-group limits. Exports and day-close
// work are shared by everyone at a branch, everything else is per person.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"audit_read":   {Limit: 120, Window: time.Minute, Scope: PerStaff},
		"audit_write":  {Limit: 300, Window: time.Minute, Scope: PerStaff},
		"audit_export": {Limit: 10, Window: time.Hour, Scope: PerBranch},
		"audit_verify": {Limit: 6, Window: time.Minute, Scope: PerStaff},
		"eod":          {Limit: 60, Window: time.Minute, Scope: PerBranch},
		"financial":    {Limit: 300, Window: time.Minute, Scope: PerStaff},
		"webhook":      {Limit: 600, Window: time.Minute, Scope: PerSource},
	}
}

// RateLimiter charges each request to the budget of group for the subject
// picked by rule.Scope. A store failure lets the request through.
func RateLimiter(store RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := budgetSubject(c, rule.Scope)

		spent, err := store.Spend(c.Request.Context(), redisStore.Budget{
			Group:   group,
			Subject: subject,
			Limit:   rule.Limit,
			Window:  rule.Window,
		})
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(spent.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(spent.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(spent.ResetAt.Unix(), 10))

		if !spent.Allowed {
			retryAfter := int64(time.Until(spent.ResetAt).Round(time.Second) / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			log.Info().Str("group", group).Str("subject", subject).Msg("request budget exhausted")
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

func budgetSubject(c *gin.Context, scope Scope) string {
	claims, ok := Claims(c)
	if !ok || scope == PerSource {
		return "ip:" + c.ClientIP()
	}
	if scope == PerBranch && claims.BranchID != nil {
		return "branch:" + claims.BranchID.String()
	}
	return "staff:" + claims.ActorID.String()
}
