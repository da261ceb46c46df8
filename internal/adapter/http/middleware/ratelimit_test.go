package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-ledger/internal/adapter/http/middleware"
	redisStore "clinic-ledger/internal/adapter/storage/redis"
	"clinic-ledger/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitRouter(store middleware.RateLimitStore, claims *ports.TokenClaims) *gin.Engine {
	return setupScopedRouter(store, middleware.PerStaff, claims)
}

func setupScopedRouter(store middleware.RateLimitStore, scope middleware.Scope, claims *ports.TokenClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute, Scope: scope}
	r.GET("/test", func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.CtxClaims, claims)
		}
		c.Next()
	}, middleware.RateLimiter(store, "audit_read", rule, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func newRedisStore(t *testing.T) *redisStore.RateLimitStore {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redisStore.NewRateLimitStore(client)
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router := setupRateLimitRouter(newRedisStore(t), nil)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	router := setupRateLimitRouter(newRedisStore(t), nil)

	for i := 0; i < 3; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_KeysByActor(t *testing.T) {
	store := newRedisStore(t)
	first := setupRateLimitRouter(store, &ports.TokenClaims{ActorID: uuid.New()})
	second := setupRateLimitRouter(store, &ports.TokenClaims{ActorID: uuid.New()})

	for i := 0; i < 3; i++ {
		first.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	}

	w := httptest.NewRecorder()
	second.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code, "same IP, different staff member")
}

func TestRateLimiter_BranchShareOneBudget(t *testing.T) {
	store := newRedisStore(t)
	branch := uuid.New()
	frontDesk := setupScopedRouter(store, middleware.PerBranch, &ports.TokenClaims{ActorID: uuid.New(), BranchID: &branch})
	manager := setupScopedRouter(store, middleware.PerBranch, &ports.TokenClaims{ActorID: uuid.New(), BranchID: &branch})
	other := uuid.New()
	elsewhere := setupScopedRouter(store, middleware.PerBranch, &ports.TokenClaims{ActorID: uuid.New(), BranchID: &other})

	for i := 0; i < 3; i++ {
		frontDesk.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	}

	w := httptest.NewRecorder()
	manager.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "same branch spends the same budget")

	w = httptest.NewRecorder()
	elsewhere.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_OrgWideStaffFallBackToOwnBudget(t *testing.T) {
	store := newRedisStore(t)
	owner := setupScopedRouter(store, middleware.PerBranch, &ports.TokenClaims{ActorID: uuid.New()})
	auditor := setupScopedRouter(store, middleware.PerBranch, &ports.TokenClaims{ActorID: uuid.New()})

	for i := 0; i < 3; i++ {
		owner.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	}

	w := httptest.NewRecorder()
	auditor.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_SourceScopeIgnoresToken(t *testing.T) {
	store := newRedisStore(t)
	first := setupScopedRouter(store, middleware.PerSource, &ports.TokenClaims{ActorID: uuid.New()})
	second := setupScopedRouter(store, middleware.PerSource, &ports.TokenClaims{ActorID: uuid.New()})

	for i := 0; i < 3; i++ {
		first.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	}

	w := httptest.NewRecorder()
	second.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "same client address")
}

type failingStore struct{}

func (failingStore) Spend(context.Context, redisStore.Budget) (*redisStore.Spent, error) {
	return nil, errors.New("redis unavailable")
}

func TestRateLimiter_DegradedModeAllows(t *testing.T) {
	router := setupRateLimitRouter(failingStore{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestDefaultRateLimitRules(t *testing.T) {
	rules := middleware.DefaultRateLimitRules()
	for _, group := range []string{"audit_read", "audit_write", "audit_export", "audit_verify", "eod", "financial", "webhook"} {
		rule, ok := rules[group]
		assert.True(t, ok, group)
		assert.Positive(t, rule.Limit)
		assert.Positive(t, rule.Window)
	}
	assert.Equal(t, middleware.PerBranch, rules["audit_export"].Scope)
	assert.Equal(t, middleware.PerBranch, rules["eod"].Scope)
	assert.Equal(t, middleware.PerSource, rules["webhook"].Scope)
}
