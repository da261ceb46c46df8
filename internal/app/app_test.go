package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-ledger/config"
	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func memoryConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "memory"},
		JWT:      config.JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "clinic-ledger"},
		Ledger:   config.LedgerConfig{AppendTimeout: time.Second, VerifyBatchSize: 100, VerifyCacheTTL: time.Minute, VerifyLockTTL: time.Minute},
		Audit:    config.AuditConfig{SensitiveFields: config.DefaultSensitiveFields, ExportMaxRows: 1000},
		EOD:      config.EODConfig{CashTolerance: "0.50", Timezone: "UTC"},
		Webhook:  config.WebhookConfig{Secret: "whsec", AlertEvents: []string{"LOGIN_FAILED"}},
	}
}

func TestNew_MemoryWithoutRedis(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.RateLimits)
	require.Len(t, a.Health, 1)
	assert.Equal(t, "memory", a.Health[0].Name())

	branch := uuid.New()
	rec, err := a.Financial.Record(context.Background(), ports.NewFinancialRecord{
		BranchID: branch,
		Kind:     domain.KindInvoice,
		Amount:   decimalOf(t, "120.00"),
		TxnDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	report, err := a.Chain.Verify(context.Background(), domain.VerifyFull)
	require.NoError(t, err)
	assert.True(t, report.Verified)
	assert.Equal(t, int64(1), report.TotalEntries)

	trail, err := a.Query.Trail(context.Background(), domain.EntityFinancialRecord, rec.ID.String(), ports.Scope{Kind: ports.ScopeAll})
	require.NoError(t, err)
	assert.Equal(t, 1, trail.TotalLogs)
}

func TestNew_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.Redis = config.RedisConfig{Enabled: true, Host: mr.Host(), Port: mustPort(t, mr)}

	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.RateLimits)
	assert.Len(t, a.Health, 2)

	_, err = a.Chain.Verify(context.Background(), domain.VerifyFull)
	require.NoError(t, err)
	assert.NotEmpty(t, mr.Keys(), "the full report is cached")
}

func TestNew_RedisUnreachable(t *testing.T) {
	cfg := memoryConfig()
	cfg.Redis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	_, err := New(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNew_BadTolerance(t *testing.T) {
	cfg := memoryConfig()
	cfg.EOD.CashTolerance = "half a rupee"

	_, err := New(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestRouter_HealthAndAuth(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()
	router := a.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/eod", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := a.Tokens.Generate(ports.TokenClaims{ActorID: uuid.New(), Role: domain.RoleOwner})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/verify?mode=links", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
