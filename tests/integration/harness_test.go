package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"clinic-ledger/config"
	"clinic-ledger/internal/app"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// testApp runs the full stack over HTTP: gin router, middleware, services,
// the in-memory store and Redis (miniredis) for rate limits, nonces, the
// verification cache and the verification lock.
type testApp struct {
	app    *app.App
	server *httptest.Server
	redis  *miniredis.Miniredis
}

const webhookSecret = "whsec_integration"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "memory"},
		Redis:    config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port},
		JWT:      config.JWTConfig{Secret: "integration-jwt-secret", Expiry: time.Hour, Issuer: "clinic-ledger"},
		Ledger:   config.LedgerConfig{AppendTimeout: 5 * time.Second, VerifyBatchSize: 50, VerifyCacheTTL: time.Minute, VerifyLockTTL: time.Minute},
		Audit:    config.AuditConfig{SensitiveFields: config.DefaultSensitiveFields, ExportMaxRows: 10000},
		EOD:      config.EODConfig{CashTolerance: "0.50", Timezone: "UTC"},
		Webhook:  config.WebhookConfig{Secret: webhookSecret, AlertEvents: []string{"LOGIN_FAILED"}, ReplayTTL: time.Hour},
	}

	a, err := app.New(context.Background(), cfg, logger.NewWithWriter("error", false, io.Discard))
	require.NoError(t, err)

	ta := &testApp{app: a, server: httptest.NewServer(a.Router()), redis: mr}
	t.Cleanup(ta.close)
	return ta
}

func (ta *testApp) close() {
	ta.server.Close()
	ta.app.Close()
}

// staff is an authenticated caller.
type staff struct {
	ID     uuid.UUID
	Branch *uuid.UUID
	Role   string
	token  string
}

func (ta *testApp) staff(t *testing.T, role string, branch *uuid.UUID) staff {
	t.Helper()
	s := staff{ID: uuid.New(), Branch: branch, Role: role}
	token, _, err := ta.app.Tokens.Generate(ports.TokenClaims{ActorID: s.ID, BranchID: branch, Role: role})
	require.NoError(t, err)
	s.token = token
	return s
}

type envelope struct {
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"error_code"`
	Message   string          `json:"message"`
}

func (ta *testApp) do(t *testing.T, who *staff, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ta.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-ID", "integration-suite")
	if who != nil {
		req.Header.Set("Authorization", "Bearer "+who.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

// send is do without assertions, for use off the test goroutine.
func (ta *testApp) send(who *staff, method, path string, body any) int {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0
	}
	req, err := http.NewRequest(method, ta.server.URL+path, bytes.NewReader(raw))
	if err != nil {
		return 0
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+who.token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode
}
