package main

import (
	"context"
	"testing"
	"time"

	"clinic-ledger/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 0, Mode: "test"},
		Database: config.DatabaseConfig{Driver: "memory"},
		JWT:      config.JWTConfig{Secret: "api-test", Expiry: time.Hour},
		Ledger:   config.LedgerConfig{AppendTimeout: time.Second, VerifyBatchSize: 100},
		Audit:    config.AuditConfig{ExportMaxRows: 100},
		EOD:      config.EODConfig{CashTolerance: "0", Timezone: "UTC"},
	}
}

func TestRun_RequiresJWTSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Secret = ""

	err := run(context.Background(), cfg, zerolog.Nop())
	assert.EqualError(t, err, "invalid config: jwt.secret is required")
}

func TestRun_BadToleranceFailsStartup(t *testing.T) {
	cfg := testConfig()
	cfg.EOD.CashTolerance = "half"

	err := run(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eod.cash_tolerance")
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, testConfig(), zerolog.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
