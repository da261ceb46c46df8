package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.Database.InMemory())
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "clinic_ledger", cfg.Database.DBName)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)

	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 6379, cfg.Redis.Port)

	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "clinic-ledger", cfg.JWT.Issuer)

	assert.Equal(t, 5*time.Second, cfg.Ledger.AppendTimeout)
	assert.Equal(t, 500, cfg.Ledger.VerifyBatchSize)
	assert.Equal(t, 5*time.Minute, cfg.Ledger.VerifyCacheTTL)

	assert.Equal(t, DefaultSensitiveFields, cfg.Audit.SensitiveFields)
	assert.Equal(t, 100000, cfg.Audit.ExportMaxRows)

	assert.Equal(t, "0.50", cfg.EOD.CashTolerance)
	assert.Equal(t, time.UTC, cfg.EOD.Location())

	assert.Contains(t, cfg.Webhook.AlertEvents, "SECURITY_ALERT")
	assert.Equal(t, 72*time.Hour, cfg.Webhook.ReplayTTL)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	content := []byte(`
server:
  port: 9090
  mode: "release"
database:
  driver: "memory"
  host: "db.example.com"
  dbname: "clinic_test"
redis:
  enabled: false
jwt:
  secret: "my-jwt-secret"
  expiry: "1h"
ledger:
  append_timeout: "750ms"
  verify_batch_size: 50
audit:
  sensitive_fields: ["password_hash", "emirates_id"]
  export_max_rows: 10
eod:
  cash_tolerance: "1.00"
  timezone: "Asia/Kolkata"
webhook:
  secret: "hook-secret"
  alert_events: ["BREACH"]
log:
  level: "debug"
  pretty: true
`)
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.True(t, cfg.Database.InMemory())
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, "clinic_test", cfg.Database.DBName)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "my-jwt-secret", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 750*time.Millisecond, cfg.Ledger.AppendTimeout)
	assert.Equal(t, 50, cfg.Ledger.VerifyBatchSize)
	assert.Equal(t, []string{"password_hash", "emirates_id"}, cfg.Audit.SensitiveFields)
	assert.Equal(t, 10, cfg.Audit.ExportMaxRows)
	assert.Equal(t, "1.00", cfg.EOD.CashTolerance)
	assert.Equal(t, "Asia/Kolkata", cfg.EOD.Location().String())
	assert.Equal(t, "hook-secret", cfg.Webhook.Secret)
	assert.Equal(t, []string{"BREACH"}, cfg.Webhook.AlertEvents)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CLG_SERVER_PORT", "3000")
	t.Setenv("CLG_DATABASE_HOST", "env-db-host")
	t.Setenv("CLG_EOD_CASH_TOLERANCE", "0.25")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "env-db-host", cfg.Database.Host)
	assert.Equal(t, "0.25", cfg.EOD.CashTolerance)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load("/non/existent/path/config.yaml")
	assert.Error(t, err)
}

func TestAddresses(t *testing.T) {
	db := DatabaseConfig{Host: "localhost", Port: 5432, User: "ledger", Password: "pw", DBName: "clinic", SSLMode: "disable"}
	assert.Equal(t, "postgres://ledger:pw@localhost:5432/clinic?sslmode=disable", db.DSN())

	assert.Equal(t, "redis.local:6380", RedisConfig{Host: "redis.local", Port: 6380}.Addr())
	assert.Equal(t, "[::1]:6379", RedisConfig{Host: "::1", Port: 6379}.Addr())
}

func TestEODConfig_LocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, EODConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, time.UTC, EODConfig{}.Location())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWT:    JWTConfig{Secret: "s"},
			EOD:    EODConfig{CashTolerance: "0.50", Timezone: "UTC"},
			Ledger: LedgerConfig{VerifyBatchSize: 10},
		}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.JWT.Secret = ""
	cfg.EOD.CashTolerance = "fifty paise"
	cfg.EOD.Timezone = "Mars/Olympus"
	cfg.Ledger.VerifyBatchSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"jwt.secret", "eod.cash_tolerance", "eod.timezone", "verify_batch_size"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad_DefaultsValidateOnceSecretSet(t *testing.T) {
	t.Setenv("CLG_JWT_SECRET", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Database.StatementTimeout)
	assert.NoError(t, cfg.Validate())
}
