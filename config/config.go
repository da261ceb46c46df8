package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Audit    AuditConfig    `mapstructure:"audit"`
	EOD      EODConfig      `mapstructure:"eod"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver           string        `mapstructure:"driver"` // postgres, memory
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"dbname"`
	SSLMode          string        `mapstructure:"sslmode"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
	// StatementTimeout bounds every statement inside a transaction, row-lock waits included.
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// InMemory reports whether the process should run against the in-process store.
func (d DatabaseConfig) InMemory() bool {
	return strings.EqualFold(d.Driver, "memory")
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// LedgerConfig tunes the hash chain engine.
type LedgerConfig struct {
	AppendTimeout   time.Duration `mapstructure:"append_timeout"`
	VerifyBatchSize int           `mapstructure:"verify_batch_size"`
	VerifyCacheTTL  time.Duration `mapstructure:"verify_cache_ttl"`
	VerifyLockTTL   time.Duration `mapstructure:"verify_lock_ttl"`
}

// AuditConfig controls the read side of the ledger.
type AuditConfig struct {
	SensitiveFields []string `mapstructure:"sensitive_fields"`
	ExportMaxRows   int      `mapstructure:"export_max_rows"`
}

// EODConfig holds end-of-day policy.
type EODConfig struct {
	CashTolerance string `mapstructure:"cash_tolerance"` // decimal string, e.g. "0.50"
	Timezone      string `mapstructure:"timezone"`
}

// Location resolves the configured business timezone, falling back to UTC.
func (e EODConfig) Location() *time.Location {
	if e.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WebhookConfig configures inbound audit events and outbound alerts.
type WebhookConfig struct {
	Secret       string        `mapstructure:"secret"`
	AlertEvents  []string      `mapstructure:"alert_events"`
	AlertURL     string        `mapstructure:"alert_url"`
	AlertTimeout time.Duration `mapstructure:"alert_timeout"`
	ReplayTTL    time.Duration `mapstructure:"replay_ttl"`
}

// DefaultSensitiveFields is the redaction deny-list used when none is configured.
var DefaultSensitiveFields = []string{
	"password",
	"password_hash",
	"national_id",
	"national_id_number",
	"aadhaar_number",
	"pan_number",
	"ssn",
	"otp",
	"otp_code",
	"access_token",
	"refresh_token",
	"secret",
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if _, err := decimal.NewFromString(c.EOD.CashTolerance); err != nil {
		errs = append(errs, fmt.Errorf("eod.cash_tolerance %q is not a decimal", c.EOD.CashTolerance))
	}
	if c.EOD.Timezone != "" {
		if _, err := time.LoadLocation(c.EOD.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("eod.timezone: %w", err))
		}
	}
	if c.Ledger.VerifyBatchSize <= 0 {
		errs = append(errs, errors.New("ledger.verify_batch_size must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: CLG_ (Clinic Ledger).
// Nested keys use underscore: CLG_DATABASE_HOST, CLG_EOD_CASH_TOLERANCE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "clinic_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("database.statement_timeout", "15s")
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "12h")
	v.SetDefault("jwt.issuer", "clinic-ledger")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("ledger.append_timeout", "5s")
	v.SetDefault("ledger.verify_batch_size", 500)
	v.SetDefault("ledger.verify_cache_ttl", "5m")
	v.SetDefault("ledger.verify_lock_ttl", "10m")
	v.SetDefault("audit.sensitive_fields", DefaultSensitiveFields)
	v.SetDefault("audit.export_max_rows", 100000)
	v.SetDefault("eod.cash_tolerance", "0.50")
	v.SetDefault("eod.timezone", "UTC")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.alert_events", []string{"SECURITY_ALERT", "TAMPER_SUSPECTED", "LOGIN_ANOMALY"})
	v.SetDefault("webhook.alert_url", "")
	v.SetDefault("webhook.alert_timeout", "10s")
	v.SetDefault("webhook.replay_ttl", "72h")

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: CLG_DATABASE_HOST -> database.host
	v.SetEnvPrefix("CLG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
