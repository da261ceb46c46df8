// Package app wires storage, services and the HTTP router from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"

	"clinic-ledger/config"
	httpHandler "clinic-ledger/internal/adapter/http/handler"
	"clinic-ledger/internal/adapter/http/middleware"
	"clinic-ledger/internal/adapter/storage/memory"
	pgStorage "clinic-ledger/internal/adapter/storage/postgres"
	redisStorage "clinic-ledger/internal/adapter/storage/redis"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/internal/service"
	"clinic-ledger/migrations"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// App holds the wired services of one process.
type App struct {
	Chain      *service.HashChain
	Recorder   *service.AuditRecorder
	Query      *service.AuditQueryServiceImpl
	Eod        *service.EodServiceImpl
	Financial  *service.FinancialServiceImpl
	Recon      *service.ReconciliationServiceImpl
	Webhooks   *service.WebhookIngressImpl
	Tokens     *service.JWTTokenService
	RateLimits middleware.RateLimitStore // nil without redis
	Health     []ports.HealthChecker

	cfg     *config.Config
	log     zerolog.Logger
	closers []func()
}

type repositories struct {
	ledger     ports.LedgerRepository
	eods       ports.EodLockRepository
	records    ports.FinancialRepository
	recons     ports.ReconciliationRepository
	excs       ports.ExceptionRepository
	transactor ports.DBTransactor
}

// New connects storage per cfg and builds every service.
// Redis is optional: without it there is no replay guard cache, rate limiting or verification single-flight.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	repos, err := a.openStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		cache  ports.ReportCache
		locker ports.DistributedLocker
		nonces ports.NonceStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		cache, locker, nonces = a.redisAdapters(rdb)
	} else {
		log.Warn().Msg("redis disabled: rate limiting off, webhook replay guard falls back to the ledger")
	}

	tolerance, err := decimal.NewFromString(cfg.EOD.CashTolerance)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("eod.cash_tolerance: %w", err)
	}

	sigSvc := service.NewHMACSignatureService()
	a.Tokens = TokenService(cfg)

	a.Chain = service.NewHashChain(repos.ledger, repos.transactor, cache, locker, service.HashChainConfig{
		AppendTimeout:   cfg.Ledger.AppendTimeout,
		VerifyBatchSize: cfg.Ledger.VerifyBatchSize,
		VerifyCacheTTL:  cfg.Ledger.VerifyCacheTTL,
		VerifyLockTTL:   cfg.Ledger.VerifyLockTTL,
	}, log)
	a.Recorder = service.NewAuditRecorder(a.Chain, service.DefaultSnapshots(), log)
	a.Query = service.NewAuditQueryService(repos.ledger, a.Chain, a.Recorder,
		service.NewRedactor(cfg.Audit.SensitiveFields), cfg.Audit.ExportMaxRows, log)
	a.Eod = service.NewEodService(repos.eods, repos.records, repos.excs, repos.transactor, a.Recorder, tolerance, log)
	a.Financial = service.NewFinancialService(repos.records, a.Eod, repos.transactor, a.Recorder, log)
	a.Recon = service.NewReconciliationService(repos.eods, repos.recons, repos.excs, repos.transactor, a.Recorder, log)
	a.Webhooks = service.NewWebhookIngress(sigSvc, nonces, repos.ledger, a.Recorder, a.alertNotifier(sigSvc),
		service.WebhookIngressConfig{
			Secret:      cfg.Webhook.Secret,
			AlertEvents: cfg.Webhook.AlertEvents,
			ReplayTTL:   cfg.Webhook.ReplayTTL,
		}, log)

	return a, nil
}

func (a *App) openStorage(ctx context.Context) (*repositories, error) {
	if a.cfg.Database.InMemory() {
		store := memory.New(memory.WithLockWait(a.cfg.Ledger.AppendTimeout))
		a.Health = append(a.Health, store)
		a.log.Warn().Msg("using in-memory storage, data is lost on exit")
		return &repositories{
			ledger:     memory.NewLedgerRepo(store),
			eods:       memory.NewEodLockRepo(store),
			records:    memory.NewFinancialRepo(store),
			recons:     memory.NewReconciliationRepo(store),
			excs:       memory.NewExceptionRepo(store),
			transactor: store,
		}, nil
	}

	pool, err := pgStorage.NewPool(ctx, a.cfg.Database, a.log)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	a.Health = append(a.Health, pgStorage.NewHealthCheck(pool))

	if a.cfg.Database.AutoMigrate {
		applied, err := migrations.Apply(ctx, pool)
		if err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.log.Info().Strs("applied", applied).Msg("migrations up to date")
	}

	return &repositories{
		ledger:     pgStorage.NewLedgerRepo(pool),
		eods:       pgStorage.NewEodLockRepo(pool),
		records:    pgStorage.NewFinancialRepo(pool),
		recons:     pgStorage.NewReconciliationRepo(pool),
		excs:       pgStorage.NewExceptionRepo(pool),
		transactor: pgStorage.NewTransactor(pool, a.cfg.Database.StatementTimeout),
	}, nil
}

func (a *App) redisAdapters(rdb goredis.UniversalClient) (ports.ReportCache, ports.DistributedLocker, ports.NonceStore) {
	a.Health = append(a.Health, redisStorage.NewHealthCheck(rdb))
	a.RateLimits = redisStorage.NewRateLimitStore(rdb)
	return redisStorage.NewReportCache(rdb), redisStorage.NewLocker(rdb), redisStorage.NewNonceStore(rdb)
}

func (a *App) alertNotifier(sigSvc ports.SignatureService) ports.AlertNotifier {
	notifiers := service.MultiNotifier{service.NewLogAlertNotifier(a.log)}
	if a.cfg.Webhook.AlertURL != "" {
		client := &http.Client{Timeout: a.cfg.Webhook.AlertTimeout}
		notifiers = append(notifiers, service.NewHTTPAlertNotifier(a.cfg.Webhook.AlertURL, a.cfg.Webhook.Secret, sigSvc, client, a.log))
	}
	return notifiers
}

// Router builds the HTTP surface over the wired services.
// TokenService builds the staff token issuer without opening any storage.
func TokenService(cfg *config.Config) *service.JWTTokenService {
	return service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
}

func (a *App) Router() *gin.Engine {
	return httpHandler.SetupRouter(httpHandler.RouterDeps{
		Appender:       a.Recorder,
		QuerySvc:       a.Query,
		Verifier:       a.Chain,
		EodSvc:         a.Eod,
		ReconSvc:       a.Recon,
		FinancialSvc:   a.Financial,
		Webhooks:       a.Webhooks,
		TokenSvc:       a.Tokens,
		RateLimitStore: a.RateLimits,
		HealthCheckers: a.Health,
		Location:       a.cfg.EOD.Location(),
		Logger:         a.log,
	})
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
