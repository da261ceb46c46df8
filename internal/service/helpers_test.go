package service

import (
	"context"
	"io"
	"testing"
	"time"

	"clinic-ledger/internal/adapter/storage/memory"
	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// testEnv wires every service over one memory store.
type testEnv struct {
	store    *memory.Store
	ledger   *memory.LedgerRepo
	eods     *memory.EodLockRepo
	records  *memory.FinancialRepo
	recons   *memory.ReconciliationRepo
	excs     *memory.ExceptionRepo
	chain    *HashChain
	recorder *AuditRecorder
	eod      *EodServiceImpl
	fin      *FinancialServiceImpl
	recon    *ReconciliationServiceImpl
	query    *AuditQueryServiceImpl
}

type envOption func(*envConfig)

type envConfig struct {
	finRepo  func(ports.FinancialRepository) ports.FinancialRepository
	lockWait time.Duration
}

func withFinancialRepo(wrap func(ports.FinancialRepository) ports.FinancialRepository) envOption {
	return func(c *envConfig) { c.finRepo = wrap }
}

func withLockWait(d time.Duration) envOption {
	return func(c *envConfig) { c.lockWait = d }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := envConfig{lockWait: 2 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := newTestLogger()
	store := memory.New(memory.WithLockWait(cfg.lockWait))
	env := &testEnv{
		store:   store,
		ledger:  memory.NewLedgerRepo(store),
		eods:    memory.NewEodLockRepo(store),
		records: memory.NewFinancialRepo(store),
		recons:  memory.NewReconciliationRepo(store),
		excs:    memory.NewExceptionRepo(store),
	}

	var finRepo ports.FinancialRepository = env.records
	if cfg.finRepo != nil {
		finRepo = cfg.finRepo(finRepo)
	}

	env.chain = NewHashChain(env.ledger, store, nil, nil, HashChainConfig{VerifyBatchSize: 3}, log)
	env.recorder = NewAuditRecorder(env.chain, DefaultSnapshots(), log)
	env.eod = NewEodService(env.eods, finRepo, env.excs, store, env.recorder, decimal.Zero, log)
	env.fin = NewFinancialService(finRepo, env.eod, store, env.recorder, log)
	env.recon = NewReconciliationService(env.eods, env.recons, env.excs, store, env.recorder, log)
	env.query = NewAuditQueryService(env.ledger, env.chain, env.recorder, NewRedactor([]string{"password", "phone"}), 100, log)
	return env
}

// staffCtx carries request provenance the way the HTTP middleware does.
func staffCtx(actor, branch uuid.UUID) context.Context {
	return domain.WithRequestMeta(context.Background(), domain.RequestMeta{
		ActorID:   &actor,
		BranchID:  &branch,
		Role:      domain.RoleManager,
		DeviceID:  "front-desk-1",
		IPAddress: "10.0.0.7",
		StartTime: time.Now(),
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func (env *testEnv) post(t *testing.T, branch uuid.UUID, date string, kind domain.FinancialKind, method domain.PaymentMethod, amount string) *domain.FinancialRecord {
	t.Helper()
	rec, err := env.fin.Record(context.Background(), ports.NewFinancialRecord{
		BranchID:  branch,
		Kind:      kind,
		Reference: string(kind) + "-" + amount,
		Method:    method,
		Amount:    dec(amount),
		TxnDate:   day(date),
	})
	require.NoError(t, err)
	return rec
}

func (env *testEnv) allEntries(t *testing.T) []domain.LedgerEntry {
	t.Helper()
	entries, err := env.ledger.ScanAscending(context.Background(), 0, 10_000)
	require.NoError(t, err)
	return entries
}

// prepareVerified opens a close and completes every verification step with actual == expected.
func (env *testEnv) prepareVerified(t *testing.T, branch uuid.UUID, date string, opening string) *domain.EodLock {
	t.Helper()
	ctx := context.Background()
	staff := uuid.New()
	o := dec(opening)

	lock, err := env.eod.Prepare(ctx, ports.PrepareEodRequest{BranchID: branch, Date: day(date), OpeningCash: &o, PreparedBy: staff})
	require.NoError(t, err)
	lock, err = env.eod.VerifyCash(ctx, lock.ID, lock.ExpectedCash, staff)
	require.NoError(t, err)
	_, err = env.eod.VerifyDigitalPayments(ctx, lock.ID, staff)
	require.NoError(t, err)
	_, err = env.eod.VerifyInvoices(ctx, lock.ID, staff)
	require.NoError(t, err)
	lock, err = env.eod.Review(ctx, lock.ID, staff, "ok")
	require.NoError(t, err)
	return lock
}
