package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	verifyLockKey        = "ledger:verify:lock"
	verifyCacheKeyPrefix = "ledger:verify:"
	defaultVerifyBatch   = 500
	defaultAppendTimeout = 5 * time.Second
)

// HashChainConfig tunes appends and verification scans.
type HashChainConfig struct {
	AppendTimeout   time.Duration
	VerifyBatchSize int
	VerifyCacheTTL  time.Duration
	VerifyLockTTL   time.Duration
}

// AppendRequest is the content of a new ledger entry. The engine assigns
// timestamp, previous hash and record hash.
type AppendRequest struct {
	ActorID    *uuid.UUID
	BranchID   *uuid.UUID
	DeviceID   string
	IPAddress  string
	Action     domain.LedgerAction
	EntityType string
	EntityID   string
	Before     domain.Fields
	After      domain.Fields
	Metadata   domain.Fields
	DurationMS *int64
}

// HashChain appends to and verifies the ledger hash chain.
type HashChain struct {
	repo       ports.LedgerRepository
	transactor ports.DBTransactor
	cache      ports.ReportCache       // optional
	locker     ports.DistributedLocker // optional
	cfg        HashChainConfig
	now        func() time.Time
	log        zerolog.Logger
}

// NewHashChain creates a HashChain. cache and locker may be nil.
func NewHashChain(
	repo ports.LedgerRepository,
	transactor ports.DBTransactor,
	cache ports.ReportCache,
	locker ports.DistributedLocker,
	cfg HashChainConfig,
	log zerolog.Logger,
) *HashChain {
	if cfg.VerifyBatchSize <= 0 {
		cfg.VerifyBatchSize = defaultVerifyBatch
	}
	if cfg.AppendTimeout <= 0 {
		cfg.AppendTimeout = defaultAppendTimeout
	}
	return &HashChain{
		repo:       repo,
		transactor: transactor,
		cache:      cache,
		locker:     locker,
		cfg:        cfg,
		now:        time.Now,
		log:        log,
	}
}

// Append links a new entry to the current tail inside the caller's transaction.
// The tail lock is held until tx ends, so the audited mutation and its entry commit together.
func (h *HashChain) Append(ctx context.Context, tx pgx.Tx, req AppendRequest) (*domain.LedgerEntry, error) {
	if req.Action == "" || req.EntityType == "" {
		return nil, apperror.Validation("ledger entry requires action and entity type")
	}
	if req.EntityID == "" {
		req.EntityID = domain.EntityIDNew
	}

	before, err := domain.NormalizeFields(req.Before)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("normalize before: %w", err))
	}
	after, err := domain.NormalizeFields(req.After)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("normalize after: %w", err))
	}
	metadata, err := domain.NormalizeFields(req.Metadata)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("normalize metadata: %w", err))
	}

	// Serialize appenders on the tail
	if err := h.repo.LockTail(ctx, tx, h.cfg.AppendTimeout); err != nil {
		return nil, storageError("lock ledger tail", err)
	}

	tail, err := h.repo.Tail(ctx, tx)
	if err != nil {
		return nil, storageError("read ledger tail", err)
	}
	previous := ""
	if tail != nil {
		previous = tail.RecordHash
	}

	entry := &domain.LedgerEntry{
		// storage keeps microseconds; hashing the truncated value keeps recomputation exact
		Timestamp:    h.now().UTC().Truncate(time.Microsecond),
		ActorID:      req.ActorID,
		BranchID:     req.BranchID,
		DeviceID:     req.DeviceID,
		IPAddress:    req.IPAddress,
		Action:       req.Action,
		EntityType:   req.EntityType,
		EntityID:     req.EntityID,
		Before:       before,
		After:        after,
		Metadata:     metadata,
		PreviousHash: previous,
		DurationMS:   req.DurationMS,
	}
	entry.RecordHash, err = entry.ComputeHash()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("compute record hash: %w", err))
	}

	if err := h.repo.Insert(ctx, tx, entry); err != nil {
		return nil, storageError("insert ledger entry", err)
	}

	h.log.Debug().
		Int64("entry_id", entry.ID).
		Str("action", string(entry.Action)).
		Str("entity_type", entry.EntityType).
		Msg("ledger entry appended")

	return entry, nil
}

// AppendStandalone appends in a transaction of its own.
func (h *HashChain) AppendStandalone(ctx context.Context, req AppendRequest) (*domain.LedgerEntry, error) {
	dbTx, err := h.transactor.Begin(ctx)
	if err != nil {
		return nil, beginError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	entry, err := h.Append(ctx, dbTx, req)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit ledger entry: %w", err))
	}
	return entry, nil
}

// VerifyLinks is the genesis-to-tip linkage check: every entry's PreviousHash must equal
// the stored RecordHash of the entry before it.
func (h *HashChain) VerifyLinks(ctx context.Context) ([]domain.BrokenLink, error) {
	report, err := h.scan(ctx, domain.VerifyLinks)
	if err != nil {
		return nil, err
	}
	return report.BrokenLinks, nil
}

// VerifyFull runs the linkage check plus the payload tamper check, which recomputes
// every RecordHash from the stored content.
func (h *HashChain) VerifyFull(ctx context.Context) (*domain.VerificationReport, error) {
	return h.scan(ctx, domain.VerifyFull)
}

// Verify implements ports.LedgerVerifier. Full scans are single-flight across the cluster
// when a locker is configured; results are cached when a cache is configured.
func (h *HashChain) Verify(ctx context.Context, mode domain.VerifyMode) (*domain.VerificationReport, error) {
	if mode == domain.VerifyFull && h.locker != nil {
		release, err := h.locker.Obtain(ctx, verifyLockKey, h.cfg.VerifyLockTTL)
		switch {
		case errors.Is(err, ports.ErrLockHeld):
			return nil, apperror.ErrVerificationInProgress()
		case err != nil:
			h.log.Warn().Err(err).Msg("verification lock unavailable, scanning without it (degraded mode)")
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					h.log.Warn().Err(err).Msg("failed to release verification lock")
				}
			}()
		}
	}

	report, err := h.scan(ctx, mode)
	if err != nil {
		return nil, err
	}

	if !report.Verified {
		h.log.Error().
			Str("mode", string(mode)).
			Int("broken_links", len(report.BrokenLinks)).
			Int("tampered_entries", len(report.TamperedEntries)).
			Int64("total_entries", report.TotalEntries).
			Msg("ledger chain integrity violation")
	}

	h.cacheReport(ctx, report)
	return report, nil
}

// Health returns the most recent cached report, or runs a fresh linkage scan.
func (h *HashChain) Health(ctx context.Context) (*domain.VerificationReport, error) {
	for _, mode := range []domain.VerifyMode{domain.VerifyFull, domain.VerifyLinks} {
		if report := h.cachedReport(ctx, mode); report != nil {
			return report, nil
		}
	}
	return h.Verify(ctx, domain.VerifyLinks)
}

// RequireIntact fails with ChainIntegrityViolation unless a full scan is clean.
func (h *HashChain) RequireIntact(ctx context.Context) error {
	report, err := h.Verify(ctx, domain.VerifyFull)
	if err != nil {
		return err
	}
	if !report.Verified {
		return apperror.ErrChainIntegrityViolation(len(report.BrokenLinks), len(report.TamperedEntries))
	}
	return nil
}

// scan walks the ledger by id in keyset batches. Cancellation is checked between batches.
func (h *HashChain) scan(ctx context.Context, mode domain.VerifyMode) (*domain.VerificationReport, error) {
	report := &domain.VerificationReport{
		Mode:        mode,
		BrokenLinks: []domain.BrokenLink{},
	}
	if mode == domain.VerifyFull {
		report.TamperedEntries = []domain.TamperedEntry{}
	}

	expected := ""
	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("verify chain cancelled: %w", err))
		}

		batch, err := h.repo.ScanAscending(ctx, afterID, h.cfg.VerifyBatchSize)
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("scan ledger: %w", err))
		}

		for i := range batch {
			e := &batch[i]
			if e.PreviousHash != expected {
				report.BrokenLinks = append(report.BrokenLinks, domain.BrokenLink{
					EntryID:          e.ID,
					ExpectedPrevious: expected,
					ActualPrevious:   e.PreviousHash,
					Timestamp:        e.Timestamp,
				})
			}
			if mode == domain.VerifyFull {
				computed, err := e.ComputeHash()
				if err != nil {
					return nil, apperror.InternalError(fmt.Errorf("recompute hash of entry %d: %w", e.ID, err))
				}
				if computed != e.RecordHash {
					report.TamperedEntries = append(report.TamperedEntries, domain.TamperedEntry{
						EntryID:      e.ID,
						StoredHash:   e.RecordHash,
						ComputedHash: computed,
						Timestamp:    e.Timestamp,
					})
				}
			}
			expected = e.RecordHash
			afterID = e.ID
			report.TotalEntries++
		}

		if len(batch) < h.cfg.VerifyBatchSize {
			break
		}
	}

	report.TipHash = expected
	report.Verified = len(report.BrokenLinks) == 0 && len(report.TamperedEntries) == 0
	report.CheckedAt = h.now().UTC()
	return report, nil
}

func (h *HashChain) cacheReport(ctx context.Context, report *domain.VerificationReport) {
	if h.cache == nil || h.cfg.VerifyCacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to marshal verification report")
		return
	}
	if err := h.cache.Set(ctx, verifyCacheKeyPrefix+string(report.Mode), data, h.cfg.VerifyCacheTTL); err != nil {
		h.log.Warn().Err(err).Msg("failed to cache verification report")
	}
}

func (h *HashChain) cachedReport(ctx context.Context, mode domain.VerifyMode) *domain.VerificationReport {
	if h.cache == nil {
		return nil
	}
	data, err := h.cache.Get(ctx, verifyCacheKeyPrefix+string(mode))
	if err != nil {
		h.log.Warn().Err(err).Msg("verification cache read failed")
		return nil
	}
	if data == nil {
		return nil
	}
	var report domain.VerificationReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil
	}
	return &report
}

// storageError keeps contention distinguishable: it is retryable and must reach the caller.
func storageError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isContention(err) {
		return apperror.ErrChainContention(fmt.Errorf("%s: %w", op, err))
	}
	return apperror.ErrDatabaseError(fmt.Errorf("%s: %w", op, err))
}

func beginError(err error) error {
	if isContention(err) {
		return apperror.ErrChainContention(fmt.Errorf("begin tx: %w", err))
	}
	return apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
}

func isContention(err error) bool {
	return errors.Is(err, ports.ErrLockTimeout) || errors.Is(err, context.DeadlineExceeded)
}
