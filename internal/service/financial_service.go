package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// FinancialServiceImpl implements ports.FinancialService: every write checks the EOD lock
// and is audited inside the same transaction.
type FinancialServiceImpl struct {
	finRepo    ports.FinancialRepository
	eod        ports.EodService
	transactor ports.DBTransactor
	recorder   *AuditRecorder
	now        func() time.Time
	log        zerolog.Logger
}

// NewFinancialService creates a new FinancialServiceImpl.
func NewFinancialService(
	finRepo ports.FinancialRepository,
	eod ports.EodService,
	transactor ports.DBTransactor,
	recorder *AuditRecorder,
	log zerolog.Logger,
) *FinancialServiceImpl {
	return &FinancialServiceImpl{
		finRepo:    finRepo,
		eod:        eod,
		transactor: transactor,
		recorder:   recorder,
		now:        time.Now,
		log:        log,
	}
}

// Record posts a new invoice, payment or refund.
func (s *FinancialServiceImpl) Record(ctx context.Context, req ports.NewFinancialRecord) (*domain.FinancialRecord, error) {
	if err := validateNewRecord(req); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, beginError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txnDate := domain.CalendarDate(req.TxnDate)
	if err := s.eod.EnsureDateUnlocked(ctx, dbTx, req.BranchID, txnDate); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &domain.FinancialRecord{
		ID:        uuid.New(),
		BranchID:  req.BranchID,
		Kind:      req.Kind,
		Reference: strings.TrimSpace(req.Reference),
		Method:    req.Method,
		Amount:    req.Amount,
		TxnDate:   txnDate,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.finRepo.Create(ctx, dbTx, rec); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, apperror.ErrAlreadyExists("Financial record")
		}
		return nil, storageError("create financial record", err)
	}

	if _, err := s.recorder.RecordCreate(ctx, dbTx, domain.EntityFinancialRecord, rec.ID.String(), rec); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("record_id", rec.ID.String()).
		Str("branch_id", rec.BranchID.String()).
		Str("kind", string(rec.Kind)).
		Str("amount", rec.Amount.String()).
		Msg("financial record posted")

	return rec, nil
}

// Amend changes amount and/or method. The record's own flag and the day's close are both checked.
func (s *FinancialServiceImpl) Amend(ctx context.Context, req ports.AmendFinancialRecord) (*domain.FinancialRecord, error) {
	if req.Amount == nil && req.Method == nil {
		return nil, apperror.Validation("nothing to amend")
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, apperror.Validation("amount must be positive")
	}
	if req.Method != nil && !req.Method.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown payment method %q", *req.Method))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, beginError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	rec, err := s.lockedRecord(ctx, dbTx, req.ID)
	if err != nil {
		return nil, err
	}
	before := *rec

	if req.Amount != nil {
		rec.Amount = *req.Amount
	}
	if req.Method != nil {
		if rec.Kind == domain.KindInvoice {
			return nil, apperror.Validation("invoices carry no payment method")
		}
		rec.Method = *req.Method
	}
	rec.UpdatedAt = s.now().UTC()

	if err := s.finRepo.Update(ctx, dbTx, rec); err != nil {
		return nil, storageError("update financial record", err)
	}
	if _, err := s.recorder.RecordUpdate(ctx, dbTx, domain.EntityFinancialRecord, rec.ID.String(), &before, rec); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}
	return rec, nil
}

// Void deletes a posting of an unlocked day.
func (s *FinancialServiceImpl) Void(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return beginError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	rec, err := s.lockedRecord(ctx, dbTx, id)
	if err != nil {
		return err
	}

	if err := s.finRepo.Delete(ctx, dbTx, id); err != nil {
		return storageError("delete financial record", err)
	}
	if _, err := s.recorder.RecordDelete(ctx, dbTx, domain.EntityFinancialRecord, id.String(), rec); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("record_id", id.String()).Msg("financial record voided")
	return nil
}

// lockedRecord share-locks the record's day before row-locking the record, the order Lock
// takes them in, and refuses the record if the day is locked.
func (s *FinancialServiceImpl) lockedRecord(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.FinancialRecord, error) {
	peek, err := s.finRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get financial record", err)
	}
	if peek == nil {
		return nil, apperror.ErrNotFound("Financial record")
	}
	if err := s.eod.EnsureDateUnlocked(ctx, tx, peek.BranchID, peek.TxnDate); err != nil {
		return nil, err
	}

	rec, err := s.finRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, storageError("lock financial record", err)
	}
	if rec == nil {
		return nil, apperror.ErrNotFound("Financial record")
	}
	if rec.BranchID != peek.BranchID || !rec.TxnDate.Equal(peek.TxnDate) {
		return nil, storageError("lock financial record", fmt.Errorf("record %s moved days: %w", id, ports.ErrLockTimeout))
	}
	if rec.EodLocked {
		return nil, apperror.ErrAlreadyLocked(rec.BranchID.String(), domain.FormatDate(rec.TxnDate))
	}
	return rec, nil
}

func validateNewRecord(req ports.NewFinancialRecord) error {
	if req.BranchID == uuid.Nil {
		return apperror.Validation("branch_id is required")
	}
	if !req.Kind.Valid() {
		return apperror.Validation(fmt.Sprintf("unknown record kind %q", req.Kind))
	}
	if req.TxnDate.IsZero() {
		return apperror.Validation("txn_date is required")
	}
	if !req.Amount.IsPositive() {
		return apperror.Validation("amount must be positive")
	}
	switch req.Kind {
	case domain.KindInvoice:
		if req.Method != "" {
			return apperror.Validation("invoices carry no payment method")
		}
	default:
		if !req.Method.Valid() {
			return apperror.Validation(fmt.Sprintf("unknown payment method %q", req.Method))
		}
	}
	return nil
}
