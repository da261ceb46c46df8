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
	"github.com/shopspring/decimal"
)

// DefaultCashTolerance is the allowed |actual - expected| before a cash count is a discrepancy.
var DefaultCashTolerance = decimal.RequireFromString("0.50")

// EodServiceImpl implements ports.EodService.
type EodServiceImpl struct {
	eodRepo    ports.EodLockRepository
	finRepo    ports.FinancialRepository
	excRepo    ports.ExceptionRepository
	transactor ports.DBTransactor
	recorder   *AuditRecorder
	tolerance  decimal.Decimal
	now        func() time.Time
	log        zerolog.Logger
}

// NewEodService creates a new EodServiceImpl. A non-positive tolerance falls back to DefaultCashTolerance.
func NewEodService(
	eodRepo ports.EodLockRepository,
	finRepo ports.FinancialRepository,
	excRepo ports.ExceptionRepository,
	transactor ports.DBTransactor,
	recorder *AuditRecorder,
	tolerance decimal.Decimal,
	log zerolog.Logger,
) *EodServiceImpl {
	if !tolerance.IsPositive() {
		tolerance = DefaultCashTolerance
	}
	return &EodServiceImpl{
		eodRepo:    eodRepo,
		finRepo:    finRepo,
		excRepo:    excRepo,
		transactor: transactor,
		recorder:   recorder,
		tolerance:  tolerance,
		now:        time.Now,
		log:        log,
	}
}

// Prepare opens the close for (branch, date) and computes its totals.
func (s *EodServiceImpl) Prepare(ctx context.Context, req ports.PrepareEodRequest) (*domain.EodLock, error) {
	if req.BranchID == uuid.Nil {
		return nil, apperror.Validation("branch_id is required")
	}
	if req.PreparedBy == uuid.Nil {
		return nil, apperror.Validation("prepared_by is required")
	}
	if req.Date.IsZero() {
		return nil, apperror.Validation("date is required")
	}
	if req.OpeningCash != nil && req.OpeningCash.IsNegative() {
		return nil, apperror.Validation("opening cash must not be negative")
	}
	date := domain.CalendarDate(req.Date)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, beginError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	existing, err := s.eodRepo.GetByBranchDateForShare(ctx, dbTx, req.BranchID, date)
	if err != nil {
		return nil, storageError("check existing eod", err)
	}
	if existing != nil {
		return nil, apperror.ErrAlreadyExists("EOD lock for this branch and date")
	}

	opening := decimal.Zero
	switch {
	case req.OpeningCash != nil:
		opening = *req.OpeningCash
	default:
		prior, err := s.eodRepo.LastLockedBefore(ctx, dbTx, req.BranchID, date)
		if err != nil {
			return nil, storageError("load prior locked day", err)
		}
		if prior != nil {
			opening = prior.ExpectedCash
			if prior.ActualCash != nil {
				opening = *prior.ActualCash
			}
		}
	}

	totals, err := s.aggregate(ctx, dbTx, req.BranchID, date)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	lock := &domain.EodLock{
		ID:          uuid.New(),
		BranchID:    req.BranchID,
		LockDate:    date,
		Status:      domain.EodStatusPrepared,
		OpeningCash: opening,
		PreparedBy:  req.PreparedBy,
		PreparedAt:  now,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	lock.ApplyTotals(totals)

	if err := s.eodRepo.Create(ctx, dbTx, lock); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, apperror.ErrAlreadyExists("EOD lock for this branch and date")
		}
		return nil, storageError("create eod", err)
	}

	if _, err := s.recorder.RecordMutation(ctx, dbTx, Mutation{
		EntityType: domain.EntityEodLock,
		EntityID:   lock.ID.String(),
		Action:     domain.ActionEodPrepared,
		After:      lock,
	}); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.logTransition(lock, "eod prepared")
	return lock, nil
}

// Get returns one close.
func (s *EodServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.EodLock, error) {
	lock, err := s.eodRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get eod: %w", err))
	}
	if lock == nil {
		return nil, apperror.ErrNotFound("EOD lock")
	}
	return lock, nil
}

// List returns closes matching params, newest date first.
func (s *EodServiceImpl) List(ctx context.Context, params ports.EodListParams) ([]domain.EodLock, error) {
	if params.From != nil && params.To != nil && params.From.After(*params.To) {
		return nil, apperror.Validation("from must not be after to")
	}
	locks, err := s.eodRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list eod: %w", err))
	}
	if locks == nil {
		locks = []domain.EodLock{}
	}
	return locks, nil
}

// RecalculateTotals re-aggregates the day's postings. Totals are frozen once locked.
func (s *EodServiceImpl) RecalculateTotals(ctx context.Context, id uuid.UUID) (*domain.EodLock, error) {
	return s.transition(ctx, id, domain.ActionEodRecalculated, func(ctx context.Context, tx pgx.Tx, lock *domain.EodLock) (domain.Fields, error) {
		switch lock.Status {
		case domain.EodStatusLocked:
			return nil, apperror.ErrEodLocked()
		case domain.EodStatusReversed:
			return nil, apperror.ErrInvalidTransition(string(lock.Status), "RECALCULATED")
		}
		totals, err := s.aggregate(ctx, tx, lock.BranchID, lock.LockDate)
		if err != nil {
			return nil, err
		}
		lock.ApplyTotals(totals)
		if lock.ActualCash != nil {
			s.assessCash(lock)
		}
		return nil, nil
	})
}

// VerifyCash records the counted drawer cash and flags a discrepancy beyond tolerance.
// A discrepancy also opens a CASH_SHORTAGE or CASH_EXCESS exception.
func (s *EodServiceImpl) VerifyCash(ctx context.Context, id uuid.UUID, actualCash decimal.Decimal, verifier uuid.UUID) (*domain.EodLock, error) {
	if verifier == uuid.Nil {
		return nil, apperror.Validation("verifier is required")
	}
	if actualCash.IsNegative() {
		return nil, apperror.Validation("actual cash must not be negative")
	}
	return s.transition(ctx, id, domain.ActionEodCashVerified, func(ctx context.Context, tx pgx.Tx, lock *domain.EodLock) (domain.Fields, error) {
		if err := requireOpen(lock, "CASH_VERIFIED"); err != nil {
			return nil, err
		}
		now := s.now().UTC()
		actual := actualCash
		lock.ActualCash = &actual
		lock.CashVerified = true
		lock.CashVerifiedBy = &verifier
		lock.CashVerifiedAt = &now
		s.assessCash(lock)

		metadata := domain.Fields{
			"actual_cash":     actual,
			"expected_cash":   lock.ExpectedCash,
			"cash_difference": lock.CashDifference,
			"tolerance":       s.tolerance,
		}
		if lock.HasDiscrepancies {
			exc, err := s.raiseCashException(ctx, tx, lock, verifier)
			if err != nil {
				return nil, err
			}
			metadata["exception_id"] = exc.ID
		}
		return metadata, nil
	})
}

// VerifyDigitalPayments marks card, UPI, transfer, insurance and cheque takings as checked.
func (s *EodServiceImpl) VerifyDigitalPayments(ctx context.Context, id uuid.UUID, verifier uuid.UUID) (*domain.EodLock, error) {
	if verifier == uuid.Nil {
		return nil, apperror.Validation("verifier is required")
	}
	return s.transition(ctx, id, domain.ActionEodDigitalVerified, func(_ context.Context, _ pgx.Tx, lock *domain.EodLock) (domain.Fields, error) {
		if err := requireOpen(lock, "DIGITAL_VERIFIED"); err != nil {
			return nil, err
		}
		now := s.now().UTC()
		lock.DigitalPaymentsVerified = true
		lock.DigitalVerifiedBy = &verifier
		lock.DigitalVerifiedAt = &now
		return nil, nil
	})
}

// VerifyInvoices marks the day's invoices as checked.
func (s *EodServiceImpl) VerifyInvoices(ctx context.Context, id uuid.UUID, verifier uuid.UUID) (*domain.EodLock, error) {
	if verifier == uuid.Nil {
		return nil, apperror.Validation("verifier is required")
	}
	return s.transition(ctx, id, domain.ActionEodInvoicesVerified, func(_ context.Context, _ pgx.Tx, lock *domain.EodLock) (domain.Fields, error) {
		if err := requireOpen(lock, "INVOICES_VERIFIED"); err != nil {
			return nil, err
		}
		now := s.now().UTC()
		lock.InvoicesVerified = true
		lock.InvoicesVerifiedBy = &verifier
		lock.InvoicesVerifiedAt = &now
		return nil, nil
	})
}

// Review moves PREPARED to REVIEWED.
func (s *EodServiceImpl) Review(ctx context.Context, id uuid.UUID, reviewer uuid.UUID, notes string) (*domain.EodLock, error) {
	if reviewer == uuid.Nil {
		return nil, apperror.Validation("reviewer is required")
	}
	return s.transition(ctx, id, domain.ActionEodReviewed, func(_ context.Context, _ pgx.Tx, lock *domain.EodLock) (domain.Fields, error) {
		if err := requireTransition(lock, domain.EodStatusReviewed); err != nil {
			return nil, err
		}
		now := s.now().UTC()
		lock.Status = domain.EodStatusReviewed
		lock.ReviewedBy = &reviewer
		lock.ReviewedAt = &now
		lock.ReviewNotes = notes
		return nil, nil
	})
}

// SendBack returns a REVIEWED close to PREPARED for correction.
func (s *EodServiceImpl) SendBack(ctx context.Context, id uuid.UUID, actor uuid.UUID, reason string) (*domain.EodLock, error) {
	if actor == uuid.Nil {
		return nil, apperror.Validation("actor is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.Validation("reason is required")
	}
	return s.transition(ctx, id, domain.ActionEodSentBack, func(_ context.Context, _ pgx.Tx, lock *domain.EodLock) (domain.Fields, error) {
		if err := requireTransition(lock, domain.EodStatusPrepared); err != nil {
			return nil, err
		}
		lock.Status = domain.EodStatusPrepared
		lock.ReviewedBy = nil
		lock.ReviewedAt = nil
		return domain.Fields{"reason": reason, "sent_back_by": actor}, nil
	})
}

// Lock freezes the day: status and the financial-record cascade commit together or not at all.
func (s *EodServiceImpl) Lock(ctx context.Context, id uuid.UUID, locker uuid.UUID) (*domain.EodLock, error) {
	if locker == uuid.Nil {
		return nil, apperror.Validation("locker is required")
	}
	return s.transition(ctx, id, domain.ActionEodLocked, func(ctx context.Context, tx pgx.Tx, lock *domain.EodLock) (domain.Fields, error) {
		if err := requireTransition(lock, domain.EodStatusLocked); err != nil {
			return nil, err
		}
		if missing := lock.MissingVerifications(); len(missing) > 0 {
			return nil, apperror.ErrVerificationIncomplete(missing)
		}
		// Postings made after review would be locked without being in the frozen totals.
		live, err := s.aggregate(ctx, tx, lock.BranchID, lock.LockDate)
		if err != nil {
			return nil, err
		}
		if !live.Equal(lock.EodTotals) {
			return nil, apperror.ErrVerificationIncomplete([]string{"postings changed since review, recalculate totals"})
		}

		lockID := lock.ID
		affected, err := s.finRepo.SetEodLock(ctx, tx, lock.BranchID, lock.LockDate, &lockID, true)
		if err != nil {
			return nil, storageError("lock financial records", err)
		}

		now := s.now().UTC()
		lock.Status = domain.EodStatusLocked
		lock.LockedBy = &locker
		lock.LockedAt = &now
		return domain.Fields{"records_locked": affected}, nil
	})
}

// Reverse lifts a lock. Authorization is the caller's concern; only the state precondition is checked here.
func (s *EodServiceImpl) Reverse(ctx context.Context, id uuid.UUID, reverser uuid.UUID, reason string) (*domain.EodLock, error) {
	if reverser == uuid.Nil {
		return nil, apperror.Validation("reverser is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.Validation("reversal reason is required")
	}
	return s.transition(ctx, id, domain.ActionEodReversed, func(ctx context.Context, tx pgx.Tx, lock *domain.EodLock) (domain.Fields, error) {
		if err := requireTransition(lock, domain.EodStatusReversed); err != nil {
			return nil, err
		}

		affected, err := s.finRepo.SetEodLock(ctx, tx, lock.BranchID, lock.LockDate, nil, false)
		if err != nil {
			return nil, storageError("unlock financial records", err)
		}

		now := s.now().UTC()
		lock.Status = domain.EodStatusReversed
		lock.ReversedBy = &reverser
		lock.ReversedAt = &now
		lock.ReversalReason = reason
		return domain.Fields{"records_unlocked": affected}, nil
	})
}

// IsDateLocked reports whether (branch, date) has a LOCKED close. Advisory only; mutation
// paths must use EnsureDateUnlocked inside their own transaction.
func (s *EodServiceImpl) IsDateLocked(ctx context.Context, branchID uuid.UUID, date time.Time) (bool, error) {
	lock, err := s.eodRepo.GetByBranchDate(ctx, branchID, domain.CalendarDate(date))
	if err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("get eod by date: %w", err))
	}
	return lock != nil && lock.Status == domain.EodStatusLocked, nil
}

// EnsureDateUnlocked fails with AlreadyLocked when (branch, date) is locked. The close row is
// share-locked inside tx so a concurrent Lock waits for the caller to finish.
func (s *EodServiceImpl) EnsureDateUnlocked(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) error {
	date = domain.CalendarDate(date)
	lock, err := s.eodRepo.GetByBranchDateForShare(ctx, tx, branchID, date)
	if err != nil {
		return storageError("check eod lock", err)
	}
	if lock != nil && lock.Status == domain.EodStatusLocked {
		return apperror.ErrAlreadyLocked(branchID.String(), domain.FormatDate(date))
	}
	return nil
}

type eodMutation func(ctx context.Context, tx pgx.Tx, lock *domain.EodLock) (domain.Fields, error)

// transition runs mutate against the row-locked close and appends the ledger entry in the same tx.
func (s *EodServiceImpl) transition(ctx context.Context, id uuid.UUID, action domain.LedgerAction, mutate eodMutation) (*domain.EodLock, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, beginError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	lock, err := s.eodRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, storageError("lock eod", err)
	}
	if lock == nil {
		return nil, apperror.ErrNotFound("EOD lock")
	}
	before := *lock

	metadata, err := mutate(ctx, dbTx, lock)
	if err != nil {
		return nil, err
	}
	lock.UpdatedAt = s.now().UTC()

	if err := s.eodRepo.Update(ctx, dbTx, lock); err != nil {
		return nil, storageError("update eod", err)
	}

	if _, err := s.recorder.RecordMutation(ctx, dbTx, Mutation{
		EntityType: domain.EntityEodLock,
		EntityID:   lock.ID.String(),
		Action:     action,
		Before:     &before,
		After:      lock,
		Metadata:   metadata,
	}); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.logTransition(lock, strings.ToLower(strings.ReplaceAll(string(action), "_", " ")))
	return lock, nil
}

// aggregate sums the postings of (branch, date) inside tx.
func (s *EodServiceImpl) aggregate(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) (domain.EodTotals, error) {
	records, err := s.finRepo.ListByBranchDate(ctx, tx, branchID, date)
	if err != nil {
		return domain.EodTotals{}, storageError("list financial records", err)
	}
	var totals domain.EodTotals
	for i := range records {
		r := &records[i]
		switch r.Kind {
		case domain.KindInvoice:
			totals.AddInvoice(r.Amount)
		case domain.KindPayment:
			totals.AddPayment(r.Method, r.Amount)
		case domain.KindRefund:
			totals.AddRefund(r.Method, r.Amount)
		}
	}
	return totals, nil
}

// assessCash derives the difference, discrepancy flag and note from the counted cash.
func (s *EodServiceImpl) assessCash(lock *domain.EodLock) {
	if lock.ActualCash != nil {
		lock.CashDifference = lock.ActualCash.Sub(lock.ExpectedCash)
	}
	diff := lock.CashDifference
	if diff.Abs().GreaterThan(s.tolerance) {
		lock.HasDiscrepancies = true
		if diff.IsNegative() {
			lock.DiscrepancyNotes = fmt.Sprintf("Cash short by %s", diff.Abs().StringFixed(2))
		} else {
			lock.DiscrepancyNotes = fmt.Sprintf("Cash over by %s", diff.StringFixed(2))
		}
		return
	}
	lock.HasDiscrepancies = false
	lock.DiscrepancyNotes = ""
}

func (s *EodServiceImpl) raiseCashException(ctx context.Context, tx pgx.Tx, lock *domain.EodLock, raisedBy uuid.UUID) (*domain.EodException, error) {
	excType := domain.ExceptionCashExcess
	if lock.CashDifference.IsNegative() {
		excType = domain.ExceptionCashShortage
	}
	amount := lock.CashDifference.Abs()
	now := s.now().UTC()
	exc := &domain.EodException{
		ID:          uuid.New(),
		EodLockID:   lock.ID,
		BranchID:    lock.BranchID,
		Type:        excType,
		Severity:    cashSeverity(amount, s.tolerance),
		Description: lock.DiscrepancyNotes,
		Amount:      &amount,
		Status:      domain.ExceptionOpen,
		RaisedBy:    &raisedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.excRepo.Create(ctx, tx, exc); err != nil {
		return nil, storageError("create cash exception", err)
	}
	if _, err := s.recorder.RecordMutation(ctx, tx, Mutation{
		EntityType: domain.EntityEodException,
		EntityID:   exc.ID.String(),
		Action:     domain.ActionExceptionRaised,
		After:      exc,
		Metadata:   domain.Fields{"source": "cash_verification"},
	}); err != nil {
		return nil, err
	}
	return exc, nil
}

// cashSeverity scales with the discrepancy relative to tolerance.
func cashSeverity(amount, tolerance decimal.Decimal) domain.ExceptionSeverity {
	switch {
	case amount.GreaterThan(tolerance.Mul(decimal.NewFromInt(1000))):
		return domain.SeverityCritical
	case amount.GreaterThan(tolerance.Mul(decimal.NewFromInt(100))):
		return domain.SeverityHigh
	case amount.GreaterThan(tolerance.Mul(decimal.NewFromInt(10))):
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func requireOpen(lock *domain.EodLock, step string) error {
	switch lock.Status {
	case domain.EodStatusLocked:
		return apperror.ErrEodLocked()
	case domain.EodStatusPrepared, domain.EodStatusReviewed:
		return nil
	default:
		return apperror.ErrInvalidTransition(string(lock.Status), step)
	}
}

func requireTransition(lock *domain.EodLock, next domain.EodStatus) error {
	if !lock.Status.CanTransitionTo(next) {
		return apperror.ErrInvalidTransition(string(lock.Status), string(next))
	}
	return nil
}

func (s *EodServiceImpl) logTransition(lock *domain.EodLock, msg string) {
	s.log.Info().
		Str("eod_id", lock.ID.String()).
		Str("branch_id", lock.BranchID.String()).
		Str("lock_date", domain.FormatDate(lock.LockDate)).
		Str("status", string(lock.Status)).
		Msg(msg)
}
