package service

import (
	"context"
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

// ReconciliationServiceImpl implements ports.ReconciliationService.
type ReconciliationServiceImpl struct {
	eodRepo    ports.EodLockRepository
	reconRepo  ports.ReconciliationRepository
	excRepo    ports.ExceptionRepository
	transactor ports.DBTransactor
	recorder   *AuditRecorder
	now        func() time.Time
	log        zerolog.Logger
}

// NewReconciliationService creates a new ReconciliationServiceImpl.
func NewReconciliationService(
	eodRepo ports.EodLockRepository,
	reconRepo ports.ReconciliationRepository,
	excRepo ports.ExceptionRepository,
	transactor ports.DBTransactor,
	recorder *AuditRecorder,
	log zerolog.Logger,
) *ReconciliationServiceImpl {
	return &ReconciliationServiceImpl{
		eodRepo:    eodRepo,
		reconRepo:  reconRepo,
		excRepo:    excRepo,
		transactor: transactor,
		recorder:   recorder,
		now:        time.Now,
		log:        log,
	}
}

// CreateReconciliation records a cash handover against an open close.
func (s *ReconciliationServiceImpl) CreateReconciliation(ctx context.Context, req ports.CreateReconciliationRequest) (*domain.CashReconciliation, error) {
	if req.HandedOverBy == uuid.Nil || req.ReceivedBy == uuid.Nil {
		return nil, apperror.Validation("handed_over_by and received_by are required")
	}
	if req.HandedOverBy == req.ReceivedBy {
		return nil, apperror.Validation("cash cannot be handed over to the same person")
	}
	if req.Amount.IsNegative() {
		return nil, apperror.Validation("amount must not be negative")
	}
	if len(req.Denominations) > 0 {
		total, ok := domain.DenominationTotal(req.Denominations)
		if !ok {
			return nil, apperror.Validation("denominations must map numeric face values to non-negative counts")
		}
		if !total.Equal(req.Amount) {
			return nil, apperror.Validation(fmt.Sprintf("denominations total %s does not match amount %s", total.StringFixed(2), req.Amount.StringFixed(2)))
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, beginError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	eod, err := s.openEod(ctx, dbTx, req.EodLockID, "CASH_RECONCILED")
	if err != nil {
		return nil, err
	}

	rec := &domain.CashReconciliation{
		ID:            uuid.New(),
		EodLockID:     eod.ID,
		BranchID:      eod.BranchID,
		HandedOverBy:  req.HandedOverBy,
		ReceivedBy:    req.ReceivedBy,
		Amount:        req.Amount,
		Denominations: req.Denominations,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     s.now().UTC(),
	}
	if err := s.reconRepo.Create(ctx, dbTx, rec); err != nil {
		return nil, storageError("create reconciliation", err)
	}

	if _, err := s.recorder.RecordMutation(ctx, dbTx, Mutation{
		EntityType: domain.EntityCashReconciliation,
		EntityID:   rec.ID.String(),
		Action:     domain.ActionCashReconciled,
		After:      rec,
	}); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reconciliation_id", rec.ID.String()).
		Str("eod_id", eod.ID.String()).
		Str("amount", rec.Amount.String()).
		Msg("cash handover recorded")

	return rec, nil
}

// VerifyReconciliation confirms a handover once. The person who handed the cash over cannot verify it.
func (s *ReconciliationServiceImpl) VerifyReconciliation(ctx context.Context, id uuid.UUID, verifier uuid.UUID) (*domain.CashReconciliation, error) {
	if verifier == uuid.Nil {
		return nil, apperror.Validation("verifier is required")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, beginError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	rec, err := s.reconRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, storageError("lock reconciliation", err)
	}
	if rec == nil {
		return nil, apperror.ErrNotFound("Cash reconciliation")
	}
	if rec.Verified {
		return nil, apperror.ErrInvalidTransition("VERIFIED", "VERIFIED")
	}
	if rec.HandedOverBy == verifier {
		return nil, apperror.Validation("a handover cannot be verified by the person who handed it over")
	}
	if _, err := s.openEod(ctx, dbTx, rec.EodLockID, "CASH_HANDOVER_VERIFIED"); err != nil {
		return nil, err
	}

	before := *rec
	now := s.now().UTC()
	rec.Verified = true
	rec.VerifiedBy = &verifier
	rec.VerifiedAt = &now

	if err := s.reconRepo.Update(ctx, dbTx, rec); err != nil {
		return nil, storageError("update reconciliation", err)
	}
	if _, err := s.recorder.RecordMutation(ctx, dbTx, Mutation{
		EntityType: domain.EntityCashReconciliation,
		EntityID:   rec.ID.String(),
		Action:     domain.ActionCashHandoverVerified,
		Before:     &before,
		After:      rec,
	}); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}
	return rec, nil
}

// ListReconciliations returns the handovers of a close, oldest first.
func (s *ReconciliationServiceImpl) ListReconciliations(ctx context.Context, eodID uuid.UUID) ([]domain.CashReconciliation, error) {
	if err := s.requireEod(ctx, eodID); err != nil {
		return nil, err
	}
	recs, err := s.reconRepo.ListByEod(ctx, eodID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list reconciliations: %w", err))
	}
	if recs == nil {
		recs = []domain.CashReconciliation{}
	}
	return recs, nil
}

// RaiseException opens an exception. Exceptions may be raised against a close in any state.
func (s *ReconciliationServiceImpl) RaiseException(ctx context.Context, req ports.RaiseExceptionRequest) (*domain.EodException, error) {
	if !req.Type.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown exception type %q", req.Type))
	}
	if req.Severity == "" {
		req.Severity = domain.SeverityMedium
	}
	if !req.Severity.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown severity %q", req.Severity))
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperror.Validation("description is required")
	}
	if req.Amount != nil && req.Amount.IsNegative() {
		return nil, apperror.Validation("amount must not be negative")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, beginError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	eod, err := s.eodRepo.GetByIDForUpdate(ctx, dbTx, req.EodLockID)
	if err != nil {
		return nil, storageError("lock eod", err)
	}
	if eod == nil {
		return nil, apperror.ErrNotFound("EOD lock")
	}

	now := s.now().UTC()
	exc := &domain.EodException{
		ID:          uuid.New(),
		EodLockID:   eod.ID,
		BranchID:    eod.BranchID,
		Type:        req.Type,
		Severity:    req.Severity,
		Description: description,
		Amount:      req.Amount,
		Status:      domain.ExceptionOpen,
		RaisedBy:    req.RaisedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.excRepo.Create(ctx, dbTx, exc); err != nil {
		return nil, storageError("create exception", err)
	}
	if _, err := s.recorder.RecordMutation(ctx, dbTx, Mutation{
		EntityType: domain.EntityEodException,
		EntityID:   exc.ID.String(),
		Action:     domain.ActionExceptionRaised,
		After:      exc,
	}); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("exception_id", exc.ID.String()).
		Str("eod_id", eod.ID.String()).
		Str("type", string(exc.Type)).
		Str("severity", string(exc.Severity)).
		Msg("eod exception raised")

	return exc, nil
}

// UpdateException moves an exception along its lifecycle. Resolving requires a resolution text.
func (s *ReconciliationServiceImpl) UpdateException(ctx context.Context, req ports.UpdateExceptionRequest) (*domain.EodException, error) {
	if req.Actor == uuid.Nil {
		return nil, apperror.Validation("actor is required")
	}
	resolution := strings.TrimSpace(req.Resolution)
	if req.Status == domain.ExceptionResolved && resolution == "" {
		return nil, apperror.Validation("resolution is required to resolve an exception")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, beginError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	exc, err := s.excRepo.GetByIDForUpdate(ctx, dbTx, req.ID)
	if err != nil {
		return nil, storageError("lock exception", err)
	}
	if exc == nil {
		return nil, apperror.ErrNotFound("EOD exception")
	}
	if !exc.Status.CanTransitionTo(req.Status) {
		return nil, apperror.ErrInvalidTransition(string(exc.Status), string(req.Status))
	}

	before := *exc
	now := s.now().UTC()
	exc.Status = req.Status
	exc.UpdatedAt = now
	if resolution != "" {
		exc.Resolution = resolution
	}
	if req.Status == domain.ExceptionResolved || req.Status == domain.ExceptionCancelled {
		actor := req.Actor
		exc.ResolvedBy = &actor
		exc.ResolvedAt = &now
	}

	if err := s.excRepo.Update(ctx, dbTx, exc); err != nil {
		return nil, storageError("update exception", err)
	}
	if _, err := s.recorder.RecordMutation(ctx, dbTx, Mutation{
		EntityType: domain.EntityEodException,
		EntityID:   exc.ID.String(),
		Action:     domain.ActionExceptionUpdated,
		Before:     &before,
		After:      exc,
	}); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}
	return exc, nil
}

// ListExceptions returns the exceptions of a close, oldest first.
func (s *ReconciliationServiceImpl) ListExceptions(ctx context.Context, eodID uuid.UUID) ([]domain.EodException, error) {
	if err := s.requireEod(ctx, eodID); err != nil {
		return nil, err
	}
	excs, err := s.excRepo.ListByEod(ctx, eodID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list exceptions: %w", err))
	}
	if excs == nil {
		excs = []domain.EodException{}
	}
	return excs, nil
}

// openEod row-locks the close and requires it to still accept changes.
func (s *ReconciliationServiceImpl) openEod(ctx context.Context, tx pgx.Tx, id uuid.UUID, step string) (*domain.EodLock, error) {
	eod, err := s.eodRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, storageError("lock eod", err)
	}
	if eod == nil {
		return nil, apperror.ErrNotFound("EOD lock")
	}
	if err := requireOpen(eod, step); err != nil {
		return nil, err
	}
	return eod, nil
}

func (s *ReconciliationServiceImpl) requireEod(ctx context.Context, id uuid.UUID) error {
	eod, err := s.eodRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("get eod: %w", err))
	}
	if eod == nil {
		return apperror.ErrNotFound("EOD lock")
	}
	return nil
}
