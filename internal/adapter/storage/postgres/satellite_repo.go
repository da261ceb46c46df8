package postgres

import (
	"context"
	"errors"
	"fmt"

	"clinic-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reconciliationColumns = `id, eod_lock_id, branch_id, handed_over_by, received_by, amount, denominations,
	notes, verified, verified_by, verified_at, created_at`

// ReconciliationRepo implements ports.ReconciliationRepository.
type ReconciliationRepo struct {
	pool Pool
}

// NewReconciliationRepo creates a new ReconciliationRepo.
func NewReconciliationRepo(pool Pool) *ReconciliationRepo {
	return &ReconciliationRepo{pool: pool}
}

func (r *ReconciliationRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.CashReconciliation) error {
	query := `INSERT INTO cash_reconciliations (` + reconciliationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := tx.Exec(ctx, query,
		rec.ID, rec.EodLockID, rec.BranchID, rec.HandedOverBy, rec.ReceivedBy, rec.Amount, rec.Denominations,
		rec.Notes, rec.Verified, rec.VerifiedBy, rec.VerifiedAt, rec.CreatedAt,
	)
	if err != nil {
		return translate("insert cash reconciliation", err)
	}
	return nil
}

func (r *ReconciliationRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.CashReconciliation, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM cash_reconciliations WHERE id = $1 FOR UPDATE`

	rec, err := scanReconciliation(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate("get cash reconciliation for update", err)
	}
	return rec, nil
}

func (r *ReconciliationRepo) Update(ctx context.Context, tx pgx.Tx, rec *domain.CashReconciliation) error {
	query := `UPDATE cash_reconciliations SET verified = $2, verified_by = $3, verified_at = $4 WHERE id = $1`

	tag, err := tx.Exec(ctx, query, rec.ID, rec.Verified, rec.VerifiedBy, rec.VerifiedAt)
	if err != nil {
		return translate("update cash reconciliation", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cash reconciliation not found: %s", rec.ID)
	}
	return nil
}

func (r *ReconciliationRepo) ListByEod(ctx context.Context, eodID uuid.UUID) ([]domain.CashReconciliation, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM cash_reconciliations WHERE eod_lock_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, eodID)
	if err != nil {
		return nil, fmt.Errorf("list cash reconciliations: %w", err)
	}
	defer rows.Close()

	var recs []domain.CashReconciliation
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash reconciliation row: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cash reconciliation rows: %w", err)
	}
	return recs, nil
}

func scanReconciliation(row pgx.Row) (*domain.CashReconciliation, error) {
	rec := &domain.CashReconciliation{}
	err := row.Scan(
		&rec.ID, &rec.EodLockID, &rec.BranchID, &rec.HandedOverBy, &rec.ReceivedBy, &rec.Amount, &rec.Denominations,
		&rec.Notes, &rec.Verified, &rec.VerifiedBy, &rec.VerifiedAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

const exceptionColumns = `id, eod_lock_id, branch_id, type, severity, description, amount, status,
	raised_by, resolved_by, resolved_at, resolution, created_at, updated_at`

// ExceptionRepo implements ports.ExceptionRepository.
type ExceptionRepo struct {
	pool Pool
}

// NewExceptionRepo creates a new ExceptionRepo.
func NewExceptionRepo(pool Pool) *ExceptionRepo {
	return &ExceptionRepo{pool: pool}
}

func (r *ExceptionRepo) Create(ctx context.Context, tx pgx.Tx, exc *domain.EodException) error {
	query := `INSERT INTO eod_exceptions (` + exceptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := tx.Exec(ctx, query,
		exc.ID, exc.EodLockID, exc.BranchID, string(exc.Type), string(exc.Severity), exc.Description, exc.Amount,
		string(exc.Status), exc.RaisedBy, exc.ResolvedBy, exc.ResolvedAt, exc.Resolution, exc.CreatedAt, exc.UpdatedAt,
	)
	if err != nil {
		return translate("insert eod exception", err)
	}
	return nil
}

func (r *ExceptionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.EodException, error) {
	query := `SELECT ` + exceptionColumns + ` FROM eod_exceptions WHERE id = $1 FOR UPDATE`

	exc, err := scanException(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate("get eod exception for update", err)
	}
	return exc, nil
}

func (r *ExceptionRepo) Update(ctx context.Context, tx pgx.Tx, exc *domain.EodException) error {
	query := `UPDATE eod_exceptions SET status = $2, resolved_by = $3, resolved_at = $4, resolution = $5, updated_at = $6
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, exc.ID, string(exc.Status), exc.ResolvedBy, exc.ResolvedAt, exc.Resolution, exc.UpdatedAt)
	if err != nil {
		return translate("update eod exception", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("eod exception not found: %s", exc.ID)
	}
	return nil
}

func (r *ExceptionRepo) ListByEod(ctx context.Context, eodID uuid.UUID) ([]domain.EodException, error) {
	query := `SELECT ` + exceptionColumns + ` FROM eod_exceptions WHERE eod_lock_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, eodID)
	if err != nil {
		return nil, fmt.Errorf("list eod exceptions: %w", err)
	}
	defer rows.Close()

	var excs []domain.EodException
	for rows.Next() {
		exc, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("scan eod exception row: %w", err)
		}
		excs = append(excs, *exc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eod exception rows: %w", err)
	}
	return excs, nil
}

func scanException(row pgx.Row) (*domain.EodException, error) {
	exc := &domain.EodException{}
	var excType, severity, status string
	err := row.Scan(
		&exc.ID, &exc.EodLockID, &exc.BranchID, &excType, &severity, &exc.Description, &exc.Amount, &status,
		&exc.RaisedBy, &exc.ResolvedBy, &exc.ResolvedAt, &exc.Resolution, &exc.CreatedAt, &exc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	exc.Type = domain.ExceptionType(excType)
	exc.Severity = domain.ExceptionSeverity(severity)
	exc.Status = domain.ExceptionStatus(status)
	return exc, nil
}
