package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const financialColumns = `id, branch_id, kind, reference, method, amount, txn_date, eod_locked, locked_eod_id,
	created_by, created_at, updated_at`

// FinancialRepo implements ports.FinancialRepository.
type FinancialRepo struct {
	pool Pool
}

// NewFinancialRepo creates a new FinancialRepo.
func NewFinancialRepo(pool Pool) *FinancialRepo {
	return &FinancialRepo{pool: pool}
}

func (r *FinancialRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.FinancialRecord) error {
	query := `INSERT INTO financial_records (` + financialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := tx.Exec(ctx, query,
		rec.ID, rec.BranchID, string(rec.Kind), rec.Reference, string(rec.Method), rec.Amount,
		domain.CalendarDate(rec.TxnDate), rec.EodLocked, rec.LockedEodID, rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return translate("insert financial record", err)
	}
	return nil
}

func (r *FinancialRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FinancialRecord, error) {
	query := `SELECT ` + financialColumns + ` FROM financial_records WHERE id = $1`
	return scanFinancialOrNil(r.pool.QueryRow(ctx, query, id), "get financial record")
}

// GetByIDForUpdate row-locks the record. This MUST be called within a transaction.
func (r *FinancialRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.FinancialRecord, error) {
	query := `SELECT ` + financialColumns + ` FROM financial_records WHERE id = $1 FOR UPDATE`
	return scanFinancialOrNil(tx.QueryRow(ctx, query, id), "get financial record for update")
}

func (r *FinancialRepo) Update(ctx context.Context, tx pgx.Tx, rec *domain.FinancialRecord) error {
	query := `UPDATE financial_records SET amount = $2, method = $3, updated_at = $4 WHERE id = $1`

	tag, err := tx.Exec(ctx, query, rec.ID, rec.Amount, string(rec.Method), rec.UpdatedAt)
	if err != nil {
		return translate("update financial record", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("financial record not found: %s", rec.ID)
	}
	return nil
}

func (r *FinancialRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM financial_records WHERE id = $1`, id); err != nil {
		return translate("delete financial record", err)
	}
	return nil
}

// ListByBranchDate returns the postings of one business day, oldest first.
func (r *FinancialRepo) ListByBranchDate(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) ([]domain.FinancialRecord, error) {
	query := `SELECT ` + financialColumns + ` FROM financial_records
		WHERE branch_id = $1 AND txn_date = $2 ORDER BY created_at, id`

	rows, err := tx.Query(ctx, query, branchID, domain.CalendarDate(date))
	if err != nil {
		return nil, fmt.Errorf("list financial records: %w", err)
	}
	defer rows.Close()

	var recs []domain.FinancialRecord
	for rows.Next() {
		rec, err := scanFinancial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan financial record row: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate financial record rows: %w", err)
	}
	return recs, nil
}

// SetEodLock flips the lock flag on every posting of (branch, date) in one statement.
func (r *FinancialRepo) SetEodLock(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time, lockID *uuid.UUID, locked bool) (int64, error) {
	query := `UPDATE financial_records SET eod_locked = $3, locked_eod_id = $4, updated_at = NOW()
		WHERE branch_id = $1 AND txn_date = $2`

	tag, err := tx.Exec(ctx, query, branchID, domain.CalendarDate(date), locked, lockID)
	if err != nil {
		return 0, translate("cascade eod lock", err)
	}
	return tag.RowsAffected(), nil
}

func scanFinancial(row pgx.Row) (*domain.FinancialRecord, error) {
	rec := &domain.FinancialRecord{}
	var kind, method string
	err := row.Scan(
		&rec.ID, &rec.BranchID, &kind, &rec.Reference, &method, &rec.Amount, &rec.TxnDate,
		&rec.EodLocked, &rec.LockedEodID, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Kind = domain.FinancialKind(kind)
	rec.Method = domain.PaymentMethod(method)
	rec.TxnDate = domain.CalendarDate(rec.TxnDate)
	return rec, nil
}

func scanFinancialOrNil(row pgx.Row, op string) (*domain.FinancialRecord, error) {
	rec, err := scanFinancial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(op, err)
	}
	return rec, nil
}
