package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eodColumns = `id, branch_id, lock_date, status,
	invoice_count, invoice_amount, payment_count, payment_amount,
	cash_amount, card_amount, upi_amount, bank_transfer_amount, insurance_amount, cheque_amount,
	refund_count, refund_amount, cash_refunded,
	opening_cash, expected_cash, actual_cash, cash_difference, net_cash_position,
	cash_verified, cash_verified_by, cash_verified_at,
	digital_payments_verified, digital_verified_by, digital_verified_at,
	invoices_verified, invoices_verified_by, invoices_verified_at,
	has_discrepancies, discrepancy_notes,
	prepared_by, prepared_at, reviewed_by, reviewed_at, review_notes, locked_by, locked_at,
	reversed_by, reversed_at, reversal_reason, notes, created_at, updated_at`

// EodLockRepo implements ports.EodLockRepository.
type EodLockRepo struct {
	pool Pool
}

// NewEodLockRepo creates a new EodLockRepo.
func NewEodLockRepo(pool Pool) *EodLockRepo {
	return &EodLockRepo{pool: pool}
}

// Create inserts a close. The (branch_id, lock_date) unique key surfaces as ports.ErrDuplicate.
func (r *EodLockRepo) Create(ctx context.Context, tx pgx.Tx, l *domain.EodLock) error {
	query := `INSERT INTO eod_locks (` + eodColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39, $40,
		$41, $42, $43, $44, $45, $46)`

	if _, err := tx.Exec(ctx, query, eodValues(l)...); err != nil {
		return translate("insert eod lock", err)
	}
	return nil
}

func (r *EodLockRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.EodLock, error) {
	query := `SELECT ` + eodColumns + ` FROM eod_locks WHERE id = $1`
	return scanEodOrNil(r.pool.QueryRow(ctx, query, id), "get eod lock")
}

// GetByIDForUpdate row-locks the close. This MUST be called within a transaction.
func (r *EodLockRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.EodLock, error) {
	query := `SELECT ` + eodColumns + ` FROM eod_locks WHERE id = $1 FOR UPDATE`
	return scanEodOrNil(tx.QueryRow(ctx, query, id), "get eod lock for update")
}

func (r *EodLockRepo) GetByBranchDate(ctx context.Context, branchID uuid.UUID, date time.Time) (*domain.EodLock, error) {
	query := `SELECT ` + eodColumns + ` FROM eod_locks WHERE branch_id = $1 AND lock_date = $2`
	return scanEodOrNil(r.pool.QueryRow(ctx, query, branchID, domain.CalendarDate(date)), "get eod lock by date")
}

// GetByBranchDateForShare share-locks the close so a concurrent Lock waits for the caller's commit.
func (r *EodLockRepo) GetByBranchDateForShare(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) (*domain.EodLock, error) {
	query := `SELECT ` + eodColumns + ` FROM eod_locks WHERE branch_id = $1 AND lock_date = $2 FOR SHARE`
	return scanEodOrNil(tx.QueryRow(ctx, query, branchID, domain.CalendarDate(date)), "get eod lock for share")
}

// LastLockedBefore returns the most recent LOCKED close strictly before date.
func (r *EodLockRepo) LastLockedBefore(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) (*domain.EodLock, error) {
	query := `SELECT ` + eodColumns + ` FROM eod_locks
		WHERE branch_id = $1 AND lock_date < $2 AND status = $3
		ORDER BY lock_date DESC LIMIT 1`
	return scanEodOrNil(tx.QueryRow(ctx, query, branchID, domain.CalendarDate(date), string(domain.EodStatusLocked)), "get previous locked eod")
}

func (r *EodLockRepo) Update(ctx context.Context, tx pgx.Tx, l *domain.EodLock) error {
	query := `UPDATE eod_locks SET status = $2,
		invoice_count = $3, invoice_amount = $4, payment_count = $5, payment_amount = $6,
		cash_amount = $7, card_amount = $8, upi_amount = $9, bank_transfer_amount = $10,
		insurance_amount = $11, cheque_amount = $12, refund_count = $13, refund_amount = $14, cash_refunded = $15,
		opening_cash = $16, expected_cash = $17, actual_cash = $18, cash_difference = $19, net_cash_position = $20,
		cash_verified = $21, cash_verified_by = $22, cash_verified_at = $23,
		digital_payments_verified = $24, digital_verified_by = $25, digital_verified_at = $26,
		invoices_verified = $27, invoices_verified_by = $28, invoices_verified_at = $29,
		has_discrepancies = $30, discrepancy_notes = $31,
		reviewed_by = $32, reviewed_at = $33, review_notes = $34, locked_by = $35, locked_at = $36,
		reversed_by = $37, reversed_at = $38, reversal_reason = $39, notes = $40, updated_at = $41
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		l.ID, string(l.Status),
		l.InvoiceCount, l.InvoiceAmount, l.PaymentCount, l.PaymentAmount,
		l.CashAmount, l.CardAmount, l.UPIAmount, l.BankTransferAmount,
		l.InsuranceAmount, l.ChequeAmount, l.RefundCount, l.RefundAmount, l.CashRefunded,
		l.OpeningCash, l.ExpectedCash, l.ActualCash, l.CashDifference, l.NetCashPosition,
		l.CashVerified, l.CashVerifiedBy, l.CashVerifiedAt,
		l.DigitalPaymentsVerified, l.DigitalVerifiedBy, l.DigitalVerifiedAt,
		l.InvoicesVerified, l.InvoicesVerifiedBy, l.InvoicesVerifiedAt,
		l.HasDiscrepancies, l.DiscrepancyNotes,
		l.ReviewedBy, l.ReviewedAt, l.ReviewNotes, l.LockedBy, l.LockedAt,
		l.ReversedBy, l.ReversedAt, l.ReversalReason, l.Notes, l.UpdatedAt,
	)
	if err != nil {
		return translate("update eod lock", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("eod lock not found: %s", l.ID)
	}
	return nil
}

// List returns closes newest date first.
func (r *EodLockRepo) List(ctx context.Context, params ports.EodListParams) ([]domain.EodLock, error) {
	w := &where{}
	if params.BranchID != nil {
		w.add("branch_id = $%d", *params.BranchID)
	}
	if params.From != nil {
		w.add("lock_date >= $%d", domain.CalendarDate(*params.From))
	}
	if params.To != nil {
		w.add("lock_date <= $%d", domain.CalendarDate(*params.To))
	}
	if params.Status != nil {
		w.add("status = $%d", string(*params.Status))
	}
	query := fmt.Sprintf(`SELECT %s FROM eod_locks %s ORDER BY lock_date DESC, branch_id`, eodColumns, w.clause())

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list eod locks: %w", err)
	}
	defer rows.Close()

	var locks []domain.EodLock
	for rows.Next() {
		l, err := scanEod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan eod lock row: %w", err)
		}
		locks = append(locks, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eod lock rows: %w", err)
	}
	return locks, nil
}

func eodValues(l *domain.EodLock) []any {
	return []any{
		l.ID, l.BranchID, domain.CalendarDate(l.LockDate), string(l.Status),
		l.InvoiceCount, l.InvoiceAmount, l.PaymentCount, l.PaymentAmount,
		l.CashAmount, l.CardAmount, l.UPIAmount, l.BankTransferAmount, l.InsuranceAmount, l.ChequeAmount,
		l.RefundCount, l.RefundAmount, l.CashRefunded,
		l.OpeningCash, l.ExpectedCash, l.ActualCash, l.CashDifference, l.NetCashPosition,
		l.CashVerified, l.CashVerifiedBy, l.CashVerifiedAt,
		l.DigitalPaymentsVerified, l.DigitalVerifiedBy, l.DigitalVerifiedAt,
		l.InvoicesVerified, l.InvoicesVerifiedBy, l.InvoicesVerifiedAt,
		l.HasDiscrepancies, l.DiscrepancyNotes,
		l.PreparedBy, l.PreparedAt, l.ReviewedBy, l.ReviewedAt, l.ReviewNotes, l.LockedBy, l.LockedAt,
		l.ReversedBy, l.ReversedAt, l.ReversalReason, l.Notes, l.CreatedAt, l.UpdatedAt,
	}
}

func scanEod(row pgx.Row) (*domain.EodLock, error) {
	l := &domain.EodLock{}
	var status string
	err := row.Scan(
		&l.ID, &l.BranchID, &l.LockDate, &status,
		&l.InvoiceCount, &l.InvoiceAmount, &l.PaymentCount, &l.PaymentAmount,
		&l.CashAmount, &l.CardAmount, &l.UPIAmount, &l.BankTransferAmount, &l.InsuranceAmount, &l.ChequeAmount,
		&l.RefundCount, &l.RefundAmount, &l.CashRefunded,
		&l.OpeningCash, &l.ExpectedCash, &l.ActualCash, &l.CashDifference, &l.NetCashPosition,
		&l.CashVerified, &l.CashVerifiedBy, &l.CashVerifiedAt,
		&l.DigitalPaymentsVerified, &l.DigitalVerifiedBy, &l.DigitalVerifiedAt,
		&l.InvoicesVerified, &l.InvoicesVerifiedBy, &l.InvoicesVerifiedAt,
		&l.HasDiscrepancies, &l.DiscrepancyNotes,
		&l.PreparedBy, &l.PreparedAt, &l.ReviewedBy, &l.ReviewedAt, &l.ReviewNotes, &l.LockedBy, &l.LockedAt,
		&l.ReversedBy, &l.ReversedAt, &l.ReversalReason, &l.Notes, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = domain.EodStatus(status)
	l.LockDate = domain.CalendarDate(l.LockDate)
	return l, nil
}

func scanEodOrNil(row pgx.Row, op string) (*domain.EodLock, error) {
	l, err := scanEod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(op, err)
	}
	return l, nil
}
