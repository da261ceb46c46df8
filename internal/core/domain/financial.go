package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialKind distinguishes the postings an EOD close aggregates and locks.
type FinancialKind string

const (
	KindInvoice FinancialKind = "invoice"
	KindPayment FinancialKind = "payment"
	KindRefund  FinancialKind = "refund"
)

// Valid reports whether k is a known kind.
func (k FinancialKind) Valid() bool {
	return k == KindInvoice || k == KindPayment || k == KindRefund
}

// EntityFinancialRecord is the ledger entity type for postings.
const EntityFinancialRecord = "FinancialRecord"

// FinancialRecord is an invoice, payment or refund dated to a branch's business day.
type FinancialRecord struct {
	ID          uuid.UUID       `json:"id"`
	BranchID    uuid.UUID       `json:"branch_id"`
	Kind        FinancialKind   `json:"kind"`
	Reference   string          `json:"reference"`
	Method      PaymentMethod   `json:"method,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	TxnDate     time.Time       `json:"txn_date"`
	EodLocked   bool            `json:"eod_locked"`
	LockedEodID *uuid.UUID      `json:"locked_eod_id,omitempty"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Snapshot renders the record for ledger entries.
func (r *FinancialRecord) Snapshot() Fields {
	return Fields{
		"id":            r.ID.String(),
		"branch_id":     r.BranchID.String(),
		"kind":          string(r.Kind),
		"reference":     r.Reference,
		"method":        string(r.Method),
		"amount":        r.Amount,
		"txn_date":      FormatDate(r.TxnDate),
		"eod_locked":    r.EodLocked,
		"locked_eod_id": r.LockedEodID,
		"created_by":    r.CreatedBy,
	}
}
