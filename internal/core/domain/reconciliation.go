package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger entity types for the EOD satellites.
const (
	EntityEodLock            = "EodLock"
	EntityCashReconciliation = "CashReconciliation"
	EntityEodException       = "EodException"
)

// CashReconciliation records a physical cash handover during close-out.
type CashReconciliation struct {
	ID            uuid.UUID       `json:"id"`
	EodLockID     uuid.UUID       `json:"eod_lock_id"`
	BranchID      uuid.UUID       `json:"branch_id"`
	HandedOverBy  uuid.UUID       `json:"handed_over_by"`
	ReceivedBy    uuid.UUID       `json:"received_by"`
	Amount        decimal.Decimal `json:"amount"`
	Denominations map[string]int  `json:"denominations,omitempty"` // face value -> note count
	Notes         string          `json:"notes,omitempty"`
	Verified      bool            `json:"verified"`
	VerifiedBy    *uuid.UUID      `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time      `json:"verified_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DenominationTotal sums face value times count. ok is false if a face value is not a number.
func DenominationTotal(denoms map[string]int) (decimal.Decimal, bool) {
	total := decimal.Zero
	for face, count := range denoms {
		value, err := decimal.NewFromString(face)
		if err != nil || count < 0 {
			return decimal.Zero, false
		}
		total = total.Add(value.Mul(decimal.NewFromInt(int64(count))))
	}
	return total, true
}

// Snapshot renders the reconciliation for ledger entries.
func (r *CashReconciliation) Snapshot() Fields {
	denoms := make(Fields, len(r.Denominations))
	for face, count := range r.Denominations {
		denoms[face] = count
	}
	return Fields{
		"id":             r.ID.String(),
		"eod_lock_id":    r.EodLockID.String(),
		"branch_id":      r.BranchID.String(),
		"handed_over_by": r.HandedOverBy.String(),
		"received_by":    r.ReceivedBy.String(),
		"amount":         r.Amount,
		"denominations":  denoms,
		"notes":          r.Notes,
		"verified":       r.Verified,
		"verified_by":    r.VerifiedBy,
		"verified_at":    r.VerifiedAt,
	}
}

// ExceptionType classifies an anomaly found during close-out.
type ExceptionType string

const (
	ExceptionCashShortage   ExceptionType = "CASH_SHORTAGE"
	ExceptionCashExcess     ExceptionType = "CASH_EXCESS"
	ExceptionPaymentMissing ExceptionType = "PAYMENT_MISMATCH"
	ExceptionInvoiceError   ExceptionType = "INVOICE_ERROR"
	ExceptionOther          ExceptionType = "OTHER"
)

// Valid reports whether t is a known exception type.
func (t ExceptionType) Valid() bool {
	switch t {
	case ExceptionCashShortage, ExceptionCashExcess, ExceptionPaymentMissing, ExceptionInvoiceError, ExceptionOther:
		return true
	}
	return false
}

// ExceptionSeverity ranks an exception.
type ExceptionSeverity string

const (
	SeverityLow      ExceptionSeverity = "LOW"
	SeverityMedium   ExceptionSeverity = "MEDIUM"
	SeverityHigh     ExceptionSeverity = "HIGH"
	SeverityCritical ExceptionSeverity = "CRITICAL"
)

// Valid reports whether s is a known severity.
func (s ExceptionSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ExceptionStatus is the lifecycle of an exception.
type ExceptionStatus string

const (
	ExceptionOpen       ExceptionStatus = "OPEN"
	ExceptionInProgress ExceptionStatus = "IN_PROGRESS"
	ExceptionResolved   ExceptionStatus = "RESOLVED"
	ExceptionCancelled  ExceptionStatus = "CANCELLED"
)

var exceptionTransitions = map[ExceptionStatus][]ExceptionStatus{
	ExceptionOpen:       {ExceptionInProgress, ExceptionResolved, ExceptionCancelled},
	ExceptionInProgress: {ExceptionResolved, ExceptionCancelled},
}

// CanTransitionTo reports whether s -> next is allowed. Resolved and cancelled are terminal.
func (s ExceptionStatus) CanTransitionTo(next ExceptionStatus) bool {
	for _, allowed := range exceptionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// EodException is an anomaly raised against an EOD close.
type EodException struct {
	ID          uuid.UUID         `json:"id"`
	EodLockID   uuid.UUID         `json:"eod_lock_id"`
	BranchID    uuid.UUID         `json:"branch_id"`
	Type        ExceptionType     `json:"type"`
	Severity    ExceptionSeverity `json:"severity"`
	Description string            `json:"description"`
	Amount      *decimal.Decimal  `json:"amount,omitempty"`
	Status      ExceptionStatus   `json:"status"`
	RaisedBy    *uuid.UUID        `json:"raised_by,omitempty"`
	ResolvedBy  *uuid.UUID        `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
	Resolution  string            `json:"resolution,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Snapshot renders the exception for ledger entries.
func (e *EodException) Snapshot() Fields {
	return Fields{
		"id":          e.ID.String(),
		"eod_lock_id": e.EodLockID.String(),
		"branch_id":   e.BranchID.String(),
		"type":        string(e.Type),
		"severity":    string(e.Severity),
		"description": e.Description,
		"amount":      e.Amount,
		"status":      string(e.Status),
		"raised_by":   e.RaisedBy,
		"resolved_by": e.ResolvedBy,
		"resolved_at": e.ResolvedAt,
		"resolution":  e.Resolution,
	}
}
