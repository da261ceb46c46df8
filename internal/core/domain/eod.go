package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EodStatus is the lifecycle state of a branch's end-of-day close.
type EodStatus string

const (
	EodStatusPrepared EodStatus = "PREPARED"
	EodStatusReviewed EodStatus = "REVIEWED"
	EodStatusLocked   EodStatus = "LOCKED"
	EodStatusReversed EodStatus = "REVERSED"
)

var eodTransitions = map[EodStatus][]EodStatus{
	EodStatusPrepared: {EodStatusReviewed},
	EodStatusReviewed: {EodStatusLocked, EodStatusPrepared},
	EodStatusLocked:   {EodStatusReversed},
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s EodStatus) CanTransitionTo(next EodStatus) bool {
	for _, allowed := range eodTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpen reports whether totals and verifications may still change.
func (s EodStatus) IsOpen() bool {
	return s == EodStatusPrepared || s == EodStatusReviewed
}

// PaymentMethod is how a payment or refund was settled.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodUPI          PaymentMethod = "upi"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodInsurance    PaymentMethod = "insurance"
	MethodCheque       PaymentMethod = "cheque"
)

// PaymentMethods lists every supported method in display order.
var PaymentMethods = []PaymentMethod{
	MethodCash, MethodCard, MethodUPI, MethodBankTransfer, MethodInsurance, MethodCheque,
}

// Valid reports whether m is a known method.
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// EodTotals are the aggregates computed for one (branch, date).
type EodTotals struct {
	InvoiceCount       int64           `json:"invoice_count"`
	InvoiceAmount      decimal.Decimal `json:"invoice_amount"`
	PaymentCount       int64           `json:"payment_count"`
	PaymentAmount      decimal.Decimal `json:"payment_amount"`
	CashAmount         decimal.Decimal `json:"cash_amount"`
	CardAmount         decimal.Decimal `json:"card_amount"`
	UPIAmount          decimal.Decimal `json:"upi_amount"`
	BankTransferAmount decimal.Decimal `json:"bank_transfer_amount"`
	InsuranceAmount    decimal.Decimal `json:"insurance_amount"`
	ChequeAmount       decimal.Decimal `json:"cheque_amount"`
	RefundCount        int64           `json:"refund_count"`
	RefundAmount       decimal.Decimal `json:"refund_amount"`
	CashRefunded       decimal.Decimal `json:"cash_refunded"`
}

// Equal reports whether both aggregates carry the same counts and amounts.
func (t EodTotals) Equal(o EodTotals) bool {
	if t.InvoiceCount != o.InvoiceCount || t.PaymentCount != o.PaymentCount || t.RefundCount != o.RefundCount {
		return false
	}
	pairs := [][2]decimal.Decimal{
		{t.InvoiceAmount, o.InvoiceAmount},
		{t.PaymentAmount, o.PaymentAmount},
		{t.CashAmount, o.CashAmount},
		{t.CardAmount, o.CardAmount},
		{t.UPIAmount, o.UPIAmount},
		{t.BankTransferAmount, o.BankTransferAmount},
		{t.InsuranceAmount, o.InsuranceAmount},
		{t.ChequeAmount, o.ChequeAmount},
		{t.RefundAmount, o.RefundAmount},
		{t.CashRefunded, o.CashRefunded},
	}
	for _, p := range pairs {
		if !p[0].Equal(p[1]) {
			return false
		}
	}
	return true
}

// AddPayment folds one payment into the per-method breakdown.
func (t *EodTotals) AddPayment(method PaymentMethod, amount decimal.Decimal) {
	t.PaymentCount++
	t.PaymentAmount = t.PaymentAmount.Add(amount)
	switch method {
	case MethodCash:
		t.CashAmount = t.CashAmount.Add(amount)
	case MethodCard:
		t.CardAmount = t.CardAmount.Add(amount)
	case MethodUPI:
		t.UPIAmount = t.UPIAmount.Add(amount)
	case MethodBankTransfer:
		t.BankTransferAmount = t.BankTransferAmount.Add(amount)
	case MethodInsurance:
		t.InsuranceAmount = t.InsuranceAmount.Add(amount)
	case MethodCheque:
		t.ChequeAmount = t.ChequeAmount.Add(amount)
	}
}

// AddRefund folds one refund into the refund totals.
func (t *EodTotals) AddRefund(method PaymentMethod, amount decimal.Decimal) {
	t.RefundCount++
	t.RefundAmount = t.RefundAmount.Add(amount)
	if method == MethodCash {
		t.CashRefunded = t.CashRefunded.Add(amount)
	}
}

// AddInvoice folds one invoice into the totals.
func (t *EodTotals) AddInvoice(amount decimal.Decimal) {
	t.InvoiceCount++
	t.InvoiceAmount = t.InvoiceAmount.Add(amount)
}

// EodLock is the end-of-day close for one branch and calendar date.
type EodLock struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
	LockDate time.Time `json:"lock_date"`
	Status   EodStatus `json:"status"`

	EodTotals

	OpeningCash     decimal.Decimal  `json:"opening_cash"`
	ExpectedCash    decimal.Decimal  `json:"expected_cash"`
	ActualCash      *decimal.Decimal `json:"actual_cash"`
	CashDifference  decimal.Decimal  `json:"cash_difference"`
	NetCashPosition decimal.Decimal  `json:"net_cash_position"`

	CashVerified            bool       `json:"cash_verified"`
	CashVerifiedBy          *uuid.UUID `json:"cash_verified_by,omitempty"`
	CashVerifiedAt          *time.Time `json:"cash_verified_at,omitempty"`
	DigitalPaymentsVerified bool       `json:"digital_payments_verified"`
	DigitalVerifiedBy       *uuid.UUID `json:"digital_verified_by,omitempty"`
	DigitalVerifiedAt       *time.Time `json:"digital_verified_at,omitempty"`
	InvoicesVerified        bool       `json:"invoices_verified"`
	InvoicesVerifiedBy      *uuid.UUID `json:"invoices_verified_by,omitempty"`
	InvoicesVerifiedAt      *time.Time `json:"invoices_verified_at,omitempty"`

	HasDiscrepancies bool   `json:"has_discrepancies"`
	DiscrepancyNotes string `json:"discrepancy_notes,omitempty"`

	PreparedBy  uuid.UUID  `json:"prepared_by"`
	PreparedAt  time.Time  `json:"prepared_at"`
	ReviewedBy  *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `json:"review_notes,omitempty"`
	LockedBy    *uuid.UUID `json:"locked_by,omitempty"`
	LockedAt    *time.Time `json:"locked_at,omitempty"`

	ReversedBy     *uuid.UUID `json:"reversed_by,omitempty"`
	ReversedAt     *time.Time `json:"reversed_at,omitempty"`
	ReversalReason string     `json:"reversal_reason,omitempty"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyTotals replaces the aggregates and re-derives the cash position.
func (l *EodLock) ApplyTotals(t EodTotals) {
	l.EodTotals = t
	l.NetCashPosition = t.CashAmount.Sub(t.CashRefunded)
	l.ExpectedCash = l.OpeningCash.Add(l.NetCashPosition)
	if l.ActualCash != nil {
		l.CashDifference = l.ActualCash.Sub(l.ExpectedCash)
	}
}

// MissingVerifications lists each verification step not yet done.
func (l *EodLock) MissingVerifications() []string {
	var missing []string
	if !l.CashVerified {
		missing = append(missing, "cash not verified")
	}
	if !l.DigitalPaymentsVerified {
		missing = append(missing, "digital payments not verified")
	}
	if !l.InvoicesVerified {
		missing = append(missing, "invoices not verified")
	}
	return missing
}

// DateKey is the (branch, date) identity of the close.
func (l *EodLock) DateKey() string {
	return l.BranchID.String() + ":" + FormatDate(l.LockDate)
}

// Snapshot renders the lock for ledger entries.
func (l *EodLock) Snapshot() Fields {
	return Fields{
		"id":                        l.ID.String(),
		"branch_id":                 l.BranchID.String(),
		"lock_date":                 FormatDate(l.LockDate),
		"status":                    string(l.Status),
		"invoice_count":             l.InvoiceCount,
		"invoice_amount":            l.InvoiceAmount,
		"payment_count":             l.PaymentCount,
		"payment_amount":            l.PaymentAmount,
		"cash_amount":               l.CashAmount,
		"card_amount":               l.CardAmount,
		"upi_amount":                l.UPIAmount,
		"bank_transfer_amount":      l.BankTransferAmount,
		"insurance_amount":          l.InsuranceAmount,
		"cheque_amount":             l.ChequeAmount,
		"refund_count":              l.RefundCount,
		"refund_amount":             l.RefundAmount,
		"cash_refunded":             l.CashRefunded,
		"opening_cash":              l.OpeningCash,
		"expected_cash":             l.ExpectedCash,
		"actual_cash":               l.ActualCash,
		"cash_difference":           l.CashDifference,
		"net_cash_position":         l.NetCashPosition,
		"cash_verified":             l.CashVerified,
		"digital_payments_verified": l.DigitalPaymentsVerified,
		"invoices_verified":         l.InvoicesVerified,
		"has_discrepancies":         l.HasDiscrepancies,
		"discrepancy_notes":         l.DiscrepancyNotes,
		"prepared_by":               l.PreparedBy.String(),
		"reviewed_by":               l.ReviewedBy,
		"locked_by":                 l.LockedBy,
		"locked_at":                 l.LockedAt,
		"reversed_by":               l.ReversedBy,
		"reversed_at":               l.ReversedAt,
		"reversal_reason":           l.ReversalReason,
	}
}

// DateOf returns the calendar date of instant t as observed in loc, as UTC midnight.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalendarDate keeps t's own calendar fields and drops the clock, as UTC midnight.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
