package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LedgerAction tags what happened in a ledger entry.
type LedgerAction string

const (
	ActionCreate  LedgerAction = "CREATE"
	ActionUpdate  LedgerAction = "UPDATE"
	ActionDelete  LedgerAction = "DELETE"
	ActionView    LedgerAction = "VIEW"
	ActionApprove LedgerAction = "APPROVE"
	ActionExport  LedgerAction = "EXPORT"

	ActionEodPrepared         LedgerAction = "EOD_PREPARED"
	ActionEodRecalculated     LedgerAction = "EOD_RECALCULATED"
	ActionEodCashVerified     LedgerAction = "EOD_CASH_VERIFIED"
	ActionEodDigitalVerified  LedgerAction = "EOD_DIGITAL_VERIFIED"
	ActionEodInvoicesVerified LedgerAction = "EOD_INVOICES_VERIFIED"
	ActionEodReviewed         LedgerAction = "EOD_REVIEWED"
	ActionEodSentBack         LedgerAction = "EOD_SENT_BACK"
	ActionEodLocked           LedgerAction = "EOD_LOCKED"
	ActionEodReversed         LedgerAction = "EOD_REVERSED"

	ActionCashReconciled       LedgerAction = "CASH_RECONCILED"
	ActionCashHandoverVerified LedgerAction = "CASH_HANDOVER_VERIFIED"
	ActionExceptionRaised      LedgerAction = "EXCEPTION_RAISED"
	ActionExceptionUpdated     LedgerAction = "EXCEPTION_UPDATED"

	webhookActionPrefix = "WEBHOOK_"
)

// WebhookAction builds the ledger action for an inbound external event type.
func WebhookAction(eventType string) LedgerAction {
	return LedgerAction(webhookActionPrefix + strings.ToUpper(strings.TrimSpace(eventType)))
}

// EntityIDNew marks entries whose subject has no key yet.
const EntityIDNew = "NEW"

// LedgerEntry is one immutable, hash-linked audit record.
type LedgerEntry struct {
	ID           int64        `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	ActorID      *uuid.UUID   `json:"actor_id"`
	BranchID     *uuid.UUID   `json:"branch_id"`
	DeviceID     string       `json:"device_id,omitempty"`
	IPAddress    string       `json:"ip_address,omitempty"`
	Action       LedgerAction `json:"action"`
	EntityType   string       `json:"entity_type"`
	EntityID     string       `json:"entity_id"`
	Before       Fields       `json:"before"`
	After        Fields       `json:"after"`
	Metadata     Fields       `json:"metadata,omitempty"`
	PreviousHash string       `json:"previous_hash"`
	RecordHash   string       `json:"record_hash"`
	DurationMS   *int64       `json:"duration_ms,omitempty"`
}

// HashPayload is the exact content covered by RecordHash.
// ID is excluded: chain order is carried by PreviousHash.
func (e *LedgerEntry) HashPayload() map[string]any {
	var duration any
	if e.DurationMS != nil {
		duration = *e.DurationMS
	}
	return map[string]any{
		"timestamp":   e.Timestamp,
		"actor_id":    uuidOrNil(e.ActorID),
		"branch_id":   uuidOrNil(e.BranchID),
		"device_id":   e.DeviceID,
		"ip_address":  e.IPAddress,
		"action":      string(e.Action),
		"entity_type": e.EntityType,
		"entity_id":   e.EntityID,
		"before":      e.Before,
		"after":       e.After,
		"metadata":    e.Metadata,
		"duration_ms": duration,
	}
}

// ComputeHash recomputes RecordHash from PreviousHash and the stored payload.
func (e *LedgerEntry) ComputeHash() (string, error) {
	return ComputeRecordHash(e.PreviousHash, e.HashPayload())
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

// VerifyMode selects how deep a chain verification goes.
type VerifyMode string

const (
	// VerifyLinks is the genesis-to-tip linkage check.
	VerifyLinks VerifyMode = "links"
	// VerifyFull adds the payload tamper check (hash recomputation).
	VerifyFull VerifyMode = "full"
)

// ParseVerifyMode defaults to full when empty.
func ParseVerifyMode(s string) (VerifyMode, bool) {
	switch VerifyMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", VerifyFull:
		return VerifyFull, true
	case VerifyLinks:
		return VerifyLinks, true
	default:
		return "", false
	}
}

// BrokenLink is an entry whose PreviousHash does not match its predecessor's RecordHash.
type BrokenLink struct {
	EntryID          int64     `json:"entry_id"`
	ExpectedPrevious string    `json:"expected_previous"`
	ActualPrevious   string    `json:"actual_previous"`
	Timestamp        time.Time `json:"timestamp"`
}

// TamperedEntry is an entry whose stored RecordHash no longer matches its content.
type TamperedEntry struct {
	EntryID      int64     `json:"entry_id"`
	StoredHash   string    `json:"stored_hash"`
	ComputedHash string    `json:"computed_hash"`
	Timestamp    time.Time `json:"timestamp"`
}

// VerificationReport is the outcome of one chain scan.
type VerificationReport struct {
	Mode            VerifyMode      `json:"mode"`
	Verified        bool            `json:"verified"`
	TotalEntries    int64           `json:"total_entries"`
	TipHash         string          `json:"tip_hash"`
	BrokenLinks     []BrokenLink    `json:"broken_links"`
	TamperedEntries []TamperedEntry `json:"tampered_entries,omitempty"`
	CheckedAt       time.Time       `json:"checked_at"`
}
