package dto

import "encoding/json"

// ---- Audit ----

// AppendEntryRequest is the body of POST /api/v1/audit/entries.
type AppendEntryRequest struct {
	EntityType string                 `json:"entity_type" binding:"required,entity_type"`
	EntityID   string                 `json:"entity_id" binding:"omitempty,max=128"`
	Action     string                 `json:"action" binding:"required,max=64"`
	Before     map[string]interface{} `json:"before"`
	After      map[string]interface{} `json:"after"`
	Metadata   map[string]interface{} `json:"metadata"`
	ActorID    string                 `json:"actor_id" binding:"omitempty,uuid"`
	BranchID   string                 `json:"branch_id" binding:"omitempty,uuid"`
	DeviceID   string                 `json:"device_id" binding:"omitempty,max=128"`
	IPAddress  string                 `json:"ip_address" binding:"omitempty,ip"`
	DurationMS *int64                 `json:"duration_ms" binding:"omitempty,min=0"`
}

// SearchEntriesQuery binds GET /api/v1/audit/entries.
type SearchEntriesQuery struct {
	ActorID    string `form:"actor_id" binding:"omitempty,uuid"`
	BranchID   string `form:"branch_id" binding:"omitempty,uuid"`
	Action     string `form:"action" binding:"omitempty,max=64"`
	EntityType string `form:"entity_type" binding:"omitempty,entity_type"`
	EntityID   string `form:"entity_id" binding:"omitempty,max=128"`
	DateFrom   string `form:"date_from" binding:"omitempty,iso_date"`
	DateTo     string `form:"date_to" binding:"omitempty,iso_date"`
	Query      string `form:"q" binding:"omitempty,max=200"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1"`
}

// ExportQuery binds GET /api/v1/audit/export.
type ExportQuery struct {
	Format           string `form:"format" binding:"omitempty,oneof=json csv xlsx"`
	DateFrom         string `form:"date_from" binding:"omitempty,iso_date"`
	DateTo           string `form:"date_to" binding:"omitempty,iso_date"`
	IncludeSensitive bool   `form:"include_sensitive"`
}

// StatsQuery binds GET /api/v1/audit/stats.
type StatsQuery struct {
	Days int `form:"days"`
}

// ---- EOD ----

// PrepareEodRequest is the body of POST /api/v1/eod.
type PrepareEodRequest struct {
	BranchID    string  `json:"branch_id" binding:"required,uuid"`
	Date        string  `json:"date" binding:"required,iso_date"`
	OpeningCash *string `json:"opening_cash" binding:"omitempty,money"`
	Notes       string  `json:"notes" binding:"omitempty,max=2000"`
}

// ListEodQuery binds GET /api/v1/eod.
type ListEodQuery struct {
	BranchID string `form:"branch_id" binding:"omitempty,uuid"`
	From     string `form:"from" binding:"omitempty,iso_date"`
	To       string `form:"to" binding:"omitempty,iso_date"`
	Status   string `form:"status" binding:"omitempty,oneof=PREPARED REVIEWED LOCKED REVERSED"`
}

// EodStatusQuery binds GET /api/v1/eod/status. Date defaults to today in the clinic timezone.
type EodStatusQuery struct {
	BranchID string `form:"branch_id" binding:"required,uuid"`
	Date     string `form:"date" binding:"omitempty,iso_date"`
}

// EodStatusResponse answers whether a branch day is closed.
type EodStatusResponse struct {
	BranchID string `json:"branch_id"`
	Date     string `json:"date"`
	Locked   bool   `json:"locked"`
}

// VerifyCashRequest is the body of POST /api/v1/eod/:id/verify-cash.
type VerifyCashRequest struct {
	ActualCash string `json:"actual_cash" binding:"required,money"`
}

// NotesRequest carries optional free text (review).
type NotesRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=2000"`
}

// ReasonRequest carries a mandatory reason (send-back, reverse).
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// CreateReconciliationRequest is the body of POST /api/v1/eod/:id/reconciliations.
type CreateReconciliationRequest struct {
	HandedOverBy  string         `json:"handed_over_by" binding:"required,uuid"`
	ReceivedBy    string         `json:"received_by" binding:"required,uuid"`
	Amount        string         `json:"amount" binding:"required,money"`
	Denominations map[string]int `json:"denominations"`
	Notes         string         `json:"notes" binding:"omitempty,max=2000"`
}

// RaiseExceptionRequest is the body of POST /api/v1/eod/:id/exceptions.
type RaiseExceptionRequest struct {
	Type        string  `json:"type" binding:"required"`
	Severity    string  `json:"severity"`
	Description string  `json:"description" binding:"required,max=4000"`
	Amount      *string `json:"amount" binding:"omitempty,money"`
}

// UpdateExceptionRequest is the body of PATCH /api/v1/eod/exceptions/:xid.
type UpdateExceptionRequest struct {
	Status     string `json:"status" binding:"required"`
	Resolution string `json:"resolution" binding:"omitempty,max=4000"`
}

// ---- Financial ----

// CreateFinancialRecordRequest is the body of POST /api/v1/financial/records.
type CreateFinancialRecordRequest struct {
	BranchID  string `json:"branch_id" binding:"required,uuid"`
	Kind      string `json:"kind" binding:"required,oneof=invoice payment refund"`
	Reference string `json:"reference" binding:"omitempty,max=64,safe_id"`
	Method    string `json:"method" binding:"omitempty"`
	Amount    string `json:"amount" binding:"required,money"`
	TxnDate   string `json:"txn_date" binding:"required,iso_date"`
}

// AmendFinancialRecordRequest is the body of PUT /api/v1/financial/records/:id.
type AmendFinancialRecordRequest struct {
	Amount *string `json:"amount" binding:"omitempty,money"`
	Method *string `json:"method"`
}

// ---- Webhook ----

// WebhookEventRequest is the body of POST /api/v1/webhooks/audit-events.
// Data stays raw so the signature check canonicalizes exactly what was sent.
type WebhookEventRequest struct {
	EventType string          `json:"event_type" binding:"required,max=64"`
	LogID     string          `json:"log_id" binding:"required,max=128"`
	Timestamp string          `json:"timestamp" binding:"required"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature" binding:"required"`
}
