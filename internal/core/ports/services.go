package ports

import (
	"context"
	"time"

	"clinic-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildEventCanonical(eventType, logID string, timestamp int64, canonicalData []byte) string
}

// TokenService handles staff JWT operations.
type TokenService interface {
	Generate(claims TokenClaims) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed staff identity.
type TokenClaims struct {
	ActorID  uuid.UUID
	BranchID *uuid.UUID
	Role     string
}

// NonceStore manages one-time identifiers for replay prevention.
type NonceStore interface {
	// CheckAndSet atomically records nonce under namespace.
	// Returns true if nonce is new (valid), false if already seen.
	CheckAndSet(ctx context.Context, namespace string, nonce string, ttl time.Duration) (bool, error)
	// Release drops a claim whose work failed, so a retry of the same id is accepted.
	Release(ctx context.Context, namespace string, nonce string) error
}

// ReportCache is a small keyed byte cache with TTL. Get returns nil on miss.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DistributedLocker grants cluster-wide exclusive sections. Obtain returns ErrLockHeld when taken.
type DistributedLocker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// AlertNotifier forwards alert-class events to the notification collaborator.
type AlertNotifier interface {
	Raise(ctx context.Context, alert domain.Alert) error
}

// --- Service Ports (Business Logic) ---

// LedgerVerifier exposes chain verification.
type LedgerVerifier interface {
	Verify(ctx context.Context, mode domain.VerifyMode) (*domain.VerificationReport, error)
}

// AuditAppender is the exposed append-audit API.
type AuditAppender interface {
	RecordRaw(ctx context.Context, rec RawRecord) (*domain.LedgerEntry, error)
}

// RawRecord is an explicit audit append with caller-supplied provenance.
type RawRecord struct {
	EntityType string
	EntityID   string
	Action     domain.LedgerAction
	Before     domain.Fields
	After      domain.Fields
	Metadata   domain.Fields
	ActorID    *uuid.UUID
	BranchID   *uuid.UUID
	DeviceID   string
	IPAddress  string
	Duration   *time.Duration
}

// AuditQueryService is the read side of the ledger.
type AuditQueryService interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
	Trail(ctx context.Context, entityType, entityID string, scope Scope) (*AuditTrail, error)
	Stats(ctx context.Context, windowDays int, scope Scope) (*AuditStats, error)
	Export(ctx context.Context, req ExportRequest) (*ExportFile, error)
}

// SearchRequest is a filtered, paginated ledger query. DateTo includes the whole day.
type SearchRequest struct {
	ActorID    *uuid.UUID
	BranchID   *uuid.UUID
	Action     string
	EntityType string
	EntityID   string
	DateFrom   *time.Time
	DateTo     *time.Time
	Query      string
	Scope      Scope
	Page       int
	PageSize   int
}

// SearchResult is one page of ledger entries, newest first.
type SearchResult struct {
	Entries  []domain.LedgerEntry `json:"entries"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

// AuditTrail is every entry for one entity, oldest first.
type AuditTrail struct {
	EntityType string               `json:"entity_type"`
	EntityID   string               `json:"entity_id"`
	TotalLogs  int                  `json:"total_logs"`
	FirstLog   *domain.LedgerEntry  `json:"first_log"`
	LastLog    *domain.LedgerEntry  `json:"last_log"`
	Entries    []domain.LedgerEntry `json:"entries"`
}

// AuditStats aggregates activity plus chain health.
type AuditStats struct {
	WindowDays  int                        `json:"window_days"`
	Since       time.Time                  `json:"since"`
	Activity    LedgerStats                `json:"activity"`
	ChainHealth *domain.VerificationReport `json:"chain_health"`
}

// ExportFormat selects the export serialization.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ExportRequest selects entries to export. To includes the whole day.
type ExportRequest struct {
	Format           ExportFormat
	From             *time.Time
	To               *time.Time
	IncludeSensitive bool
	Scope            Scope
}

// ExportFile is a rendered export.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// EodService is the end-of-day close workflow.
type EodService interface {
	Prepare(ctx context.Context, req PrepareEodRequest) (*domain.EodLock, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.EodLock, error)
	List(ctx context.Context, params EodListParams) ([]domain.EodLock, error)
	RecalculateTotals(ctx context.Context, id uuid.UUID) (*domain.EodLock, error)
	VerifyCash(ctx context.Context, id uuid.UUID, actualCash decimal.Decimal, verifier uuid.UUID) (*domain.EodLock, error)
	VerifyDigitalPayments(ctx context.Context, id uuid.UUID, verifier uuid.UUID) (*domain.EodLock, error)
	VerifyInvoices(ctx context.Context, id uuid.UUID, verifier uuid.UUID) (*domain.EodLock, error)
	Review(ctx context.Context, id uuid.UUID, reviewer uuid.UUID, notes string) (*domain.EodLock, error)
	SendBack(ctx context.Context, id uuid.UUID, actor uuid.UUID, reason string) (*domain.EodLock, error)
	Lock(ctx context.Context, id uuid.UUID, locker uuid.UUID) (*domain.EodLock, error)
	Reverse(ctx context.Context, id uuid.UUID, reverser uuid.UUID, reason string) (*domain.EodLock, error)
	IsDateLocked(ctx context.Context, branchID uuid.UUID, date time.Time) (bool, error)
	EnsureDateUnlocked(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) error
}

// PrepareEodRequest opens a close. A nil OpeningCash carries over the prior locked day.
type PrepareEodRequest struct {
	BranchID    uuid.UUID
	Date        time.Time
	OpeningCash *decimal.Decimal
	PreparedBy  uuid.UUID
	Notes       string
}

// ReconciliationService manages cash handovers and exceptions of a close.
type ReconciliationService interface {
	CreateReconciliation(ctx context.Context, req CreateReconciliationRequest) (*domain.CashReconciliation, error)
	VerifyReconciliation(ctx context.Context, id uuid.UUID, verifier uuid.UUID) (*domain.CashReconciliation, error)
	ListReconciliations(ctx context.Context, eodID uuid.UUID) ([]domain.CashReconciliation, error)
	RaiseException(ctx context.Context, req RaiseExceptionRequest) (*domain.EodException, error)
	UpdateException(ctx context.Context, req UpdateExceptionRequest) (*domain.EodException, error)
	ListExceptions(ctx context.Context, eodID uuid.UUID) ([]domain.EodException, error)
}

// CreateReconciliationRequest records a cash handover.
type CreateReconciliationRequest struct {
	EodLockID     uuid.UUID
	HandedOverBy  uuid.UUID
	ReceivedBy    uuid.UUID
	Amount        decimal.Decimal
	Denominations map[string]int
	Notes         string
}

// RaiseExceptionRequest opens an exception against a close.
type RaiseExceptionRequest struct {
	EodLockID   uuid.UUID
	Type        domain.ExceptionType
	Severity    domain.ExceptionSeverity
	Description string
	Amount      *decimal.Decimal
	RaisedBy    *uuid.UUID
}

// UpdateExceptionRequest moves an exception along its lifecycle.
type UpdateExceptionRequest struct {
	ID         uuid.UUID
	Status     domain.ExceptionStatus
	Resolution string
	Actor      uuid.UUID
}

// FinancialService is the lock-aware posting path for invoices, payments and refunds.
type FinancialService interface {
	Record(ctx context.Context, req NewFinancialRecord) (*domain.FinancialRecord, error)
	Amend(ctx context.Context, req AmendFinancialRecord) (*domain.FinancialRecord, error)
	Void(ctx context.Context, id uuid.UUID) error
}

// NewFinancialRecord is a posting to create.
type NewFinancialRecord struct {
	BranchID  uuid.UUID
	Kind      domain.FinancialKind
	Reference string
	Method    domain.PaymentMethod
	Amount    decimal.Decimal
	TxnDate   time.Time
	CreatedBy *uuid.UUID
}

// AmendFinancialRecord changes amount and/or method of a posting.
type AmendFinancialRecord struct {
	ID     uuid.UUID
	Amount *decimal.Decimal
	Method *domain.PaymentMethod
}

// WebhookIngress accepts signed external audit events.
type WebhookIngress interface {
	Receive(ctx context.Context, event domain.WebhookEvent) (*domain.LedgerEntry, error)
}
