package ports

import (
	"context"
	"time"

	"clinic-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepository persists the hash chain. There is deliberately no update or delete method.
type LedgerRepository interface {
	// LockTail serializes appenders until tx ends. Returns ErrLockTimeout if the wait exceeds timeout.
	LockTail(ctx context.Context, tx pgx.Tx, timeout time.Duration) error
	// Tail returns the entry with the highest id, or nil for an empty ledger.
	Tail(ctx context.Context, tx pgx.Tx) (*domain.LedgerEntry, error)
	// Insert writes the entry and sets its ID.
	Insert(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	// ScanAscending returns up to limit entries with id > afterID ordered by id.
	ScanAscending(ctx context.Context, afterID int64, limit int) ([]domain.LedgerEntry, error)
	Search(ctx context.Context, filter LedgerFilter, page, pageSize int) ([]domain.LedgerEntry, int64, error)
	// ScanFiltered is the keyset variant of Search used by exports, ordered by id ascending.
	ScanFiltered(ctx context.Context, filter LedgerFilter, afterID int64, limit int) ([]domain.LedgerEntry, error)
	Trail(ctx context.Context, entityType, entityID string, scope Scope) ([]domain.LedgerEntry, error)
	Stats(ctx context.Context, since time.Time, scope Scope) (*LedgerStats, error)
	ExistsForEntity(ctx context.Context, entityType, entityID string) (bool, error)
}

// ScopeKind is the visibility granted to a caller.
type ScopeKind string

const (
	ScopeAll    ScopeKind = "all"
	ScopeBranch ScopeKind = "branch"
	ScopeOwn    ScopeKind = "own"
)

// Scope is a pre-resolved visibility restriction applied as an extra filter.
type Scope struct {
	Kind     ScopeKind
	BranchID *uuid.UUID
	ActorID  *uuid.UUID
}

// LedgerFilter holds search criteria. To is exclusive.
type LedgerFilter struct {
	ActorID    *uuid.UUID
	BranchID   *uuid.UUID
	Action     string
	EntityType string
	EntityID   string
	From       *time.Time
	To         *time.Time
	Query      string
	Scope      Scope
}

// LedgerStats holds aggregated ledger activity for a window.
type LedgerStats struct {
	TotalEntries int64            `json:"total_entries"`
	ByAction     map[string]int64 `json:"by_action"`
	ByEntityType map[string]int64 `json:"by_entity_type"`
	ByActor      map[string]int64 `json:"by_actor"`
	ByHour       map[int]int64    `json:"by_hour"`
}

// EodLockRepository persists EOD closes. ForUpdate/ForShare variants take row locks inside tx.
type EodLockRepository interface {
	Create(ctx context.Context, tx pgx.Tx, lock *domain.EodLock) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EodLock, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.EodLock, error)
	GetByBranchDate(ctx context.Context, branchID uuid.UUID, date time.Time) (*domain.EodLock, error)
	GetByBranchDateForShare(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) (*domain.EodLock, error)
	// LastLockedBefore returns the most recent LOCKED close strictly before date.
	LastLockedBefore(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) (*domain.EodLock, error)
	Update(ctx context.Context, tx pgx.Tx, lock *domain.EodLock) error
	List(ctx context.Context, params EodListParams) ([]domain.EodLock, error)
}

// EodListParams filters EOD listings. Zero values mean unbounded.
type EodListParams struct {
	BranchID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Status   *domain.EodStatus
}

// FinancialRepository persists the postings an EOD close aggregates and locks.
type FinancialRepository interface {
	Create(ctx context.Context, tx pgx.Tx, rec *domain.FinancialRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FinancialRecord, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.FinancialRecord, error)
	Update(ctx context.Context, tx pgx.Tx, rec *domain.FinancialRecord) error
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	ListByBranchDate(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) ([]domain.FinancialRecord, error)
	// SetEodLock flags every record of (branch, date) in one statement and returns the affected count.
	SetEodLock(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time, lockID *uuid.UUID, locked bool) (int64, error)
}

// ReconciliationRepository persists cash handovers.
type ReconciliationRepository interface {
	Create(ctx context.Context, tx pgx.Tx, rec *domain.CashReconciliation) error
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.CashReconciliation, error)
	Update(ctx context.Context, tx pgx.Tx, rec *domain.CashReconciliation) error
	ListByEod(ctx context.Context, eodID uuid.UUID) ([]domain.CashReconciliation, error)
}

// ExceptionRepository persists EOD exceptions.
type ExceptionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, exc *domain.EodException) error
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.EodException, error)
	Update(ctx context.Context, tx pgx.Tx, exc *domain.EodException) error
	ListByEod(ctx context.Context, eodID uuid.UUID) ([]domain.EodException, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
