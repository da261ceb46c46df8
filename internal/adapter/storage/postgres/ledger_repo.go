package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// ledgerTailLockKey is the advisory lock id that serializes appends to the chain.
const ledgerTailLockKey int64 = 0x4c454447 // "LEDG"

const ledgerColumns = `id, ts, actor_id, branch_id, device_id, ip_address, action, entity_type, entity_id,
	before_data, after_data, metadata, previous_hash, record_hash, duration_ms`

// LedgerRepo implements ports.LedgerRepository. It never issues UPDATE or DELETE against ledger_entries.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// LockTail takes the transaction-scoped advisory lock guarding the chain tip.
// The wait is bounded by lock_timeout; exceeding it surfaces as ports.ErrLockTimeout.
func (r *LedgerRepo) LockTail(ctx context.Context, tx pgx.Tx, timeout time.Duration) error {
	if timeout > 0 {
		// SET does not take bind parameters
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())); err != nil {
			return translate("set lock timeout", err)
		}
	}
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", ledgerTailLockKey); err != nil {
		return translate("lock ledger tail", err)
	}
	return nil
}

// Tail returns the newest entry, or nil for an empty ledger.
func (r *LedgerRepo) Tail(ctx context.Context, tx pgx.Tx) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries ORDER BY id DESC LIMIT 1`

	e, err := scanEntry(tx.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger tail: %w", err)
	}
	return e, nil
}

// Insert appends entry and sets its ID.
func (r *LedgerRepo) Insert(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	before, err := domain.EncodeFields(e.Before)
	if err != nil {
		return fmt.Errorf("encode before: %w", err)
	}
	after, err := domain.EncodeFields(e.After)
	if err != nil {
		return fmt.Errorf("encode after: %w", err)
	}
	metadata, err := domain.EncodeFields(e.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query := `INSERT INTO ledger_entries (ts, actor_id, branch_id, device_id, ip_address, action, entity_type,
		entity_id, before_data, after_data, metadata, previous_hash, record_hash, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	err = tx.QueryRow(ctx, query,
		e.Timestamp, e.ActorID, e.BranchID, e.DeviceID, e.IPAddress, string(e.Action), e.EntityType,
		e.EntityID, before, after, metadata, e.PreviousHash, e.RecordHash, e.DurationMS,
	).Scan(&e.ID)
	if err != nil {
		return translate("insert ledger entry", err)
	}
	return nil
}

func (r *LedgerRepo) ScanAscending(ctx context.Context, afterID int64, limit int) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id > $1 ORDER BY id ASC LIMIT $2`
	return r.queryEntries(ctx, "scan ledger", query, afterID, limit)
}

// ScanFiltered is a keyset page (id > afterID, ascending) of entries matching filter.
func (r *LedgerRepo) ScanFiltered(ctx context.Context, filter ports.LedgerFilter, afterID int64, limit int) ([]domain.LedgerEntry, error) {
	w := buildLedgerWhere(filter)
	w.add("id > $%d", afterID)
	query := fmt.Sprintf(`SELECT %s FROM ledger_entries %s ORDER BY id ASC LIMIT $%d`, ledgerColumns, w.clause(), w.next())
	return r.queryEntries(ctx, "scan filtered ledger", query, append(w.args, limit)...)
}

// Search returns one page ordered newest first plus the total match count.
func (r *LedgerRepo) Search(ctx context.Context, filter ports.LedgerFilter, page, pageSize int) ([]domain.LedgerEntry, int64, error) {
	w := buildLedgerWhere(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM ledger_entries ` + w.clause()
	if err := r.pool.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	offset := (page - 1) * pageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM ledger_entries %s ORDER BY ts DESC, id DESC LIMIT $%d OFFSET $%d`,
		ledgerColumns, w.clause(), w.next(), w.next()+1)
	entries, err := r.queryEntries(ctx, "search ledger", dataQuery, append(w.args, pageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Trail returns every entry of one entity, oldest first.
func (r *LedgerRepo) Trail(ctx context.Context, entityType, entityID string, scope ports.Scope) ([]domain.LedgerEntry, error) {
	w := buildLedgerWhere(ports.LedgerFilter{EntityType: entityType, EntityID: entityID, Scope: scope})
	query := fmt.Sprintf(`SELECT %s FROM ledger_entries %s ORDER BY id ASC`, ledgerColumns, w.clause())
	return r.queryEntries(ctx, "load entity trail", query, w.args...)
}

// Stats folds one grouped query into per-dimension counts.
func (r *LedgerRepo) Stats(ctx context.Context, since time.Time, scope ports.Scope) (*ports.LedgerStats, error) {
	w := buildLedgerWhere(ports.LedgerFilter{From: &since, Scope: scope})
	query := fmt.Sprintf(`SELECT action, entity_type, COALESCE(actor_id::text, 'system'),
		EXTRACT(HOUR FROM ts AT TIME ZONE 'UTC')::int, COUNT(*)
		FROM ledger_entries %s
		GROUP BY 1, 2, 3, 4`, w.clause())

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("ledger stats: %w", err)
	}
	defer rows.Close()

	stats := &ports.LedgerStats{
		ByAction:     make(map[string]int64),
		ByEntityType: make(map[string]int64),
		ByActor:      make(map[string]int64),
		ByHour:       make(map[int]int64),
	}
	for rows.Next() {
		var (
			action, entityType, actor string
			hour                      int
			n                         int64
		)
		if err := rows.Scan(&action, &entityType, &actor, &hour, &n); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats.TotalEntries += n
		stats.ByAction[action] += n
		stats.ByEntityType[entityType] += n
		stats.ByActor[actor] += n
		stats.ByHour[hour] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats rows: %w", err)
	}
	return stats, nil
}

func (r *LedgerRepo) ExistsForEntity(ctx context.Context, entityType, entityID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM ledger_entries WHERE entity_type = $1 AND entity_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, entityType, entityID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check ledger entity: %w", err)
	}
	return exists, nil
}

func (r *LedgerRepo) queryEntries(ctx context.Context, op, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{}
	var action string
	var before, after, metadata []byte
	err := row.Scan(
		&e.ID, &e.Timestamp, &e.ActorID, &e.BranchID, &e.DeviceID, &e.IPAddress, &action,
		&e.EntityType, &e.EntityID, &before, &after, &metadata, &e.PreviousHash, &e.RecordHash, &e.DurationMS,
	)
	if err != nil {
		return nil, err
	}
	e.Action = domain.LedgerAction(action)
	e.Timestamp = e.Timestamp.UTC()
	if e.Before, err = domain.DecodeFields(before); err != nil {
		return nil, fmt.Errorf("decode before of entry %d: %w", e.ID, err)
	}
	if e.After, err = domain.DecodeFields(after); err != nil {
		return nil, fmt.Errorf("decode after of entry %d: %w", e.ID, err)
	}
	if e.Metadata, err = domain.DecodeFields(metadata); err != nil {
		return nil, fmt.Errorf("decode metadata of entry %d: %w", e.ID, err)
	}
	return e, nil
}

// where accumulates positional conditions.
type where struct {
	conds []string
	args  []any
}

// add appends one condition; format takes the placeholder number of each arg in order.
func (w *where) add(format string, args ...any) {
	pos := make([]any, len(args))
	for i := range args {
		pos[i] = len(w.args) + 1 + i
	}
	w.args = append(w.args, args...)
	w.conds = append(w.conds, fmt.Sprintf(format, pos...))
}

// likeEscaper makes user text literal inside a LIKE pattern using ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (w *where) next() int {
	return len(w.args) + 1
}

func (w *where) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

func buildLedgerWhere(f ports.LedgerFilter) *where {
	w := &where{}
	switch f.Scope.Kind {
	case ports.ScopeBranch:
		w.add("branch_id = $%d", f.Scope.BranchID)
	case ports.ScopeOwn:
		w.add("actor_id = $%d", f.Scope.ActorID)
	}
	if f.ActorID != nil {
		w.add("actor_id = $%d", *f.ActorID)
	}
	if f.BranchID != nil {
		w.add("branch_id = $%d", *f.BranchID)
	}
	if f.Action != "" {
		w.add("action = $%d", f.Action)
	}
	if f.EntityType != "" {
		w.add("entity_type = $%d", f.EntityType)
	}
	if f.EntityID != "" {
		w.add("entity_id = $%d", f.EntityID)
	}
	if f.From != nil {
		w.add("ts >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("ts < $%d", *f.To)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		lit := likeEscaper.Replace(q)
		w.add(`(record_hash LIKE $%[1]d ESCAPE '\'
			OR entity_type ILIKE $%[2]d ESCAPE '\'
			OR entity_id ILIKE $%[2]d ESCAPE '\'
			OR action ILIKE $%[2]d ESCAPE '\'
			OR device_id ILIKE $%[2]d ESCAPE '\'
			OR ip_address ILIKE $%[2]d ESCAPE '\'
			OR actor_id::text ILIKE $%[2]d ESCAPE '\')`, strings.ToLower(lit)+"%", "%"+lit+"%")
	}
	return w
}
