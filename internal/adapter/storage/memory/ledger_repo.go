package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository on the memory store.
type LedgerRepo struct {
	store *Store
}

// NewLedgerRepo creates a ledger repository view of s.
func NewLedgerRepo(s *Store) *LedgerRepo {
	return &LedgerRepo{store: s}
}

// LockTail is satisfied by the exclusive transaction itself.
func (r *LedgerRepo) LockTail(ctx context.Context, tx pgx.Tx, timeout time.Duration) error {
	if _, err := stateOf(tx); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *LedgerRepo) Tail(ctx context.Context, tx pgx.Tx) (*domain.LedgerEntry, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	if len(st.ledger) == 0 {
		return nil, nil
	}
	e := st.ledger[len(st.ledger)-1]
	return &e, nil
}

func (r *LedgerRepo) Insert(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	var next int64 = 1
	if n := len(st.ledger); n > 0 {
		next = st.ledger[n-1].ID + 1
	}
	entry.ID = next
	st.ledger = append(st.ledger, *entry)
	return nil
}

func (r *LedgerRepo) ScanAscending(ctx context.Context, afterID int64, limit int) ([]domain.LedgerEntry, error) {
	return r.ScanFiltered(ctx, ports.LedgerFilter{Scope: ports.Scope{Kind: ports.ScopeAll}}, afterID, limit)
}

func (r *LedgerRepo) ScanFiltered(ctx context.Context, filter ports.LedgerFilter, afterID int64, limit int) ([]domain.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.LedgerEntry
	r.store.read(func(st *state) {
		// ledger is ordered by id
		start := sort.Search(len(st.ledger), func(i int) bool { return st.ledger[i].ID > afterID })
		for i := start; i < len(st.ledger) && len(out) < limit; i++ {
			if matches(&st.ledger[i], filter) {
				out = append(out, st.ledger[i])
			}
		}
	})
	return out, nil
}

func (r *LedgerRepo) Search(ctx context.Context, filter ports.LedgerFilter, page, pageSize int) ([]domain.LedgerEntry, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	var hits []domain.LedgerEntry
	r.store.read(func(st *state) {
		for i := range st.ledger {
			if matches(&st.ledger[i], filter) {
				hits = append(hits, st.ledger[i])
			}
		}
	})

	sort.SliceStable(hits, func(i, j int) bool {
		if !hits[i].Timestamp.Equal(hits[j].Timestamp) {
			return hits[i].Timestamp.After(hits[j].Timestamp)
		}
		return hits[i].ID > hits[j].ID
	})

	total := int64(len(hits))
	offset := (page - 1) * pageSize
	if offset >= len(hits) {
		return []domain.LedgerEntry{}, total, nil
	}
	end := offset + pageSize
	if end > len(hits) {
		end = len(hits)
	}
	return hits[offset:end], total, nil
}

func (r *LedgerRepo) Trail(ctx context.Context, entityType, entityID string, scope ports.Scope) ([]domain.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter := ports.LedgerFilter{EntityType: entityType, EntityID: entityID, Scope: scope}
	var out []domain.LedgerEntry
	r.store.read(func(st *state) {
		for i := range st.ledger {
			if matches(&st.ledger[i], filter) {
				out = append(out, st.ledger[i])
			}
		}
	})
	return out, nil
}

func (r *LedgerRepo) Stats(ctx context.Context, since time.Time, scope ports.Scope) (*ports.LedgerStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stats := &ports.LedgerStats{
		ByAction:     make(map[string]int64),
		ByEntityType: make(map[string]int64),
		ByActor:      make(map[string]int64),
		ByHour:       make(map[int]int64),
	}
	filter := ports.LedgerFilter{From: &since, Scope: scope}
	r.store.read(func(st *state) {
		for i := range st.ledger {
			e := &st.ledger[i]
			if !matches(e, filter) {
				continue
			}
			stats.TotalEntries++
			stats.ByAction[string(e.Action)]++
			stats.ByEntityType[e.EntityType]++
			stats.ByActor[actorKey(e.ActorID)]++
			stats.ByHour[e.Timestamp.UTC().Hour()]++
		}
	})
	return stats, nil
}

func (r *LedgerRepo) ExistsForEntity(ctx context.Context, entityType, entityID string) (bool, error) {
	found := false
	r.store.read(func(st *state) {
		for i := range st.ledger {
			if st.ledger[i].EntityType == entityType && st.ledger[i].EntityID == entityID {
				found = true
				return
			}
		}
	})
	return found, ctx.Err()
}

func actorKey(id *uuid.UUID) string {
	if id == nil {
		return "system"
	}
	return id.String()
}

func matches(e *domain.LedgerEntry, f ports.LedgerFilter) bool {
	if !inScope(e, f.Scope) {
		return false
	}
	if f.ActorID != nil && !sameUUID(e.ActorID, f.ActorID) {
		return false
	}
	if f.BranchID != nil && !sameUUID(e.BranchID, f.BranchID) {
		return false
	}
	if f.Action != "" && string(e.Action) != f.Action {
		return false
	}
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.EntityID != "" && e.EntityID != f.EntityID {
		return false
	}
	if f.From != nil && e.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && !e.Timestamp.Before(*f.To) {
		return false
	}
	if f.Query != "" && !matchesText(e, f.Query) {
		return false
	}
	return true
}

func inScope(e *domain.LedgerEntry, s ports.Scope) bool {
	switch s.Kind {
	case ports.ScopeBranch:
		return s.BranchID != nil && sameUUID(e.BranchID, s.BranchID)
	case ports.ScopeOwn:
		return s.ActorID != nil && sameUUID(e.ActorID, s.ActorID)
	default:
		return true
	}
}

func matchesText(e *domain.LedgerEntry, q string) bool {
	q = strings.ToLower(q)
	if strings.HasPrefix(e.RecordHash, q) {
		return true
	}
	candidates := []string{e.EntityType, e.EntityID, string(e.Action), e.DeviceID, e.IPAddress}
	if e.ActorID != nil {
		candidates = append(candidates, e.ActorID.String())
	}
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), q) {
			return true
		}
	}
	return false
}

func sameUUID(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}
