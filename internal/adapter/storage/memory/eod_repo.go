package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EodLockRepo implements ports.EodLockRepository on the memory store.
type EodLockRepo struct {
	store *Store
}

// NewEodLockRepo creates an EOD repository view of s.
func NewEodLockRepo(s *Store) *EodLockRepo {
	return &EodLockRepo{store: s}
}

func (r *EodLockRepo) Create(ctx context.Context, tx pgx.Tx, lock *domain.EodLock) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	if findByBranchDate(st, lock.BranchID, lock.LockDate) != nil {
		return fmt.Errorf("insert eod lock: %w", ports.ErrDuplicate)
	}
	st.eods[lock.ID] = *lock
	return nil
}

func (r *EodLockRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.EodLock, error) {
	var out *domain.EodLock
	r.store.read(func(st *state) {
		if l, ok := st.eods[id]; ok {
			out = &l
		}
	})
	return out, nil
}

func (r *EodLockRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.EodLock, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	l, ok := st.eods[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *EodLockRepo) GetByBranchDate(ctx context.Context, branchID uuid.UUID, date time.Time) (*domain.EodLock, error) {
	var out *domain.EodLock
	r.store.read(func(st *state) {
		out = findByBranchDate(st, branchID, date)
	})
	return out, nil
}

func (r *EodLockRepo) GetByBranchDateForShare(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) (*domain.EodLock, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	return findByBranchDate(st, branchID, date), nil
}

func (r *EodLockRepo) LastLockedBefore(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) (*domain.EodLock, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	day := domain.CalendarDate(date)
	var best *domain.EodLock
	for _, l := range st.eods {
		if l.BranchID != branchID || l.Status != domain.EodStatusLocked || !l.LockDate.Before(day) {
			continue
		}
		if best == nil || l.LockDate.After(best.LockDate) {
			l := l
			best = &l
		}
	}
	return best, nil
}

func (r *EodLockRepo) Update(ctx context.Context, tx pgx.Tx, lock *domain.EodLock) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	if _, ok := st.eods[lock.ID]; !ok {
		return fmt.Errorf("update eod lock %s: not found", lock.ID)
	}
	st.eods[lock.ID] = *lock
	return nil
}

func (r *EodLockRepo) List(ctx context.Context, params ports.EodListParams) ([]domain.EodLock, error) {
	var out []domain.EodLock
	r.store.read(func(st *state) {
		for _, l := range st.eods {
			if params.BranchID != nil && l.BranchID != *params.BranchID {
				continue
			}
			if params.From != nil && l.LockDate.Before(domain.CalendarDate(*params.From)) {
				continue
			}
			if params.To != nil && l.LockDate.After(domain.CalendarDate(*params.To)) {
				continue
			}
			if params.Status != nil && l.Status != *params.Status {
				continue
			}
			out = append(out, l)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LockDate.Equal(out[j].LockDate) {
			return out[i].LockDate.After(out[j].LockDate)
		}
		return out[i].BranchID.String() < out[j].BranchID.String()
	})
	return out, nil
}

func findByBranchDate(st *state, branchID uuid.UUID, date time.Time) *domain.EodLock {
	day := domain.CalendarDate(date)
	for _, l := range st.eods {
		if l.BranchID == branchID && l.LockDate.Equal(day) {
			l := l
			return &l
		}
	}
	return nil
}
