package memory

import (
	"context"
	"fmt"
	"sort"

	"clinic-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReconciliationRepo implements ports.ReconciliationRepository on the memory store.
type ReconciliationRepo struct {
	store *Store
}

// NewReconciliationRepo creates a reconciliation repository view of s.
func NewReconciliationRepo(s *Store) *ReconciliationRepo {
	return &ReconciliationRepo{store: s}
}

func (r *ReconciliationRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.CashReconciliation) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	st.recons[rec.ID] = *rec
	return nil
}

func (r *ReconciliationRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.CashReconciliation, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	rec, ok := st.recons[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *ReconciliationRepo) Update(ctx context.Context, tx pgx.Tx, rec *domain.CashReconciliation) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	if _, ok := st.recons[rec.ID]; !ok {
		return fmt.Errorf("update reconciliation %s: not found", rec.ID)
	}
	st.recons[rec.ID] = *rec
	return nil
}

func (r *ReconciliationRepo) ListByEod(ctx context.Context, eodID uuid.UUID) ([]domain.CashReconciliation, error) {
	var out []domain.CashReconciliation
	r.store.read(func(st *state) {
		for _, rec := range st.recons {
			if rec.EodLockID == eodID {
				out = append(out, rec)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ExceptionRepo implements ports.ExceptionRepository on the memory store.
type ExceptionRepo struct {
	store *Store
}

// NewExceptionRepo creates an exception repository view of s.
func NewExceptionRepo(s *Store) *ExceptionRepo {
	return &ExceptionRepo{store: s}
}

func (r *ExceptionRepo) Create(ctx context.Context, tx pgx.Tx, exc *domain.EodException) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	st.excs[exc.ID] = *exc
	return nil
}

func (r *ExceptionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.EodException, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	exc, ok := st.excs[id]
	if !ok {
		return nil, nil
	}
	return &exc, nil
}

func (r *ExceptionRepo) Update(ctx context.Context, tx pgx.Tx, exc *domain.EodException) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	if _, ok := st.excs[exc.ID]; !ok {
		return fmt.Errorf("update exception %s: not found", exc.ID)
	}
	st.excs[exc.ID] = *exc
	return nil
}

func (r *ExceptionRepo) ListByEod(ctx context.Context, eodID uuid.UUID) ([]domain.EodException, error) {
	var out []domain.EodException
	r.store.read(func(st *state) {
		for _, exc := range st.excs {
			if exc.EodLockID == eodID {
				out = append(out, exc)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
