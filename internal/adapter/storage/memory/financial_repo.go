package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"clinic-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FinancialRepo implements ports.FinancialRepository on the memory store.
type FinancialRepo struct {
	store *Store
}

// NewFinancialRepo creates a financial repository view of s.
func NewFinancialRepo(s *Store) *FinancialRepo {
	return &FinancialRepo{store: s}
}

func (r *FinancialRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.FinancialRecord) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	st.records[rec.ID] = *rec
	return nil
}

func (r *FinancialRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FinancialRecord, error) {
	var out *domain.FinancialRecord
	r.store.read(func(st *state) {
		if rec, ok := st.records[id]; ok {
			out = &rec
		}
	})
	return out, nil
}

func (r *FinancialRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.FinancialRecord, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	rec, ok := st.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *FinancialRepo) Update(ctx context.Context, tx pgx.Tx, rec *domain.FinancialRecord) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	if _, ok := st.records[rec.ID]; !ok {
		return fmt.Errorf("update financial record %s: not found", rec.ID)
	}
	st.records[rec.ID] = *rec
	return nil
}

func (r *FinancialRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	delete(st.records, id)
	return nil
}

func (r *FinancialRepo) ListByBranchDate(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time) ([]domain.FinancialRecord, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	day := domain.CalendarDate(date)
	var out []domain.FinancialRecord
	for _, rec := range st.records {
		if rec.BranchID == branchID && domain.CalendarDate(rec.TxnDate).Equal(day) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *FinancialRepo) SetEodLock(ctx context.Context, tx pgx.Tx, branchID uuid.UUID, date time.Time, lockID *uuid.UUID, locked bool) (int64, error) {
	st, err := stateOf(tx)
	if err != nil {
		return 0, err
	}
	day := domain.CalendarDate(date)
	now := time.Now().UTC()
	var n int64
	for id, rec := range st.records {
		if rec.BranchID != branchID || !domain.CalendarDate(rec.TxnDate).Equal(day) {
			continue
		}
		rec.EodLocked = locked
		rec.LockedEodID = lockID
		rec.UpdatedAt = now
		st.records[id] = rec
		n++
	}
	return n, nil
}
