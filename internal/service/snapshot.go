package service

import (
	"fmt"
	"sync"

	"clinic-ledger/internal/core/domain"
)

// SnapshotFn renders one entity type as ledger Fields.
type SnapshotFn func(entity any) (domain.Fields, error)

// SnapshotRegistry maps entity type names to their explicit serializers.
type SnapshotRegistry struct {
	mu  sync.RWMutex
	fns map[string]SnapshotFn
}

// NewSnapshotRegistry creates an empty registry.
func NewSnapshotRegistry() *SnapshotRegistry {
	return &SnapshotRegistry{fns: make(map[string]SnapshotFn)}
}

// RegisterSnapshot binds entityType to a typed serializer.
func RegisterSnapshot[T any](r *SnapshotRegistry, entityType string, fn func(T) domain.Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[entityType] = func(entity any) (domain.Fields, error) {
		v, ok := entity.(T)
		if !ok {
			return nil, fmt.Errorf("snapshot %s: unexpected %T", entityType, entity)
		}
		return fn(v), nil
	}
}

// Snapshot renders entity. A nil entity is a nil snapshot and Fields pass through unchanged.
func (r *SnapshotRegistry) Snapshot(entityType string, entity any) (domain.Fields, error) {
	switch v := entity.(type) {
	case nil:
		return nil, nil
	case domain.Fields:
		return v, nil
	}

	r.mu.RLock()
	fn, ok := r.fns[entityType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no snapshot registered for %s", entityType)
	}
	return fn(entity)
}

// DefaultSnapshots registers every entity type this service audits.
func DefaultSnapshots() *SnapshotRegistry {
	r := NewSnapshotRegistry()
	RegisterSnapshot(r, domain.EntityFinancialRecord, (*domain.FinancialRecord).Snapshot)
	RegisterSnapshot(r, domain.EntityEodLock, (*domain.EodLock).Snapshot)
	RegisterSnapshot(r, domain.EntityCashReconciliation, (*domain.CashReconciliation).Snapshot)
	RegisterSnapshot(r, domain.EntityEodException, (*domain.EodException).Snapshot)
	return r
}
