// Package memory is an in-process transactional store for dev mode and tests.
// Transactions are exclusive: one writer at a time works on a private copy of the
// committed state, which Commit swaps in and Rollback discards.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const defaultLockWait = 5 * time.Second

type state struct {
	ledger  []domain.LedgerEntry
	eods    map[uuid.UUID]domain.EodLock
	records map[uuid.UUID]domain.FinancialRecord
	recons  map[uuid.UUID]domain.CashReconciliation
	excs    map[uuid.UUID]domain.EodException
}

func newState() *state {
	return &state{
		eods:    make(map[uuid.UUID]domain.EodLock),
		records: make(map[uuid.UUID]domain.FinancialRecord),
		recons:  make(map[uuid.UUID]domain.CashReconciliation),
		excs:    make(map[uuid.UUID]domain.EodException),
	}
}

func (s *state) clone() *state {
	c := &state{
		// capped so appends in the copy never write into the committed backing array
		ledger:  s.ledger[:len(s.ledger):len(s.ledger)],
		eods:    make(map[uuid.UUID]domain.EodLock, len(s.eods)),
		records: make(map[uuid.UUID]domain.FinancialRecord, len(s.records)),
		recons:  make(map[uuid.UUID]domain.CashReconciliation, len(s.recons)),
		excs:    make(map[uuid.UUID]domain.EodException, len(s.excs)),
	}
	for k, v := range s.eods {
		c.eods[k] = v
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	for k, v := range s.recons {
		c.recons[k] = v
	}
	for k, v := range s.excs {
		c.excs[k] = v
	}
	return c
}

// Store holds committed state and hands out exclusive transactions.
type Store struct {
	mu        sync.RWMutex
	committed *state
	writer    chan struct{}
	lockWait  time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLockWait bounds how long Begin waits for the writer slot.
func WithLockWait(d time.Duration) Option {
	return func(s *Store) { s.lockWait = d }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		committed: newState(),
		writer:    make(chan struct{}, 1),
		lockWait:  defaultLockWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin implements ports.DBTransactor. It waits for the writer slot up to the lock wait or ctx.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	timer := time.NewTimer(s.lockWait)
	defer timer.Stop()

	select {
	case s.writer <- struct{}{}:
	case <-timer.C:
		return nil, fmt.Errorf("begin memory tx: %w", ports.ErrLockTimeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("begin memory tx: %w: %v", ports.ErrLockTimeout, ctx.Err())
	}

	s.mu.RLock()
	working := s.committed.clone()
	s.mu.RUnlock()

	return &Tx{store: s, st: working}, nil
}

func (s *Store) release() {
	<-s.writer
}

// read runs fn against the committed state.
func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.committed)
}

// Ping implements ports.HealthChecker.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "memory"
}

// Tx is an exclusive memory transaction. Only Commit and Rollback are supported;
// the embedded pgx.Tx is nil and any SQL method panics.
type Tx struct {
	pgx.Tx
	store *Store
	st    *state
	done  bool
	mu    sync.Mutex
}

// Commit publishes the working copy.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true

	t.store.mu.Lock()
	t.store.committed = t.st
	t.store.mu.Unlock()
	t.store.release()
	return nil
}

// Rollback discards the working copy. Calling it after Commit returns pgx.ErrTxClosed.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.release()
	return nil
}

func stateOf(tx pgx.Tx) (*state, error) {
	mt, ok := tx.(*Tx)
	if !ok || mt == nil {
		return nil, fmt.Errorf("memory store: foreign transaction %T", tx)
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.done {
		return nil, pgx.ErrTxClosed
	}
	return mt.st, nil
}
