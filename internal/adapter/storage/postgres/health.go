package postgres

import (
	"context"
	"errors"
	"fmt"
)

// HealthCheck reports PostgreSQL as healthy once it answers and the ledger schema is in place.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

var errSchemaMissing = errors.New("ledger_entries table missing, run ledgerctl migrate")

func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := h.pool.Ping(ctx); err != nil {
		return err
	}
	var present bool
	if err := h.pool.QueryRow(ctx, `SELECT to_regclass('ledger_entries') IS NOT NULL`).Scan(&present); err != nil {
		return fmt.Errorf("schema probe: %w", err)
	}
	if !present {
		return errSchemaMissing
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgres"
}
