package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor. Each transaction it opens carries
// statement_timeout, so a wait on an EOD row lock fails as ports.ErrLockTimeout
// instead of holding the request open.
type Transactor struct {
	pool             Pool
	statementTimeout time.Duration
}

// NewTransactor wraps the pool. A zero timeout leaves the server default in place.
func NewTransactor(pool Pool, statementTimeout time.Duration) *Transactor {
	return &Transactor{pool: pool, statementTimeout: statementTimeout}
}

func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return nil, translate("begin", err)
	}
	if t.statementTimeout <= 0 {
		return tx, nil
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", t.statementTimeout.Milliseconds())); err != nil {
		_ = tx.Rollback(ctx)
		return nil, translate("set statement timeout", err)
	}
	return tx, nil
}
