package db

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// WithTx executes a function within a transaction using the RepeatableRead
// isolation level. Errors from an unreachable store are folded into
// shared.ErrStoreUnavailable via Classify.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return Classify(fmt.Errorf("platform/db: begin tx: %w", err))
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return Classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Classify(fmt.Errorf("platform/db: commit tx: %w", err))
	}

	return nil
}

// Classify folds transient connection-level failures into
// shared.ErrStoreUnavailable so callers can retry with backoff. Errors the
// server actually responded to (constraint violations and other statement
// failures) pass through untouched, as do domain sentinels.
func Classify(err error) error {
	if err == nil || errors.Is(err, shared.ErrStoreUnavailable) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}
	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	return err
}
