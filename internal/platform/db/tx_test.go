package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

func TestClassifyConnectionFailures(t *testing.T) {
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	err := Classify(fmt.Errorf("platform/db: begin tx: %w", dialErr))
	require.ErrorIs(t, err, shared.ErrStoreUnavailable)

	// A statement timeout surfaces as a deadline error, also retryable.
	require.ErrorIs(t, Classify(context.DeadlineExceeded), shared.ErrStoreUnavailable)

	// Already classified errors are not wrapped twice.
	require.Same(t, err, Classify(err))
}

func TestClassifyLeavesServerErrors(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_sale_return_item"}
	got := Classify(fmt.Errorf("insert return: %w", pgErr))
	require.NotErrorIs(t, got, shared.ErrStoreUnavailable)

	var back *pgconn.PgError
	require.True(t, errors.As(got, &back))
	require.Equal(t, "uq_sale_return_item", back.ConstraintName)
}

func TestClassifyLeavesDomainErrors(t *testing.T) {
	require.NoError(t, Classify(nil))
	require.Same(t, shared.ErrNotFound, Classify(shared.ErrNotFound))
	require.Same(t, shared.ErrInsufficientStock, Classify(shared.ErrInsufficientStock))
}
