// Package ledger implements the stock ledger primitive: an atomic,
// sign-bounded adjustment of a quantity column. Every stock mutation in the
// system funnels through Adjust so the non-negative invariant is enforced in
// a single conditional statement rather than a read-modify-write pair.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx the ledger needs, so an
// adjustment can join a caller's transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ref names a guarded quantity column. Only the whitelisted refs below are
// valid; table and column never come from request input.
type Ref struct {
	table  string
	column string
}

var (
	// MaterialStock guards materials.quantity_in_stock.
	MaterialStock = Ref{table: "materials", column: "quantity_in_stock"}
	// FinishedGoodQty guards finished_goods.quantity.
	FinishedGoodQty = Ref{table: "finished_goods", column: "quantity"}
)

// Entity returns the guarded table name, used in error messages.
func (r Ref) Entity() string { return r.table }

// Adjust applies delta to the referenced quantity in one conditional update
// and returns the new value. The guard `column + delta >= 0` runs inside the
// statement, so concurrent adjusters cannot lose updates or oversell.
func Adjust(ctx context.Context, q Querier, ref Ref, id int64, delta float64) (float64, error) {
	if ref.table == "" || ref.column == "" {
		return 0, fmt.Errorf("ledger: %w: unknown quantity ref", shared.ErrValidation)
	}
	if id == 0 {
		return 0, fmt.Errorf("ledger: %w: entity id required", shared.ErrValidation)
	}
	if delta == 0 {
		return 0, fmt.Errorf("ledger: %w: delta must be non zero", shared.ErrValidation)
	}

	stmt := fmt.Sprintf(
		`UPDATE %s SET %s = %s + $2, updated_at = NOW() WHERE id = $1 AND %s + $2 >= 0 RETURNING %s`,
		ref.table, ref.column, ref.column, ref.column, ref.column)

	var newValue float64
	err := q.QueryRow(ctx, stmt, id, delta).Scan(&newValue)
	if err == nil {
		return newValue, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("ledger: adjust %s %d: %w", ref.table, id, err)
	}

	// No row matched: either the entity is missing or the guard rejected the
	// delta. Tell the two apart so the caller gets the right taxonomy member.
	var exists bool
	checkStmt := fmt.Sprintf(`SELECT TRUE FROM %s WHERE id = $1`, ref.table)
	if err := q.QueryRow(ctx, checkStmt, id).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("ledger: %s %d: %w", ref.table, id, shared.ErrNotFound)
		}
		return 0, fmt.Errorf("ledger: adjust %s %d: %w", ref.table, id, err)
	}
	return 0, fmt.Errorf("ledger: %s %d: %w", ref.table, id, shared.ErrInsufficientStock)
}
