package ledger

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// fakeQuerier simulates the two statements Adjust issues against a single
// quantity row.
type fakeQuerier struct {
	exists  bool
	qty     float64
	queries []string
}

type fakeRow struct {
	err    error
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, v := range r.values {
		if i >= len(dest) {
			break
		}
		switch d := dest[i].(type) {
		case *float64:
			d1, _ := v.(float64)
			*d = d1
		case *bool:
			d1, _ := v.(bool)
			*d = d1
		}
	}
	return nil
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.queries = append(q.queries, sql)
	if strings.HasPrefix(sql, "SELECT TRUE") {
		if !q.exists {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{values: []any{true}}
	}
	delta, _ := args[1].(float64)
	if !q.exists || q.qty+delta < 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	q.qty += delta
	return fakeRow{values: []any{q.qty}}
}

func TestAdjustAppliesDelta(t *testing.T) {
	q := &fakeQuerier{exists: true, qty: 10}
	ctx := context.Background()

	got, err := Adjust(ctx, q, MaterialStock, 1, -7)
	require.NoError(t, err)
	require.InDelta(t, 3.0, got, 0.0001)

	got, err = Adjust(ctx, q, MaterialStock, 1, 4)
	require.NoError(t, err)
	require.InDelta(t, 7.0, got, 0.0001)
}

func TestAdjustGuardsNegative(t *testing.T) {
	q := &fakeQuerier{exists: true, qty: 3}

	_, err := Adjust(context.Background(), q, FinishedGoodQty, 9, -10)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	require.InDelta(t, 3.0, q.qty, 0.0001)
}

func TestAdjustDistinguishesMissingEntity(t *testing.T) {
	q := &fakeQuerier{exists: false}

	_, err := Adjust(context.Background(), q, MaterialStock, 42, -1)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAdjustUsesSingleConditionalStatement(t *testing.T) {
	q := &fakeQuerier{exists: true, qty: 5}

	_, err := Adjust(context.Background(), q, MaterialStock, 1, 2)
	require.NoError(t, err)
	require.Len(t, q.queries, 1)
	require.Contains(t, q.queries[0], "quantity_in_stock + $2 >= 0")
	require.Contains(t, q.queries[0], "RETURNING quantity_in_stock")
}

func TestAdjustRejectsZeroDelta(t *testing.T) {
	q := &fakeQuerier{exists: true, qty: 5}

	_, err := Adjust(context.Background(), q, MaterialStock, 1, 0)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, q.queries)
}
