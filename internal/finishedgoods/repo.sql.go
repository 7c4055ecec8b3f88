package finishedgoods

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stitchline-erp/stitchline-erp/internal/ledger"
	"github.com/stitchline-erp/stitchline-erp/internal/platform/db"
)

// Repository persists finished goods stock in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	AdjustQuantity(ctx context.Context, id int64, delta float64) (FinishedGood, error)
}

type txRepository struct {
	tx pgx.Tx
}

const goodColumns = `id, finished_product_id, size, quantity, cost, category, sub_category, created_at, updated_at`

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("finishedgoods repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Upsert merges produced stock into the (product, size) row. Quantities add
// up, cost is last-write-wins, category fields are copied from the product
// only when the row is first created.
func (r *Repository) Upsert(ctx context.Context, input ProduceInput) (FinishedGood, error) {
	var g FinishedGood
	err := r.pool.QueryRow(ctx, `INSERT INTO finished_goods
(finished_product_id, size, quantity, cost, category, sub_category, created_at, updated_at)
SELECT fp.id, $2, $3, $4, fp.category, fp.sub_category, NOW(), NOW()
FROM finished_products fp
WHERE fp.id = $1
ON CONFLICT (finished_product_id, size)
DO UPDATE SET quantity = finished_goods.quantity + EXCLUDED.quantity, cost = EXCLUDED.cost, updated_at = NOW()
RETURNING `+goodColumns,
		input.FinishedProductID, input.Size, input.Quantity, input.Cost).
		Scan(&g.ID, &g.FinishedProductID, &g.Size, &g.Quantity, &g.Cost, &g.Category, &g.SubCategory, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FinishedGood{}, ErrNotFound
	}
	return g, err
}

// Get loads one stock row.
func (r *Repository) Get(ctx context.Context, id int64) (FinishedGood, error) {
	var g FinishedGood
	err := r.pool.QueryRow(ctx, `SELECT `+goodColumns+` FROM finished_goods WHERE id = $1`, id).
		Scan(&g.ID, &g.FinishedProductID, &g.Size, &g.Quantity, &g.Cost, &g.Category, &g.SubCategory, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FinishedGood{}, ErrNotFound
	}
	return g, err
}

// List returns stock rows ordered by product and size.
func (r *Repository) List(ctx context.Context) ([]FinishedGood, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+goodColumns+` FROM finished_goods ORDER BY finished_product_id ASC, size ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []FinishedGood{}
	for rows.Next() {
		var g FinishedGood
		if err := rows.Scan(&g.ID, &g.FinishedProductID, &g.Size, &g.Quantity, &g.Cost, &g.Category, &g.SubCategory, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

func (r *txRepository) AdjustQuantity(ctx context.Context, id int64, delta float64) (FinishedGood, error) {
	if _, err := ledger.Adjust(ctx, r.tx, ledger.FinishedGoodQty, id, delta); err != nil {
		return FinishedGood{}, err
	}
	var g FinishedGood
	err := r.tx.QueryRow(ctx, `SELECT `+goodColumns+` FROM finished_goods WHERE id = $1`, id).
		Scan(&g.ID, &g.FinishedProductID, &g.Size, &g.Quantity, &g.Cost, &g.Category, &g.SubCategory, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}
