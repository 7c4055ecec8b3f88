package materials

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stitchline-erp/stitchline-erp/internal/ledger"
	"github.com/stitchline-erp/stitchline-erp/internal/platform/db"
)

// Repository persists materials in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	AdjustStock(ctx context.Context, materialID int64, delta float64) (Material, error)
}

type txRepository struct {
	tx pgx.Tx
}

const materialColumns = `id, name, unit, quantity_in_stock, reorder_level, created_at, updated_at`

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("materials repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Create inserts a material and returns it.
func (r *Repository) Create(ctx context.Context, input CreateInput) (Material, error) {
	var m Material
	err := r.pool.QueryRow(ctx, `INSERT INTO materials (name, unit, quantity_in_stock, reorder_level, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING `+materialColumns, input.Name, input.Unit, input.QuantityInStock, input.ReorderLevel).
		Scan(&m.ID, &m.Name, &m.Unit, &m.QuantityInStock, &m.ReorderLevel, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Get loads one material.
func (r *Repository) Get(ctx context.Context, id int64) (Material, error) {
	var m Material
	err := r.pool.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Unit, &m.QuantityInStock, &m.ReorderLevel, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Material{}, ErrNotFound
	}
	return m, err
}

// List returns materials ordered by name.
func (r *Repository) List(ctx context.Context) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaterials(rows)
}

// ListBelowReorder returns materials with quantity_in_stock strictly below
// reorder_level.
func (r *Repository) ListBelowReorder(ctx context.Context) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+materialColumns+` FROM materials
WHERE quantity_in_stock < reorder_level
ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaterials(rows)
}

// Update edits master fields, leaving stock untouched.
func (r *Repository) Update(ctx context.Context, id int64, input UpdateInput) (Material, error) {
	var m Material
	err := r.pool.QueryRow(ctx, `UPDATE materials SET name = $2, unit = $3, reorder_level = $4, updated_at = NOW()
WHERE id = $1
RETURNING `+materialColumns, id, input.Name, input.Unit, input.ReorderLevel).
		Scan(&m.ID, &m.Name, &m.Unit, &m.QuantityInStock, &m.ReorderLevel, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Material{}, ErrNotFound
	}
	return m, err
}

// CountOpenProcessing counts ACTIVE processing records referencing the material.
func (r *Repository) CountOpenProcessing(ctx context.Context, materialID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM processing_products WHERE material_id = $1 AND status = 'ACTIVE'`, materialID).Scan(&count)
	return count, err
}

// Delete removes a material.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) AdjustStock(ctx context.Context, materialID int64, delta float64) (Material, error) {
	if _, err := ledger.Adjust(ctx, r.tx, ledger.MaterialStock, materialID, delta); err != nil {
		return Material{}, err
	}
	var m Material
	err := r.tx.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, materialID).
		Scan(&m.ID, &m.Name, &m.Unit, &m.QuantityInStock, &m.ReorderLevel, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func scanMaterials(rows pgx.Rows) ([]Material, error) {
	result := []Material{}
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit, &m.QuantityInStock, &m.ReorderLevel, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
