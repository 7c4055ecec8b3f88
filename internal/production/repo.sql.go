package production

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stitchline-erp/stitchline-erp/internal/platform/db"
)

// Repository persists processing and finished product records in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations the service composes.
type TxRepository interface {
	InsertFinished(ctx context.Context, input CreateFinishedInput) (int64, error)
	InsertSizes(ctx context.Context, finishedID int64, sizes []SizeQuantity) error
	CompleteProcessing(ctx context.Context, id int64) (bool, error)
	GetProcessingStatus(ctx context.Context, id int64) (Status, error)
}

type txRepository struct {
	tx pgx.Tx
}

const processingColumns = `id, material_id, processing_code, cutting_staff_id, cutting_cost,
embroidery_staff_id, embroidery_cost, packaging_staff_id, packaging_cost, other_cost,
start_date, end_date, status, created_at, updated_at`

const finishedColumns = `id, processing_product_id, finished_code, product_type, price,
manpower_charge_per_unit, category, sub_category, created_at`

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("production repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// CreateProcessing inserts a processing record in ACTIVE state.
func (r *Repository) CreateProcessing(ctx context.Context, input CreateProcessingInput) (ProcessingProduct, error) {
	var p ProcessingProduct
	err := r.pool.QueryRow(ctx, `INSERT INTO processing_products
(material_id, processing_code, cutting_staff_id, cutting_cost, embroidery_staff_id, embroidery_cost,
 packaging_staff_id, packaging_cost, other_cost, start_date, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
RETURNING `+processingColumns,
		input.MaterialID, input.ProcessingCode, input.CuttingStaffID, input.CuttingCost,
		input.EmbroideryStaffID, input.EmbroideryCost, input.PackagingStaffID, input.PackagingCost,
		input.OtherCost, input.StartDate, StatusActive).
		Scan(&p.ID, &p.MaterialID, &p.ProcessingCode, &p.CuttingStaffID, &p.CuttingCost,
			&p.EmbroideryStaffID, &p.EmbroideryCost, &p.PackagingStaffID, &p.PackagingCost, &p.OtherCost,
			&p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.ConstraintName == "uq_processing_code" {
			return ProcessingProduct{}, ErrDuplicateCode
		}
		return ProcessingProduct{}, err
	}
	return p, nil
}

// GetProcessing loads one processing record.
func (r *Repository) GetProcessing(ctx context.Context, id int64) (ProcessingProduct, error) {
	var p ProcessingProduct
	err := r.pool.QueryRow(ctx, `SELECT `+processingColumns+` FROM processing_products WHERE id = $1`, id).
		Scan(&p.ID, &p.MaterialID, &p.ProcessingCode, &p.CuttingStaffID, &p.CuttingCost,
			&p.EmbroideryStaffID, &p.EmbroideryCost, &p.PackagingStaffID, &p.PackagingCost, &p.OtherCost,
			&p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProcessingProduct{}, ErrNotFound
	}
	return p, err
}

// ListProcessing returns records, optionally filtered by status.
func (r *Repository) ListProcessing(ctx context.Context, status Status) ([]ProcessingProduct, error) {
	stmt := `SELECT ` + processingColumns + ` FROM processing_products`
	args := []any{}
	if status != "" {
		stmt += ` WHERE status = $1`
		args = append(args, status)
	}
	stmt += ` ORDER BY start_date DESC, id DESC`
	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ProcessingProduct{}
	for rows.Next() {
		var p ProcessingProduct
		if err := rows.Scan(&p.ID, &p.MaterialID, &p.ProcessingCode, &p.CuttingStaffID, &p.CuttingCost,
			&p.EmbroideryStaffID, &p.EmbroideryCost, &p.PackagingStaffID, &p.PackagingCost, &p.OtherCost,
			&p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Transition flips the status in one conditional statement, only out of
// ACTIVE. Completing also stamps end_date.
func (r *Repository) Transition(ctx context.Context, id int64, to Status) (bool, error) {
	stmt := `UPDATE processing_products SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`
	if to == StatusCompleted {
		stmt = `UPDATE processing_products SET status = $2, end_date = NOW(), updated_at = NOW() WHERE id = $1 AND status = $3`
	}
	tag, err := r.pool.Exec(ctx, stmt, id, to, StatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetStatus reads just the status column.
func (r *Repository) GetStatus(ctx context.Context, id int64) (Status, error) {
	var status Status
	err := r.pool.QueryRow(ctx, `SELECT status FROM processing_products WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return status, err
}

// GetFinished loads one finished product with its size breakdown.
func (r *Repository) GetFinished(ctx context.Context, id int64) (FinishedProduct, error) {
	var f FinishedProduct
	err := r.pool.QueryRow(ctx, `SELECT `+finishedColumns+` FROM finished_products WHERE id = $1`, id).
		Scan(&f.ID, &f.ProcessingProductID, &f.FinishedCode, &f.ProductType, &f.Price,
			&f.ManpowerChargePerUnit, &f.Category, &f.SubCategory, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FinishedProduct{}, ErrNotFound
	}
	if err != nil {
		return FinishedProduct{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT size, quantity FROM finished_product_sizes WHERE finished_product_id = $1 ORDER BY size ASC`, id)
	if err != nil {
		return FinishedProduct{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var sq SizeQuantity
		if err := rows.Scan(&sq.Size, &sq.Quantity); err != nil {
			return FinishedProduct{}, err
		}
		f.Sizes = append(f.Sizes, sq)
	}
	return f, rows.Err()
}

// ListFinished returns finished products newest first, without sizes.
func (r *Repository) ListFinished(ctx context.Context) ([]FinishedProduct, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+finishedColumns+` FROM finished_products ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []FinishedProduct{}
	for rows.Next() {
		var f FinishedProduct
		if err := rows.Scan(&f.ID, &f.ProcessingProductID, &f.FinishedCode, &f.ProductType, &f.Price,
			&f.ManpowerChargePerUnit, &f.Category, &f.SubCategory, &f.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *txRepository) InsertFinished(ctx context.Context, input CreateFinishedInput) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO finished_products
(processing_product_id, finished_code, product_type, price, manpower_charge_per_unit, category, sub_category, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
RETURNING id`,
		input.ProcessingProductID, input.FinishedCode, input.ProductType, input.Price,
		input.ManpowerChargePerUnit, input.Category, input.SubCategory).Scan(&id)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.ConstraintName == "uq_finished_code" {
			return 0, ErrDuplicateCode
		}
		return 0, err
	}
	return id, nil
}

func (r *txRepository) InsertSizes(ctx context.Context, finishedID int64, sizes []SizeQuantity) error {
	for _, sq := range sizes {
		_, err := r.tx.Exec(ctx, `INSERT INTO finished_product_sizes (finished_product_id, size, quantity)
VALUES ($1, $2, $3)`, finishedID, sq.Size, sq.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) CompleteProcessing(ctx context.Context, id int64) (bool, error) {
	tag, err := r.tx.Exec(ctx, `UPDATE processing_products SET status = $2, end_date = NOW(), updated_at = NOW()
WHERE id = $1 AND status = $3`, id, StatusCompleted, StatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *txRepository) GetProcessingStatus(ctx context.Context, id int64) (Status, error) {
	var status Status
	err := r.tx.QueryRow(ctx, `SELECT status FROM processing_products WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return status, err
}
