package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stitchline-erp/stitchline-erp/internal/ledger"
	"github.com/stitchline-erp/stitchline-erp/internal/platform/db"
)

// Repository persists purchase orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations the service composes.
type TxRepository interface {
	InsertOrder(ctx context.Context, vendorID int64, total float64) (int64, error)
	ReplaceOrder(ctx context.Context, id, vendorID int64, total float64) (bool, error)
	InsertLines(ctx context.Context, orderID int64, lines []Line) error
	DeleteLines(ctx context.Context, orderID int64) error
	TransitionStatus(ctx context.Context, id int64, to Status, notFrom ...Status) (bool, error)
	GetStatus(ctx context.Context, id int64) (Status, error)
	GetLines(ctx context.Context, orderID int64) ([]Line, error)
	ReceiveMaterial(ctx context.Context, materialID int64, quantity float64) error
}

type txRepository struct {
	tx pgx.Tx
}

const orderColumns = `id, vendor_id, status, total_amount, created_at, updated_at`
const lineColumns = `id, purchase_order_id, material_id, quantity, unit_price, total_price, item_type`

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("procurement repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Get loads one order with its lines.
func (r *Repository) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	var po PurchaseOrder
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`, id).
		Scan(&po.ID, &po.VendorID, &po.Status, &po.TotalAmount, &po.CreatedAt, &po.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PurchaseOrder{}, ErrNotFound
	}
	if err != nil {
		return PurchaseOrder{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+lineColumns+` FROM purchase_order_lines WHERE purchase_order_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	defer rows.Close()
	po.Lines, err = scanLines(rows)
	return po, err
}

// List returns orders newest first, without lines.
func (r *Repository) List(ctx context.Context) ([]PurchaseOrder, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM purchase_orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []PurchaseOrder{}
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(&po.ID, &po.VendorID, &po.Status, &po.TotalAmount, &po.CreatedAt, &po.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, po)
	}
	return result, rows.Err()
}

func (r *txRepository) InsertOrder(ctx context.Context, vendorID int64, total float64) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchase_orders (vendor_id, status, total_amount, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
RETURNING id`, vendorID, StatusPending, total).Scan(&id)
	return id, err
}

// ReplaceOrder updates vendor and total, but only while the order is pending.
func (r *txRepository) ReplaceOrder(ctx context.Context, id, vendorID int64, total float64) (bool, error) {
	tag, err := r.tx.Exec(ctx, `UPDATE purchase_orders SET vendor_id = $2, total_amount = $3, updated_at = NOW()
WHERE id = $1 AND status = $4`, id, vendorID, total, StatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *txRepository) InsertLines(ctx context.Context, orderID int64, lines []Line) error {
	for _, line := range lines {
		_, err := r.tx.Exec(ctx, `INSERT INTO purchase_order_lines (purchase_order_id, material_id, quantity, unit_price, total_price, item_type)
VALUES ($1, $2, $3, $4, $5, $6)`, orderID, line.MaterialID, line.Quantity, line.UnitPrice, line.TotalPrice, line.ItemType)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) DeleteLines(ctx context.Context, orderID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM purchase_order_lines WHERE purchase_order_id = $1`, orderID)
	return err
}

// TransitionStatus flips the status in one conditional statement and reports
// whether a row changed. Zero rows means the order was missing or already in
// one of the excluded states.
func (r *txRepository) TransitionStatus(ctx context.Context, id int64, to Status, notFrom ...Status) (bool, error) {
	stmt := `UPDATE purchase_orders SET status = $2, updated_at = NOW() WHERE id = $1`
	args := []any{id, to}
	for _, s := range notFrom {
		args = append(args, s)
		stmt += fmt.Sprintf(` AND status <> $%d`, len(args))
	}
	tag, err := r.tx.Exec(ctx, stmt, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *txRepository) GetStatus(ctx context.Context, id int64) (Status, error) {
	var status Status
	err := r.tx.QueryRow(ctx, `SELECT status FROM purchase_orders WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return status, err
}

func (r *txRepository) GetLines(ctx context.Context, orderID int64) ([]Line, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+lineColumns+` FROM purchase_order_lines WHERE purchase_order_id = $1 ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLines(rows)
}

func (r *txRepository) ReceiveMaterial(ctx context.Context, materialID int64, quantity float64) error {
	_, err := ledger.Adjust(ctx, r.tx, ledger.MaterialStock, materialID, quantity)
	return err
}

func scanLines(rows pgx.Rows) ([]Line, error) {
	result := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.PurchaseOrderID, &l.MaterialID, &l.Quantity, &l.UnitPrice, &l.TotalPrice, &l.ItemType); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
