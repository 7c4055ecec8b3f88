package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stitchline-erp/stitchline-erp/internal/ledger"
	"github.com/stitchline-erp/stitchline-erp/internal/platform/db"
)

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations the service composes.
type TxRepository interface {
	InsertSale(ctx context.Context, customerID *int64, paymentMethod string, total float64) (int64, error)
	InsertItems(ctx context.Context, saleID int64, items []SaleItem) error
	AdjustFinishedGood(ctx context.Context, id int64, delta float64) error
	HasReturn(ctx context.Context, saleID, finishedGoodID int64) (bool, error)
	InsertReturn(ctx context.Context, input ReturnInput) (int64, error)
	InsertReturnLog(ctx context.Context, input ReturnInput) error
}

type txRepository struct {
	tx pgx.Tx
}

const saleColumns = `id, customer_id, payment_method, total_amount, created_at`
const itemColumns = `id, sale_id, finished_good_id, size, quantity, unit_price, total_price`
const returnColumns = `id, sale_id, finished_good_id, quantity, reason, created_at`

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("sales repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Get loads one sale with its items and returns.
func (r *Repository) Get(ctx context.Context, id int64) (Sale, error) {
	var s Sale
	err := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id).
		Scan(&s.ID, &s.CustomerID, &s.PaymentMethod, &s.TotalAmount, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrNotFound
	}
	if err != nil {
		return Sale{}, err
	}

	itemRows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM sale_items WHERE sale_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return Sale{}, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it SaleItem
		if err := itemRows.Scan(&it.ID, &it.SaleID, &it.FinishedGoodID, &it.Size, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return Sale{}, err
		}
		s.Items = append(s.Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return Sale{}, err
	}

	returnRows, err := r.pool.Query(ctx, `SELECT `+returnColumns+` FROM sale_returns WHERE sale_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return Sale{}, err
	}
	defer returnRows.Close()
	for returnRows.Next() {
		var ret ReturnedItem
		if err := returnRows.Scan(&ret.ID, &ret.SaleID, &ret.FinishedGoodID, &ret.Quantity, &ret.Reason, &ret.CreatedAt); err != nil {
			return Sale{}, err
		}
		s.Returns = append(s.Returns, ret)
	}
	return s, returnRows.Err()
}

// List returns sales newest first, without items.
func (r *Repository) List(ctx context.Context) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Sale{}
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.PaymentMethod, &s.TotalAmount, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetFinishedGoodStock reads the stock level used for the pre-check that
// names the offending item before the transactional decrement runs.
func (r *Repository) GetFinishedGoodStock(ctx context.Context, id int64) (size string, quantity float64, err error) {
	err = r.pool.QueryRow(ctx, `SELECT size, quantity FROM finished_goods WHERE id = $1`, id).Scan(&size, &quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, ErrNotFound
	}
	return size, quantity, err
}

func (r *txRepository) InsertSale(ctx context.Context, customerID *int64, paymentMethod string, total float64) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales (customer_id, payment_method, total_amount, created_at)
VALUES ($1, $2, $3, NOW())
RETURNING id`, customerID, paymentMethod, total).Scan(&id)
	return id, err
}

func (r *txRepository) InsertItems(ctx context.Context, saleID int64, items []SaleItem) error {
	for _, it := range items {
		_, err := r.tx.Exec(ctx, `INSERT INTO sale_items (sale_id, finished_good_id, size, quantity, unit_price, total_price)
VALUES ($1, $2, $3, $4, $5, $6)`, saleID, it.FinishedGoodID, it.Size, it.Quantity, it.UnitPrice, it.TotalPrice)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) AdjustFinishedGood(ctx context.Context, id int64, delta float64) error {
	_, err := ledger.Adjust(ctx, r.tx, ledger.FinishedGoodQty, id, delta)
	return err
}

func (r *txRepository) HasReturn(ctx context.Context, saleID, finishedGoodID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sale_returns WHERE sale_id = $1 AND finished_good_id = $2)`,
		saleID, finishedGoodID).Scan(&exists)
	return exists, err
}

func (r *txRepository) InsertReturn(ctx context.Context, input ReturnInput) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sale_returns (sale_id, finished_good_id, quantity, reason, created_at)
VALUES ($1, $2, $3, $4, NOW())
RETURNING id`, input.SaleID, input.FinishedGoodID, input.Quantity, input.Reason).Scan(&id)
	if err != nil {
		// A concurrent return for the same pair can slip past HasReturn and
		// lose the race on uq_sale_return_item.
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.ConstraintName == "uq_sale_return_item" {
			return 0, ErrDuplicateReturn
		}
		return 0, err
	}
	return id, nil
}

// InsertReturnLog appends to the standalone return log kept next to the
// per-sale returned items.
func (r *txRepository) InsertReturnLog(ctx context.Context, input ReturnInput) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO return_logs (sale_id, finished_good_id, quantity, reason, created_at)
VALUES ($1, $2, $3, $4, NOW())`, input.SaleID, input.FinishedGoodID, input.Quantity, input.Reason)
	return err
}
