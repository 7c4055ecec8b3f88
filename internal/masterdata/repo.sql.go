package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists master data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const partyColumns = `id, name, phone, email, address, created_at, updated_at`
const categoryColumns = `id, name, parent_id, created_at, updated_at`

func (r *Repository) CreateCustomer(ctx context.Context, input PartyInput) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `INSERT INTO customers (name, phone, email, address, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING `+partyColumns, input.Name, input.Phone, input.Email, input.Address).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repository) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT `+partyColumns+` FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+partyColumns+` FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *Repository) UpdateCustomer(ctx context.Context, id int64, input PartyInput) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `UPDATE customers SET name = $2, phone = $3, email = $4, address = $5, updated_at = NOW()
WHERE id = $1
RETURNING `+partyColumns, id, input.Name, input.Phone, input.Email, input.Address).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) DeleteCustomer(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateVendor(ctx context.Context, input PartyInput) (Vendor, error) {
	var v Vendor
	err := r.pool.QueryRow(ctx, `INSERT INTO vendors (name, phone, email, address, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING `+partyColumns, input.Name, input.Phone, input.Email, input.Address).
		Scan(&v.ID, &v.Name, &v.Phone, &v.Email, &v.Address, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *Repository) GetVendor(ctx context.Context, id int64) (Vendor, error) {
	var v Vendor
	err := r.pool.QueryRow(ctx, `SELECT `+partyColumns+` FROM vendors WHERE id = $1`, id).
		Scan(&v.ID, &v.Name, &v.Phone, &v.Email, &v.Address, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vendor{}, ErrNotFound
	}
	return v, err
}

func (r *Repository) ListVendors(ctx context.Context) ([]Vendor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+partyColumns+` FROM vendors ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Vendor{}
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Phone, &v.Email, &v.Address, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *Repository) UpdateVendor(ctx context.Context, id int64, input PartyInput) (Vendor, error) {
	var v Vendor
	err := r.pool.QueryRow(ctx, `UPDATE vendors SET name = $2, phone = $3, email = $4, address = $5, updated_at = NOW()
WHERE id = $1
RETURNING `+partyColumns, id, input.Name, input.Phone, input.Email, input.Address).
		Scan(&v.ID, &v.Name, &v.Phone, &v.Email, &v.Address, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vendor{}, ErrNotFound
	}
	return v, err
}

func (r *Repository) DeleteVendor(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateCategory(ctx context.Context, input CategoryInput) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `INSERT INTO categories (name, parent_id, created_at, updated_at)
VALUES ($1, $2, NOW(), NOW())
RETURNING `+categoryColumns, input.Name, input.ParentID).
		Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `UPDATE categories SET name = $2, parent_id = $3, updated_at = NOW()
WHERE id = $1
RETURNING `+categoryColumns, id, input.Name, input.ParentID).
		Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
