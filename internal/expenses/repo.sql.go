package expenses

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists expenses in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const expenseColumns = `id, title, category, amount, incurred_on, description, created_at`

func (r *Repository) Create(ctx context.Context, input CreateInput) (Expense, error) {
	var e Expense
	err := r.pool.QueryRow(ctx, `INSERT INTO expenses (title, category, amount, incurred_on, description, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING `+expenseColumns, input.Title, input.Category, input.Amount, input.IncurredOn, input.Description).
		Scan(&e.ID, &e.Title, &e.Category, &e.Amount, &e.IncurredOn, &e.Description, &e.CreatedAt)
	return e, err
}

func (r *Repository) Get(ctx context.Context, id int64) (Expense, error) {
	var e Expense
	err := r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id).
		Scan(&e.ID, &e.Title, &e.Category, &e.Amount, &e.IncurredOn, &e.Description, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) List(ctx context.Context, from, to time.Time) ([]Expense, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expenses
WHERE incurred_on >= $1 AND incurred_on <= $2 ORDER BY incurred_on DESC, id DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Expense{}
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.Amount, &e.IncurredOn, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
