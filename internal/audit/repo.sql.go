package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the audit trail written by the mutation paths.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Timeline returns entries newest first. limit is overfetched by the caller
// to detect a next page.
func (r *Repository) Timeline(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	stmt := `SELECT actor_id, action, entity, entity_id, meta, occurred_at FROM audit_logs WHERE 1=1`
	args := []any{}
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		stmt += fmt.Sprintf(` AND occurred_at >= $%d`, len(args))
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		stmt += fmt.Sprintf(` AND occurred_at < $%d + INTERVAL '1 day'`, len(args))
	}
	if filters.ActorID > 0 {
		args = append(args, filters.ActorID)
		stmt += fmt.Sprintf(` AND actor_id = $%d`, len(args))
	}
	if filters.Entity != "" {
		args = append(args, filters.Entity)
		stmt += fmt.Sprintf(` AND entity = $%d`, len(args))
	}
	if filters.Action != "" {
		args = append(args, filters.Action)
		stmt += fmt.Sprintf(` AND action = $%d`, len(args))
	}
	args = append(args, limit)
	stmt += fmt.Sprintf(` ORDER BY occurred_at DESC, id DESC LIMIT $%d`, len(args))
	args = append(args, offset)
	stmt += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Entry{}
	for rows.Next() {
		var (
			entry Entry
			meta  []byte
		)
		if err := rows.Scan(&entry.ActorID, &entry.Action, &entry.Entity, &entry.EntityID, &meta, &entry.At); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &entry.Meta)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
