package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the read-side aggregation queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// MaterialCost groups received purchase lines by material over the range.
// Only orders that reached RECEIVED count; the receipt timestamp is the
// order's last update.
func (r *Repository) MaterialCost(ctx context.Context, rng Range, materialID int64) ([]MaterialCostRow, error) {
	stmt := `SELECT m.id, m.name, m.unit,
COALESCE(SUM(l.quantity), 0), COALESCE(SUM(l.total_price), 0)
FROM purchase_orders po
JOIN purchase_order_lines l ON l.purchase_order_id = po.id
JOIN materials m ON m.id = l.material_id
WHERE po.status = 'RECEIVED' AND po.updated_at >= $1 AND po.updated_at < $2 + INTERVAL '1 day'`
	args := []any{rng.From, rng.To}
	if materialID != 0 {
		stmt += ` AND m.id = $3`
		args = append(args, materialID)
	}
	stmt += ` GROUP BY m.id, m.name, m.unit ORDER BY m.name ASC`

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []MaterialCostRow{}
	for rows.Next() {
		var row MaterialCostRow
		if err := rows.Scan(&row.MaterialID, &row.MaterialName, &row.Unit, &row.TotalQuantity, &row.TotalCost); err != nil {
			return nil, err
		}
		if row.TotalQuantity > 0 {
			avg := row.TotalCost / row.TotalQuantity
			row.AverageCostPerUnit = &avg
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// SkillBonus prices out production log entries per employee over the range.
func (r *Repository) SkillBonus(ctx context.Context, rng Range, employeeID int64) ([]SkillBonusRow, error) {
	stmt := `SELECT e.id, e.name, p.date, p.stage, p.units_completed, p.stage_per_unit_cost
FROM production_logs p
JOIN employees e ON e.id = p.employee_id
WHERE p.date >= $1 AND p.date <= $2`
	args := []any{rng.From, rng.To}
	if employeeID != 0 {
		stmt += ` AND e.id = $3`
		args = append(args, employeeID)
	}
	stmt += ` ORDER BY e.name ASC, p.date ASC, p.id ASC`

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []SkillBonusRow{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			id    int64
			name  string
			entry SkillBonusEntry
		)
		if err := rows.Scan(&id, &name, &entry.Date, &entry.Stage, &entry.UnitsCompleted, &entry.StagePerUnitCost); err != nil {
			return nil, err
		}
		entry.StageCost = float64(entry.UnitsCompleted) * entry.StagePerUnitCost
		pos, ok := index[id]
		if !ok {
			pos = len(result)
			index[id] = pos
			result = append(result, SkillBonusRow{EmployeeID: id, EmployeeName: name})
		}
		result[pos].Entries = append(result[pos].Entries, entry)
		result[pos].TotalBonus += entry.StageCost
	}
	return result, rows.Err()
}

// AnnualTurnover sums sale totals for one calendar year.
func (r *Repository) AnnualTurnover(ctx context.Context, year int) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM sales
WHERE created_at >= make_date($1, 1, 1) AND created_at < make_date($1 + 1, 1, 1)`, year).Scan(&total)
	return total, err
}

// AnnualExpenses sums expenses for one calendar year.
func (r *Repository) AnnualExpenses(ctx context.Context, year int) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses
WHERE incurred_on >= make_date($1, 1, 1) AND incurred_on < make_date($1 + 1, 1, 1)`, year).Scan(&total)
	return total, err
}

// Reorder lists materials strictly below their reorder level.
func (r *Repository) Reorder(ctx context.Context) ([]ReorderRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, unit, quantity_in_stock, reorder_level FROM materials
WHERE quantity_in_stock < reorder_level ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ReorderRow{}
	for rows.Next() {
		var row ReorderRow
		if err := rows.Scan(&row.MaterialID, &row.Name, &row.Unit, &row.QuantityInStock, &row.ReorderLevel); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
