package workforce

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists workforce records in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const employeeColumns = `id, name, phone, designation, joined_at, created_at, updated_at`

func (r *Repository) CreateEmployee(ctx context.Context, input EmployeeInput) (Employee, error) {
	var e Employee
	err := r.pool.QueryRow(ctx, `INSERT INTO employees (name, phone, designation, joined_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING `+employeeColumns, input.Name, input.Phone, input.Designation, input.JoinedAt).
		Scan(&e.ID, &e.Name, &e.Phone, &e.Designation, &e.JoinedAt, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *Repository) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	var e Employee
	err := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.Phone, &e.Designation, &e.JoinedAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Employee{}
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Phone, &e.Designation, &e.JoinedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *Repository) UpdateEmployee(ctx context.Context, id int64, input EmployeeInput) (Employee, error) {
	var e Employee
	err := r.pool.QueryRow(ctx, `UPDATE employees SET name = $2, phone = $3, designation = $4, joined_at = $5, updated_at = NOW()
WHERE id = $1
RETURNING `+employeeColumns, id, input.Name, input.Phone, input.Designation, input.JoinedAt).
		Scan(&e.ID, &e.Name, &e.Phone, &e.Designation, &e.JoinedAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) CreateSalary(ctx context.Context, input SalaryInput) (SalaryStructure, error) {
	var s SalaryStructure
	err := r.pool.QueryRow(ctx, `INSERT INTO salary_structures (employee_id, base_salary, overtime_rate, effective_from, created_at)
VALUES ($1, $2, $3, $4, NOW())
RETURNING id, employee_id, base_salary, overtime_rate, effective_from, created_at`,
		input.EmployeeID, input.BaseSalary, input.OvertimeRate, input.EffectiveFrom).
		Scan(&s.ID, &s.EmployeeID, &s.BaseSalary, &s.OvertimeRate, &s.EffectiveFrom, &s.CreatedAt)
	return s, err
}

func (r *Repository) ListSalaries(ctx context.Context, employeeID int64) ([]SalaryStructure, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, employee_id, base_salary, overtime_rate, effective_from, created_at
FROM salary_structures WHERE employee_id = $1 ORDER BY effective_from DESC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []SalaryStructure{}
	for rows.Next() {
		var s SalaryStructure
		if err := rows.Scan(&s.ID, &s.EmployeeID, &s.BaseSalary, &s.OvertimeRate, &s.EffectiveFrom, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *Repository) CreateAttendance(ctx context.Context, input AttendanceInput) (Attendance, error) {
	var a Attendance
	err := r.pool.QueryRow(ctx, `INSERT INTO attendance (employee_id, date, present, overtime_hours, created_at)
VALUES ($1, $2, $3, $4, NOW())
RETURNING id, employee_id, date, present, overtime_hours, created_at`,
		input.EmployeeID, input.Date, input.Present, input.OvertimeHours).
		Scan(&a.ID, &a.EmployeeID, &a.Date, &a.Present, &a.OvertimeHours, &a.CreatedAt)
	return a, err
}

func (r *Repository) ListAttendance(ctx context.Context, employeeID int64, from, to time.Time) ([]Attendance, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, employee_id, date, present, overtime_hours, created_at
FROM attendance WHERE employee_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Attendance{}
	for rows.Next() {
		var a Attendance
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Date, &a.Present, &a.OvertimeHours, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *Repository) CreateProductionLog(ctx context.Context, input ProductionLogInput) (ProductionLog, error) {
	var p ProductionLog
	err := r.pool.QueryRow(ctx, `INSERT INTO production_logs (employee_id, date, stage, units_completed, stage_per_unit_cost, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING id, employee_id, date, stage, units_completed, stage_per_unit_cost, created_at`,
		input.EmployeeID, input.Date, input.Stage, input.UnitsCompleted, input.StagePerUnitCost).
		Scan(&p.ID, &p.EmployeeID, &p.Date, &p.Stage, &p.UnitsCompleted, &p.StagePerUnitCost, &p.CreatedAt)
	return p, err
}

func (r *Repository) ListProductionLogs(ctx context.Context, employeeID int64, from, to time.Time) ([]ProductionLog, error) {
	stmt := `SELECT id, employee_id, date, stage, units_completed, stage_per_unit_cost, created_at
FROM production_logs WHERE date >= $1 AND date <= $2`
	args := []any{from, to}
	if employeeID != 0 {
		stmt += ` AND employee_id = $3`
		args = append(args, employeeID)
	}
	stmt += ` ORDER BY date ASC, id ASC`
	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ProductionLog{}
	for rows.Next() {
		var p ProductionLog
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.Date, &p.Stage, &p.UnitsCompleted, &p.StagePerUnitCost, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
