package workforce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	employees map[int64]Employee
	salaries  []SalaryStructure
	logs      []ProductionLog
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{employees: make(map[int64]Employee)}
}

func (r *memoryRepo) CreateEmployee(ctx context.Context, input EmployeeInput) (Employee, error) {
	r.nextID++
	e := Employee{ID: r.nextID, Name: input.Name, Designation: input.Designation, JoinedAt: input.JoinedAt}
	r.employees[e.ID] = e
	return e, nil
}

func (r *memoryRepo) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return e, nil
}

func (r *memoryRepo) ListEmployees(ctx context.Context) ([]Employee, error) {
	out := []Employee{}
	for _, e := range r.employees {
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryRepo) UpdateEmployee(ctx context.Context, id int64, input EmployeeInput) (Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	e.Name = input.Name
	r.employees[id] = e
	return e, nil
}

func (r *memoryRepo) CreateSalary(ctx context.Context, input SalaryInput) (SalaryStructure, error) {
	r.nextID++
	s := SalaryStructure{ID: r.nextID, EmployeeID: input.EmployeeID, BaseSalary: input.BaseSalary, OvertimeRate: input.OvertimeRate, EffectiveFrom: input.EffectiveFrom}
	r.salaries = append(r.salaries, s)
	return s, nil
}

func (r *memoryRepo) ListSalaries(ctx context.Context, employeeID int64) ([]SalaryStructure, error) {
	out := []SalaryStructure{}
	for _, s := range r.salaries {
		if s.EmployeeID == employeeID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memoryRepo) CreateAttendance(ctx context.Context, input AttendanceInput) (Attendance, error) {
	r.nextID++
	return Attendance{ID: r.nextID, EmployeeID: input.EmployeeID, Date: input.Date, Present: input.Present, OvertimeHours: input.OvertimeHours}, nil
}

func (r *memoryRepo) ListAttendance(ctx context.Context, employeeID int64, from, to time.Time) ([]Attendance, error) {
	return []Attendance{}, nil
}

func (r *memoryRepo) CreateProductionLog(ctx context.Context, input ProductionLogInput) (ProductionLog, error) {
	r.nextID++
	p := ProductionLog{ID: r.nextID, EmployeeID: input.EmployeeID, Date: input.Date, Stage: input.Stage, UnitsCompleted: input.UnitsCompleted, StagePerUnitCost: input.StagePerUnitCost}
	r.logs = append(r.logs, p)
	return p, nil
}

func (r *memoryRepo) ListProductionLogs(ctx context.Context, employeeID int64, from, to time.Time) ([]ProductionLog, error) {
	out := []ProductionLog{}
	for _, p := range r.logs {
		if employeeID == 0 || p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestSalaryRequiresEmployee(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateSalary(ctx, SalaryInput{EmployeeID: 9, BaseSalary: 100, EffectiveFrom: time.Now()})
	require.ErrorIs(t, err, ErrNotFound)

	e, err := svc.CreateEmployee(ctx, EmployeeInput{Name: "Mira", Designation: "cutter"})
	require.NoError(t, err)

	s, err := svc.CreateSalary(ctx, SalaryInput{EmployeeID: e.ID, BaseSalary: 100, OvertimeRate: 2, EffectiveFrom: time.Now()})
	require.NoError(t, err)
	require.Equal(t, e.ID, s.EmployeeID)
}

func TestProductionLogStageValidated(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	e, err := svc.CreateEmployee(ctx, EmployeeInput{Name: "Mira"})
	require.NoError(t, err)

	_, err = svc.CreateProductionLog(ctx, ProductionLogInput{
		EmployeeID:     e.ID,
		Date:           time.Now(),
		Stage:          "dyeing",
		UnitsCompleted: 10,
	})
	require.ErrorIs(t, err, ErrValidation)

	p, err := svc.CreateProductionLog(ctx, ProductionLogInput{
		EmployeeID:       e.ID,
		Date:             time.Now(),
		Stage:            StageCutting,
		UnitsCompleted:   25,
		StagePerUnitCost: 0.8,
	})
	require.NoError(t, err)
	require.Equal(t, int64(25), p.UnitsCompleted)
}

func TestAttendanceValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	e, err := svc.CreateEmployee(ctx, EmployeeInput{Name: "Mira"})
	require.NoError(t, err)

	_, err = svc.CreateAttendance(ctx, AttendanceInput{EmployeeID: e.ID})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateAttendance(ctx, AttendanceInput{EmployeeID: e.ID, Date: time.Now(), OvertimeHours: -1})
	require.ErrorIs(t, err, ErrValidation)

	a, err := svc.CreateAttendance(ctx, AttendanceInput{EmployeeID: e.ID, Date: time.Now(), Present: true, OvertimeHours: 1.5})
	require.NoError(t, err)
	require.True(t, a.Present)
}
