package workforce

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	CreateEmployee(ctx context.Context, input EmployeeInput) (Employee, error)
	GetEmployee(ctx context.Context, id int64) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	UpdateEmployee(ctx context.Context, id int64, input EmployeeInput) (Employee, error)
	CreateSalary(ctx context.Context, input SalaryInput) (SalaryStructure, error)
	ListSalaries(ctx context.Context, employeeID int64) ([]SalaryStructure, error)
	CreateAttendance(ctx context.Context, input AttendanceInput) (Attendance, error)
	ListAttendance(ctx context.Context, employeeID int64, from, to time.Time) ([]Attendance, error)
	CreateProductionLog(ctx context.Context, input ProductionLogInput) (ProductionLog, error)
	ListProductionLogs(ctx context.Context, employeeID int64, from, to time.Time) ([]ProductionLog, error)
}

// Service validates and forwards workforce operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateEmployee(ctx context.Context, input EmployeeInput) (Employee, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Employee{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	return s.repo.CreateEmployee(ctx, input)
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	return s.repo.GetEmployee(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	return s.repo.ListEmployees(ctx)
}

func (s *Service) UpdateEmployee(ctx context.Context, id int64, input EmployeeInput) (Employee, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Employee{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	return s.repo.UpdateEmployee(ctx, id, input)
}

// CreateSalary appends a salary structure entry. Earlier entries stay as
// history.
func (s *Service) CreateSalary(ctx context.Context, input SalaryInput) (SalaryStructure, error) {
	if input.EmployeeID == 0 {
		return SalaryStructure{}, fmt.Errorf("%w: employee required", ErrValidation)
	}
	if input.BaseSalary < 0 || input.OvertimeRate < 0 {
		return SalaryStructure{}, fmt.Errorf("%w: pay rates must be >= 0", ErrValidation)
	}
	if input.EffectiveFrom.IsZero() {
		return SalaryStructure{}, fmt.Errorf("%w: effective date required", ErrValidation)
	}
	if _, err := s.repo.GetEmployee(ctx, input.EmployeeID); err != nil {
		return SalaryStructure{}, err
	}
	return s.repo.CreateSalary(ctx, input)
}

func (s *Service) ListSalaries(ctx context.Context, employeeID int64) ([]SalaryStructure, error) {
	return s.repo.ListSalaries(ctx, employeeID)
}

func (s *Service) CreateAttendance(ctx context.Context, input AttendanceInput) (Attendance, error) {
	if input.EmployeeID == 0 {
		return Attendance{}, fmt.Errorf("%w: employee required", ErrValidation)
	}
	if input.Date.IsZero() {
		return Attendance{}, fmt.Errorf("%w: date required", ErrValidation)
	}
	if input.OvertimeHours < 0 {
		return Attendance{}, fmt.Errorf("%w: overtime hours must be >= 0", ErrValidation)
	}
	if _, err := s.repo.GetEmployee(ctx, input.EmployeeID); err != nil {
		return Attendance{}, err
	}
	return s.repo.CreateAttendance(ctx, input)
}

func (s *Service) ListAttendance(ctx context.Context, employeeID int64, from, to time.Time) ([]Attendance, error) {
	return s.repo.ListAttendance(ctx, employeeID, from, to)
}

// CreateProductionLog records completed units. The stage must be one of the
// pipeline stages; these rows feed the skill bonus report.
func (s *Service) CreateProductionLog(ctx context.Context, input ProductionLogInput) (ProductionLog, error) {
	if input.EmployeeID == 0 {
		return ProductionLog{}, fmt.Errorf("%w: employee required", ErrValidation)
	}
	switch input.Stage {
	case StageCutting, StageEmbroidery, StagePackaging:
	default:
		return ProductionLog{}, fmt.Errorf("%w: unknown stage %q", ErrValidation, input.Stage)
	}
	if input.UnitsCompleted <= 0 {
		return ProductionLog{}, fmt.Errorf("%w: units completed must be > 0", ErrValidation)
	}
	if input.StagePerUnitCost < 0 {
		return ProductionLog{}, fmt.Errorf("%w: per-unit cost must be >= 0", ErrValidation)
	}
	if input.Date.IsZero() {
		return ProductionLog{}, fmt.Errorf("%w: date required", ErrValidation)
	}
	if _, err := s.repo.GetEmployee(ctx, input.EmployeeID); err != nil {
		return ProductionLog{}, err
	}
	return s.repo.CreateProductionLog(ctx, input)
}

func (s *Service) ListProductionLogs(ctx context.Context, employeeID int64, from, to time.Time) ([]ProductionLog, error) {
	return s.repo.ListProductionLogs(ctx, employeeID, from, to)
}
