package workforce

import (
	"fmt"
	"time"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// Employee is a factory worker or staff member.
type Employee struct {
	ID          int64
	Name        string
	Phone       string
	Designation string
	JoinedAt    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SalaryStructure is the pay agreement effective from a given date. History
// is kept; the latest row per employee is the current one.
type SalaryStructure struct {
	ID            int64
	EmployeeID    int64
	BaseSalary    float64
	OvertimeRate  float64
	EffectiveFrom time.Time
	CreatedAt     time.Time
}

// Attendance is one employee day.
type Attendance struct {
	ID            int64
	EmployeeID    int64
	Date          time.Time
	Present       bool
	OvertimeHours float64
	CreatedAt     time.Time
}

// ProductionLog records units one employee completed at one stage on one
// day. These rows feed the skill bonus report.
type ProductionLog struct {
	ID               int64
	EmployeeID       int64
	Date             time.Time
	Stage            string
	UnitsCompleted   int64
	StagePerUnitCost float64
	CreatedAt        time.Time
}

// EmployeeInput describes a new or updated employee.
type EmployeeInput struct {
	Name        string
	Phone       string
	Designation string
	JoinedAt    time.Time
}

// SalaryInput describes a new salary structure entry.
type SalaryInput struct {
	EmployeeID    int64
	BaseSalary    float64
	OvertimeRate  float64
	EffectiveFrom time.Time
}

// AttendanceInput describes one attendance entry.
type AttendanceInput struct {
	EmployeeID    int64
	Date          time.Time
	Present       bool
	OvertimeHours float64
}

// ProductionLogInput describes one production log entry.
type ProductionLogInput struct {
	EmployeeID       int64
	Date             time.Time
	Stage            string
	UnitsCompleted   int64
	StagePerUnitCost float64
}

// Stages accepted on production logs.
const (
	StageCutting    = "cutting"
	StageEmbroidery = "embroidery"
	StagePackaging  = "packaging"
)

var (
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = fmt.Errorf("workforce: %w", shared.ErrNotFound)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("workforce: %w", shared.ErrValidation)
)
