package reports

import (
	"fmt"
	"time"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// Range is an inclusive date range. Every report filter carries one.
type Range struct {
	From time.Time
	To   time.Time
}

// Valid reports whether the range is usable.
func (r Range) Valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && !r.To.Before(r.From)
}

// MaterialCostRow aggregates received purchase lines for one material.
// AverageCostPerUnit is nil when the received quantity is zero; the division
// is never forced.
type MaterialCostRow struct {
	MaterialID         int64    `json:"materialId"`
	MaterialName       string   `json:"materialName"`
	Unit               string   `json:"unit"`
	TotalQuantity      float64  `json:"totalQuantity"`
	TotalCost          float64  `json:"totalCost"`
	AverageCostPerUnit *float64 `json:"averageCostPerUnit"`
}

// SkillBonusEntry is one production log line priced out.
type SkillBonusEntry struct {
	Date             time.Time `json:"date"`
	Stage            string    `json:"stage"`
	UnitsCompleted   int64     `json:"unitsCompleted"`
	StagePerUnitCost float64   `json:"stagePerUnitCost"`
	StageCost        float64   `json:"stageCost"`
}

// SkillBonusRow aggregates production log entries per employee. The per-entry
// breakdown is preserved next to the total.
type SkillBonusRow struct {
	EmployeeID   int64             `json:"employeeId"`
	EmployeeName string            `json:"employeeName"`
	Entries      []SkillBonusEntry `json:"entries"`
	TotalBonus   float64           `json:"totalBonus"`
}

// AnnualSummary compares turnover against expenses for one calendar year.
// Sums default to zero when nothing matches.
type AnnualSummary struct {
	Year     int     `json:"year"`
	Turnover float64 `json:"turnover"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// ReorderRow is one material below its reorder level.
type ReorderRow struct {
	MaterialID      int64   `json:"materialId"`
	Name            string  `json:"name"`
	Unit            string  `json:"unit"`
	QuantityInStock float64 `json:"quantityInStock"`
	ReorderLevel    float64 `json:"reorderLevel"`
}

// ErrValidation indicates invalid report filters.
var ErrValidation = fmt.Errorf("reports: %w", shared.ErrValidation)
