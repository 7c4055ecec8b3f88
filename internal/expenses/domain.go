package expenses

import (
	"fmt"
	"time"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// Expense is one operating cost entry, the input to the expense-vs-sales
// report.
type Expense struct {
	ID          int64
	Title       string
	Category    string
	Amount      float64
	IncurredOn  time.Time
	Description string
	CreatedAt   time.Time
}

// CreateInput describes a new expense.
type CreateInput struct {
	Title       string
	Category    string
	Amount      float64
	IncurredOn  time.Time
	Description string
}

var (
	// ErrNotFound indicates the expense does not exist.
	ErrNotFound = fmt.Errorf("expenses: %w", shared.ErrNotFound)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("expenses: %w", shared.ErrValidation)
)
