package sales

import (
	"fmt"
	"time"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// Sale is one checkout: a set of finished goods items sold together. The
// total is computed server-side. Returns are appended; sale rows themselves
// are never edited after creation.
type Sale struct {
	ID            int64
	CustomerID    *int64
	PaymentMethod string
	TotalAmount   float64
	Items         []SaleItem
	Returns       []ReturnedItem
	CreatedAt     time.Time
}

// SaleItem is one sold position.
type SaleItem struct {
	ID             int64
	SaleID         int64
	FinishedGoodID int64
	Size           string
	Quantity       float64
	UnitPrice      float64
	TotalPrice     float64
}

// ReturnedItem is an append-only return entry. At most one return per
// (sale, finished good) pair.
type ReturnedItem struct {
	ID             int64
	SaleID         int64
	FinishedGoodID int64
	Quantity       float64
	Reason         string
	CreatedAt      time.Time
}

// SaleItemInput describes one position on checkout.
type SaleItemInput struct {
	FinishedGoodID int64
	Quantity       float64
	UnitPrice      float64
}

// CreateSaleInput describes a new sale. Customer is optional (walk-in).
type CreateSaleInput struct {
	CustomerID    *int64
	PaymentMethod string
	Items         []SaleItemInput
}

// ReturnInput describes a return of one previously sold item.
type ReturnInput struct {
	SaleID         int64
	FinishedGoodID int64
	Quantity       float64
	Reason         string
}

var (
	// ErrNotFound indicates the sale or item does not exist.
	ErrNotFound = fmt.Errorf("sales: %w", shared.ErrNotFound)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("sales: %w", shared.ErrValidation)
	// ErrInsufficientStock indicates an item cannot be covered by stock.
	ErrInsufficientStock = fmt.Errorf("sales: %w", shared.ErrInsufficientStock)
	// ErrDuplicateReturn indicates the (sale, finished good) pair was already
	// returned.
	ErrDuplicateReturn = fmt.Errorf("sales: %w", shared.ErrDuplicateReturn)
)
