package finishedgoods

import (
	"fmt"
	"time"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// FinishedGood is sellable stock of one finished product in one size. The
// (product, size) pair is unique; producing into an existing pair merges
// quantities. Category fields are snapshots taken from the product at first
// insert and are not kept in sync afterwards.
type FinishedGood struct {
	ID                int64
	FinishedProductID int64
	Size              string
	Quantity          float64
	Cost              float64
	Category          string
	SubCategory       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProduceInput describes stock arriving from production.
type ProduceInput struct {
	FinishedProductID int64
	Size              string
	Quantity          float64
	Cost              float64
}

var (
	// ErrNotFound indicates the stock row or product does not exist.
	ErrNotFound = fmt.Errorf("finishedgoods: %w", shared.ErrNotFound)
	// ErrInsufficientStock indicates a sale would drive quantity negative.
	ErrInsufficientStock = fmt.Errorf("finishedgoods: %w", shared.ErrInsufficientStock)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("finishedgoods: %w", shared.ErrValidation)
)
