package materials

import (
	"fmt"
	"time"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// Material is a raw input tracked by quantity in stock and a reorder
// threshold. Stock is mutated only by purchase-order receipt (+) and
// production consumption (-), both through the ledger primitive.
type Material struct {
	ID              int64
	Name            string
	Unit            string
	QuantityInStock float64
	ReorderLevel    float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BelowReorder reports whether the material needs reordering. The predicate
// is strictly less-than; stock sitting exactly at the level does not trigger.
func (m Material) BelowReorder() bool {
	return m.QuantityInStock < m.ReorderLevel
}

// CreateInput describes a new material.
type CreateInput struct {
	Name            string
	Unit            string
	QuantityInStock float64
	ReorderLevel    float64
}

// UpdateInput carries editable master fields. Stock is never edited here.
type UpdateInput struct {
	Name         string
	Unit         string
	ReorderLevel float64
}

// ConsumeItem is one line of a batch consumption.
type ConsumeItem struct {
	MaterialID int64
	Quantity   float64
}

var (
	// ErrNotFound indicates the material does not exist.
	ErrNotFound = fmt.Errorf("materials: %w", shared.ErrNotFound)
	// ErrInsufficientStock indicates consumption would drive stock negative.
	ErrInsufficientStock = fmt.Errorf("materials: %w", shared.ErrInsufficientStock)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("materials: %w", shared.ErrValidation)
	// ErrReferenced indicates the material backs open processing records.
	ErrReferenced = fmt.Errorf("materials: referenced by active processing: %w", shared.ErrInvalidState)
)
