package masterdata

import (
	"fmt"
	"time"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// Customer buys finished goods. Optional on a sale (walk-in customers).
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Vendor supplies materials through purchase orders.
type Vendor struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category labels finished products. A category with a parent is a
// sub-category.
type Category struct {
	ID        int64
	Name      string
	ParentID  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PartyInput covers customer and vendor create/update.
type PartyInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// CategoryInput describes a category create/update.
type CategoryInput struct {
	Name     string
	ParentID *int64
}

var (
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = fmt.Errorf("masterdata: %w", shared.ErrNotFound)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("masterdata: %w", shared.ErrValidation)
)
