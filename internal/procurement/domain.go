package procurement

import (
	"fmt"
	"time"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// Status is the purchase order lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusOrdered   Status = "ORDERED"
	StatusReceived  Status = "RECEIVED"
	StatusCancelled Status = "CANCELLED"
)

// PurchaseOrder groups lines bought from one vendor. Totals are computed
// server-side from the lines, never taken from the request.
type PurchaseOrder struct {
	ID          int64
	VendorID    int64
	Status      Status
	TotalAmount float64
	Lines       []Line
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Line is one ordered material position.
type Line struct {
	ID              int64
	PurchaseOrderID int64
	MaterialID      int64
	Quantity        float64
	UnitPrice       float64
	TotalPrice      float64
	ItemType        string
}

// LineInput describes a line on create/update. TotalPrice is derived.
type LineInput struct {
	MaterialID int64
	Quantity   float64
	UnitPrice  float64
	ItemType   string
}

// CreateInput describes a new purchase order.
type CreateInput struct {
	VendorID int64
	Lines    []LineInput
}

// UpdateInput replaces vendor and lines while the order is still pending.
type UpdateInput struct {
	VendorID int64
	Lines    []LineInput
}

var (
	// ErrNotFound indicates the purchase order does not exist.
	ErrNotFound = fmt.Errorf("procurement: %w", shared.ErrNotFound)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("procurement: %w", shared.ErrValidation)
	// ErrInvalidState indicates a transition the lifecycle does not allow.
	ErrInvalidState = fmt.Errorf("procurement: %w", shared.ErrInvalidState)
)
