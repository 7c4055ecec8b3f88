package production

import (
	"fmt"
	"time"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// Status is the processing pipeline state. The only legal transitions are
// ACTIVE -> COMPLETED and ACTIVE -> INACTIVE.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusCompleted Status = "COMPLETED"
)

// ProcessingProduct tracks one batch of material moving through the cutting,
// embroidery and packaging stages. Stage costs are stored per stage; the
// total is always computed on read.
type ProcessingProduct struct {
	ID                int64
	MaterialID        int64
	ProcessingCode    string
	CuttingStaffID    int64
	CuttingCost       float64
	EmbroideryStaffID int64
	EmbroideryCost    float64
	PackagingStaffID  int64
	PackagingCost     float64
	OtherCost         float64
	StartDate         time.Time
	EndDate           *time.Time
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TotalCost sums the stage costs. Never persisted.
func (p ProcessingProduct) TotalCost() float64 {
	return p.CuttingCost + p.EmbroideryCost + p.PackagingCost + p.OtherCost
}

// CreateProcessingInput describes a new processing record. Material
// consumption is a separate, explicit inventory step.
type CreateProcessingInput struct {
	MaterialID        int64
	ProcessingCode    string
	CuttingStaffID    int64
	CuttingCost       float64
	EmbroideryStaffID int64
	EmbroideryCost    float64
	PackagingStaffID  int64
	PackagingCost     float64
	OtherCost         float64
	StartDate         time.Time
}

// SizeQuantity is one size position of a finished product.
type SizeQuantity struct {
	Size     string
	Quantity int64
}

// FinishedProduct is the output definition produced from a completed
// processing batch.
type FinishedProduct struct {
	ID                    int64
	ProcessingProductID   int64
	FinishedCode          string
	ProductType           string
	Sizes                 []SizeQuantity
	Price                 float64
	ManpowerChargePerUnit float64
	Category              string
	SubCategory           string
	CreatedAt             time.Time
}

// CreateFinishedInput describes a finished product. Creating it completes the
// referenced processing record in the same transaction.
type CreateFinishedInput struct {
	ProcessingProductID   int64
	FinishedCode          string
	ProductType           string
	Sizes                 []SizeQuantity
	Price                 float64
	ManpowerChargePerUnit float64
	Category              string
	SubCategory           string
}

var (
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = fmt.Errorf("production: %w", shared.ErrNotFound)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("production: %w", shared.ErrValidation)
	// ErrInvalidState indicates a transition the pipeline does not allow.
	ErrInvalidState = fmt.Errorf("production: %w", shared.ErrInvalidState)
	// ErrDuplicateCode indicates a processing or finished code already in use.
	ErrDuplicateCode = fmt.Errorf("production: code already in use: %w", shared.ErrInvalidState)
)
