package production

import (
	"context"
	"fmt"
	"strings"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	CreateProcessing(ctx context.Context, input CreateProcessingInput) (ProcessingProduct, error)
	GetProcessing(ctx context.Context, id int64) (ProcessingProduct, error)
	ListProcessing(ctx context.Context, status Status) ([]ProcessingProduct, error)
	Transition(ctx context.Context, id int64, to Status) (bool, error)
	GetStatus(ctx context.Context, id int64) (Status, error)
	GetFinished(ctx context.Context, id int64) (FinishedProduct, error)
	ListFinished(ctx context.Context) ([]FinishedProduct, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates the processing pipeline and finished product creation.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateProcessing opens a processing record in ACTIVE state. No stock is
// touched here; consumption is posted through the materials module.
func (s *Service) CreateProcessing(ctx context.Context, input CreateProcessingInput) (ProcessingProduct, error) {
	if input.MaterialID == 0 {
		return ProcessingProduct{}, fmt.Errorf("%w: material required", ErrValidation)
	}
	if strings.TrimSpace(input.ProcessingCode) == "" {
		return ProcessingProduct{}, fmt.Errorf("%w: processing code required", ErrValidation)
	}
	if input.CuttingCost < 0 || input.EmbroideryCost < 0 || input.PackagingCost < 0 || input.OtherCost < 0 {
		return ProcessingProduct{}, fmt.Errorf("%w: stage costs must be >= 0", ErrValidation)
	}
	if input.StartDate.IsZero() {
		return ProcessingProduct{}, fmt.Errorf("%w: start date required", ErrValidation)
	}
	p, err := s.repo.CreateProcessing(ctx, input)
	if err != nil {
		return ProcessingProduct{}, err
	}
	s.recordAudit(ctx, "PROCESSING_CREATE", "processing_product", p.ID, map[string]any{"code": p.ProcessingCode})
	return p, nil
}

// GetProcessing loads one processing record.
func (s *Service) GetProcessing(ctx context.Context, id int64) (ProcessingProduct, error) {
	return s.repo.GetProcessing(ctx, id)
}

// ListProcessing returns records, optionally filtered by status.
func (s *Service) ListProcessing(ctx context.Context, status Status) ([]ProcessingProduct, error) {
	switch status {
	case "", StatusActive, StatusInactive, StatusCompleted:
	default:
		return nil, fmt.Errorf("%w: unknown status filter", ErrValidation)
	}
	return s.repo.ListProcessing(ctx, status)
}

// Complete moves an active record to COMPLETED. Completing an already
// completed record is an idempotent success; an inactive record refuses.
func (s *Service) Complete(ctx context.Context, id int64) (ProcessingProduct, error) {
	flipped, err := s.repo.Transition(ctx, id, StatusCompleted)
	if err != nil {
		return ProcessingProduct{}, err
	}
	if !flipped {
		status, err := s.repo.GetStatus(ctx, id)
		if err != nil {
			return ProcessingProduct{}, err
		}
		if status != StatusCompleted {
			return ProcessingProduct{}, fmt.Errorf("cannot complete %s record: %w", status, ErrInvalidState)
		}
		return s.repo.GetProcessing(ctx, id)
	}
	s.recordAudit(ctx, "PROCESSING_COMPLETE", "processing_product", id, nil)
	return s.repo.GetProcessing(ctx, id)
}

// Deactivate moves an active record to INACTIVE.
func (s *Service) Deactivate(ctx context.Context, id int64) (ProcessingProduct, error) {
	flipped, err := s.repo.Transition(ctx, id, StatusInactive)
	if err != nil {
		return ProcessingProduct{}, err
	}
	if !flipped {
		status, err := s.repo.GetStatus(ctx, id)
		if err != nil {
			return ProcessingProduct{}, err
		}
		return ProcessingProduct{}, fmt.Errorf("cannot deactivate %s record: %w", status, ErrInvalidState)
	}
	s.recordAudit(ctx, "PROCESSING_DEACTIVATE", "processing_product", id, nil)
	return s.repo.GetProcessing(ctx, id)
}

// CreateFinished inserts the finished product definition and completes the
// referenced processing record in one transaction. A processing record that
// is already COMPLETED accepts further finished products; an INACTIVE one
// refuses.
func (s *Service) CreateFinished(ctx context.Context, input CreateFinishedInput) (FinishedProduct, error) {
	if input.ProcessingProductID == 0 {
		return FinishedProduct{}, fmt.Errorf("%w: processing record required", ErrValidation)
	}
	if strings.TrimSpace(input.FinishedCode) == "" {
		return FinishedProduct{}, fmt.Errorf("%w: finished code required", ErrValidation)
	}
	if len(input.Sizes) == 0 {
		return FinishedProduct{}, fmt.Errorf("%w: minimal 1 size position", ErrValidation)
	}
	for _, sq := range input.Sizes {
		if strings.TrimSpace(sq.Size) == "" || sq.Quantity <= 0 {
			return FinishedProduct{}, fmt.Errorf("%w: size and positive quantity required", ErrValidation)
		}
	}
	if input.Price < 0 || input.ManpowerChargePerUnit < 0 {
		return FinishedProduct{}, fmt.Errorf("%w: price fields must be >= 0", ErrValidation)
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		completed, err := tx.CompleteProcessing(ctx, input.ProcessingProductID)
		if err != nil {
			return err
		}
		if !completed {
			status, err := tx.GetProcessingStatus(ctx, input.ProcessingProductID)
			if err != nil {
				return err
			}
			if status != StatusCompleted {
				return fmt.Errorf("processing record is %s: %w", status, ErrInvalidState)
			}
		}
		id, err = tx.InsertFinished(ctx, input)
		if err != nil {
			return err
		}
		return tx.InsertSizes(ctx, id, input.Sizes)
	})
	if err != nil {
		return FinishedProduct{}, err
	}
	s.recordAudit(ctx, "FINISHED_CREATE", "finished_product", id, map[string]any{"code": input.FinishedCode})
	return s.repo.GetFinished(ctx, id)
}

// GetFinished loads one finished product.
func (s *Service) GetFinished(ctx context.Context, id int64) (FinishedProduct, error) {
	return s.repo.GetFinished(ctx, id)
}

// ListFinished returns all finished products.
func (s *Service) ListFinished(ctx context.Context) ([]FinishedProduct, error) {
	return s.repo.ListFinished(ctx)
}

func (s *Service) recordAudit(ctx context.Context, action, entity string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor := shared.ActorFromContext(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actor.ID, Action: action, Entity: entity, EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}
