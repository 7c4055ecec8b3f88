package materials

import (
	"context"
	"fmt"
	"strings"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Create(ctx context.Context, input CreateInput) (Material, error)
	Get(ctx context.Context, id int64) (Material, error)
	List(ctx context.Context) ([]Material, error)
	ListBelowReorder(ctx context.Context) ([]Material, error)
	Update(ctx context.Context, id int64, input UpdateInput) (Material, error)
	CountOpenProcessing(ctx context.Context, materialID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates material inventory operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Create registers a new material.
func (s *Service) Create(ctx context.Context, input CreateInput) (Material, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Unit) == "" {
		return Material{}, fmt.Errorf("%w: name and unit required", ErrValidation)
	}
	if input.QuantityInStock < 0 || input.ReorderLevel < 0 {
		return Material{}, fmt.Errorf("%w: quantities must be >= 0", ErrValidation)
	}
	m, err := s.repo.Create(ctx, input)
	if err != nil {
		return Material{}, err
	}
	s.recordAudit(ctx, "MATERIAL_CREATE", m.ID, map[string]any{"name": m.Name})
	return m, nil
}

// Get loads a material.
func (s *Service) Get(ctx context.Context, id int64) (Material, error) {
	return s.repo.Get(ctx, id)
}

// List returns all materials.
func (s *Service) List(ctx context.Context) ([]Material, error) {
	return s.repo.List(ctx)
}

// Update edits master fields.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (Material, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Unit) == "" {
		return Material{}, fmt.Errorf("%w: name and unit required", ErrValidation)
	}
	if input.ReorderLevel < 0 {
		return Material{}, fmt.Errorf("%w: reorder level must be >= 0", ErrValidation)
	}
	return s.repo.Update(ctx, id, input)
}

// Delete removes a material unless open processing records still reference it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	open, err := s.repo.CountOpenProcessing(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return ErrReferenced
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "MATERIAL_DELETE", id, nil)
	return nil
}

// Receive adds quantity to stock. Invoked by the purchase-order receipt
// transition; exactly-once is enforced there by the status flip.
func (s *Service) Receive(ctx context.Context, id int64, quantity float64) (Material, error) {
	if quantity <= 0 {
		return Material{}, fmt.Errorf("%w: receive quantity must be > 0", ErrValidation)
	}
	var m Material
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		m, err = tx.AdjustStock(ctx, id, quantity)
		return err
	})
	if err != nil {
		return Material{}, err
	}
	s.recordAudit(ctx, "MATERIAL_RECEIVE", id, map[string]any{"quantity": quantity})
	return m, nil
}

// Consume removes quantity from stock.
func (s *Service) Consume(ctx context.Context, id int64, quantity float64) (Material, error) {
	if quantity <= 0 {
		return Material{}, fmt.Errorf("%w: consume quantity must be > 0", ErrValidation)
	}
	var m Material
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		m, err = tx.AdjustStock(ctx, id, -quantity)
		return err
	})
	if err != nil {
		return Material{}, err
	}
	s.recordAudit(ctx, "MATERIAL_CONSUME", id, map[string]any{"quantity": quantity})
	return m, nil
}

// ConsumeBatch removes several quantities in one transaction. Any shortfall
// rejects the whole batch; no material is partially decremented.
func (s *Service) ConsumeBatch(ctx context.Context, items []ConsumeItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: minimal 1 item", ErrValidation)
	}
	for _, item := range items {
		if item.MaterialID == 0 || item.Quantity <= 0 {
			return fmt.Errorf("%w: material and positive quantity required", ErrValidation)
		}
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, item := range items {
			if _, err := tx.AdjustStock(ctx, item.MaterialID, -item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "MATERIAL_CONSUME_BATCH", 0, map[string]any{"items": len(items)})
	return nil
}

// ListBelowReorder returns materials needing reorder. The comparison is
// strict (<); materials sitting exactly at the reorder level are excluded.
func (s *Service) ListBelowReorder(ctx context.Context) ([]Material, error) {
	return s.repo.ListBelowReorder(ctx)
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor := shared.ActorFromContext(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actor.ID, Action: action, Entity: "material", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}
