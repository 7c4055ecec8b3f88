package finishedgoods

import (
	"context"
	"fmt"
	"strings"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Upsert(ctx context.Context, input ProduceInput) (FinishedGood, error)
	Get(ctx context.Context, id int64) (FinishedGood, error)
	List(ctx context.Context) ([]FinishedGood, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates finished goods stock operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Produce merges stock from production into the (product, size) row.
func (s *Service) Produce(ctx context.Context, input ProduceInput) (FinishedGood, error) {
	if input.FinishedProductID == 0 {
		return FinishedGood{}, fmt.Errorf("%w: product required", ErrValidation)
	}
	if strings.TrimSpace(input.Size) == "" {
		return FinishedGood{}, fmt.Errorf("%w: size required", ErrValidation)
	}
	if input.Quantity <= 0 {
		return FinishedGood{}, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	if input.Cost < 0 {
		return FinishedGood{}, fmt.Errorf("%w: cost must be >= 0", ErrValidation)
	}
	g, err := s.repo.Upsert(ctx, input)
	if err != nil {
		return FinishedGood{}, err
	}
	s.recordAudit(ctx, "FINISHED_GOODS_PRODUCE", g.ID, map[string]any{"size": g.Size, "quantity": input.Quantity})
	return g, nil
}

// Get loads one stock row.
func (s *Service) Get(ctx context.Context, id int64) (FinishedGood, error) {
	return s.repo.Get(ctx, id)
}

// List returns all stock rows.
func (s *Service) List(ctx context.Context) ([]FinishedGood, error) {
	return s.repo.List(ctx)
}

// Sell removes quantity from stock.
func (s *Service) Sell(ctx context.Context, id int64, quantity float64) (FinishedGood, error) {
	g, err := s.adjust(ctx, id, quantity, -1)
	if err != nil {
		return FinishedGood{}, err
	}
	s.recordAudit(ctx, "FINISHED_GOODS_SELL", id, map[string]any{"quantity": quantity})
	return g, nil
}

// Restock adds quantity back, typically on a return.
func (s *Service) Restock(ctx context.Context, id int64, quantity float64) (FinishedGood, error) {
	g, err := s.adjust(ctx, id, quantity, 1)
	if err != nil {
		return FinishedGood{}, err
	}
	s.recordAudit(ctx, "FINISHED_GOODS_RESTOCK", id, map[string]any{"quantity": quantity})
	return g, nil
}

func (s *Service) adjust(ctx context.Context, id int64, quantity, sign float64) (FinishedGood, error) {
	if quantity <= 0 {
		return FinishedGood{}, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	var g FinishedGood
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		g, err = tx.AdjustQuantity(ctx, id, sign*quantity)
		return err
	})
	if err != nil {
		return FinishedGood{}, err
	}
	return g, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor := shared.ActorFromContext(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actor.ID, Action: action, Entity: "finished_good", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}
