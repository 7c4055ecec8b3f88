package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (PurchaseOrder, error)
	List(ctx context.Context) ([]PurchaseOrder, error)
}

// IdempotencyPort guards repeated receipt requests carrying the same key.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates the purchase order lifecycle.
type Service struct {
	repo  RepositoryPort
	idem  IdempotencyPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, idem IdempotencyPort, audit AuditPort) *Service {
	return &Service{repo: repo, idem: idem, audit: audit}
}

// Create registers a pending purchase order. Line totals and the order total
// are derived from quantity and unit price.
func (s *Service) Create(ctx context.Context, input CreateInput) (PurchaseOrder, error) {
	lines, total, err := buildLines(input.VendorID, input.Lines)
	if err != nil {
		return PurchaseOrder{}, err
	}
	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		id, err = tx.InsertOrder(ctx, input.VendorID, total)
		if err != nil {
			return err
		}
		return tx.InsertLines(ctx, id, lines)
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "PURCHASE_CREATE", id, map[string]any{"vendor_id": input.VendorID, "total": total})
	return s.repo.Get(ctx, id)
}

// Get loads one order with lines.
func (s *Service) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]PurchaseOrder, error) {
	return s.repo.List(ctx)
}

// Update replaces vendor and lines. Only pending orders are editable.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (PurchaseOrder, error) {
	lines, total, err := buildLines(input.VendorID, input.Lines)
	if err != nil {
		return PurchaseOrder{}, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		replaced, err := tx.ReplaceOrder(ctx, id, input.VendorID, total)
		if err != nil {
			return err
		}
		if !replaced {
			if _, err := tx.GetStatus(ctx, id); err != nil {
				return err
			}
			return fmt.Errorf("only pending orders are editable: %w", ErrInvalidState)
		}
		if err := tx.DeleteLines(ctx, id); err != nil {
			return err
		}
		return tx.InsertLines(ctx, id, lines)
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "PURCHASE_UPDATE", id, map[string]any{"total": total})
	return s.repo.Get(ctx, id)
}

// MarkOrdered moves a pending order to ordered.
func (s *Service) MarkOrdered(ctx context.Context, id int64) (PurchaseOrder, error) {
	err := s.transition(ctx, id, StatusOrdered, StatusOrdered, StatusReceived, StatusCancelled)
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "PURCHASE_ORDERED", id, nil)
	return s.repo.Get(ctx, id)
}

// Cancel voids a pending or ordered purchase order. Received orders stay.
func (s *Service) Cancel(ctx context.Context, id int64) (PurchaseOrder, error) {
	err := s.transition(ctx, id, StatusCancelled, StatusReceived, StatusCancelled)
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "PURCHASE_CANCEL", id, nil)
	return s.repo.Get(ctx, id)
}

// MarkReceived posts the receipt: the status flip and every per-line material
// increment commit together. The flip is conditional, so a replayed request
// finds zero rows and becomes a no-op instead of double-incrementing stock.
// An optional idempotency key is a second guard for retried deliveries.
func (s *Service) MarkReceived(ctx context.Context, id int64, idempotencyKey string) (PurchaseOrder, error) {
	if idempotencyKey != "" && s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, idempotencyKey, "procurement"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return s.repo.Get(ctx, id)
			}
			return PurchaseOrder{}, err
		}
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		flipped, err := tx.TransitionStatus(ctx, id, StatusReceived, StatusReceived, StatusCancelled)
		if err != nil {
			return err
		}
		if !flipped {
			status, err := tx.GetStatus(ctx, id)
			if err != nil {
				return err
			}
			if status == StatusReceived {
				return nil
			}
			return fmt.Errorf("cancelled order cannot be received: %w", ErrInvalidState)
		}
		lines, err := tx.GetLines(ctx, id)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if err := tx.ReceiveMaterial(ctx, line.MaterialID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if idempotencyKey != "" && s.idem != nil {
			_ = s.idem.Delete(ctx, idempotencyKey)
		}
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "PURCHASE_RECEIVED", id, nil)
	return s.repo.Get(ctx, id)
}

// transition flips to the target status unless the order already sits in one
// of the excluded states, which is reported as an invalid transition.
func (s *Service) transition(ctx context.Context, id int64, to Status, notFrom ...Status) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		flipped, err := tx.TransitionStatus(ctx, id, to, notFrom...)
		if err != nil {
			return err
		}
		if flipped {
			return nil
		}
		status, err := tx.GetStatus(ctx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("cannot move %s order to %s: %w", status, to, ErrInvalidState)
	})
}

func buildLines(vendorID int64, inputs []LineInput) ([]Line, float64, error) {
	if vendorID == 0 {
		return nil, 0, fmt.Errorf("%w: vendor required", ErrValidation)
	}
	if len(inputs) == 0 {
		return nil, 0, fmt.Errorf("%w: minimal 1 line", ErrValidation)
	}
	lines := make([]Line, 0, len(inputs))
	var total float64
	for _, in := range inputs {
		if in.MaterialID == 0 || in.Quantity <= 0 || in.UnitPrice < 0 {
			return nil, 0, fmt.Errorf("%w: line needs material, positive quantity and non-negative price", ErrValidation)
		}
		lineTotal := in.Quantity * in.UnitPrice
		total += lineTotal
		lines = append(lines, Line{
			MaterialID: in.MaterialID,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TotalPrice: lineTotal,
			ItemType:   in.ItemType,
		})
	}
	return lines, total, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor := shared.ActorFromContext(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actor.ID, Action: action, Entity: "purchase_order", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}
