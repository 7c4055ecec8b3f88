package sales

import (
	"context"
	"fmt"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Sale, error)
	List(ctx context.Context) ([]Sale, error)
	GetFinishedGoodStock(ctx context.Context, id int64) (size string, quantity float64, err error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates sale and return processing.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateSale checks availability first so the response can name the item
// that falls short, then applies every decrement and inserts the sale in one
// transaction. A concurrent shortfall still rolls the whole sale back; the
// conditional decrement is the authoritative guard.
func (s *Service) CreateSale(ctx context.Context, input CreateSaleInput) (Sale, error) {
	if len(input.Items) == 0 {
		return Sale{}, fmt.Errorf("%w: minimal 1 item", ErrValidation)
	}
	for _, it := range input.Items {
		if it.FinishedGoodID == 0 || it.Quantity <= 0 || it.UnitPrice < 0 {
			return Sale{}, fmt.Errorf("%w: item needs finished good, positive quantity and non-negative price", ErrValidation)
		}
	}

	items := make([]SaleItem, 0, len(input.Items))
	var total float64
	for _, in := range input.Items {
		size, available, err := s.repo.GetFinishedGoodStock(ctx, in.FinishedGoodID)
		if err != nil {
			return Sale{}, err
		}
		if available < in.Quantity {
			return Sale{}, fmt.Errorf("finished good %d size %s has %.0f, requested %.0f: %w",
				in.FinishedGoodID, size, available, in.Quantity, ErrInsufficientStock)
		}
		lineTotal := in.Quantity * in.UnitPrice
		total += lineTotal
		items = append(items, SaleItem{
			FinishedGoodID: in.FinishedGoodID,
			Size:           size,
			Quantity:       in.Quantity,
			UnitPrice:      in.UnitPrice,
			TotalPrice:     lineTotal,
		})
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, it := range items {
			if err := tx.AdjustFinishedGood(ctx, it.FinishedGoodID, -it.Quantity); err != nil {
				return err
			}
		}
		var err error
		id, err = tx.InsertSale(ctx, input.CustomerID, input.PaymentMethod, total)
		if err != nil {
			return err
		}
		return tx.InsertItems(ctx, id, items)
	})
	if err != nil {
		return Sale{}, err
	}
	s.recordAudit(ctx, "SALE_CREATE", id, map[string]any{"total": total, "items": len(items)})
	return s.repo.Get(ctx, id)
}

// Get loads one sale.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	return s.repo.Get(ctx, id)
}

// List returns all sales.
func (s *Service) List(ctx context.Context) ([]Sale, error) {
	return s.repo.List(ctx)
}

// ReturnItem processes a return of one sold item. A (sale, finished good)
// pair can be returned once; the log entry, the returned-item row and the
// restock commit together.
func (s *Service) ReturnItem(ctx context.Context, input ReturnInput) (Sale, error) {
	if input.Quantity <= 0 {
		return Sale{}, fmt.Errorf("%w: return quantity must be > 0", ErrValidation)
	}
	sale, err := s.repo.Get(ctx, input.SaleID)
	if err != nil {
		return Sale{}, err
	}
	var sold *SaleItem
	for i := range sale.Items {
		if sale.Items[i].FinishedGoodID == input.FinishedGoodID {
			sold = &sale.Items[i]
			break
		}
	}
	if sold == nil {
		return Sale{}, fmt.Errorf("%w: finished good %d was not part of sale %d", ErrValidation, input.FinishedGoodID, input.SaleID)
	}
	if input.Quantity > sold.Quantity {
		return Sale{}, fmt.Errorf("%w: cannot return %.0f of %.0f sold", ErrValidation, input.Quantity, sold.Quantity)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		returned, err := tx.HasReturn(ctx, input.SaleID, input.FinishedGoodID)
		if err != nil {
			return err
		}
		if returned {
			return ErrDuplicateReturn
		}
		if err := tx.InsertReturnLog(ctx, input); err != nil {
			return err
		}
		if _, err := tx.InsertReturn(ctx, input); err != nil {
			return err
		}
		return tx.AdjustFinishedGood(ctx, input.FinishedGoodID, input.Quantity)
	})
	if err != nil {
		return Sale{}, err
	}
	s.recordAudit(ctx, "SALE_RETURN", input.SaleID, map[string]any{"finished_good_id": input.FinishedGoodID, "quantity": input.Quantity})
	return s.repo.Get(ctx, input.SaleID)
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor := shared.ActorFromContext(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actor.ID, Action: action, Entity: "sale", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}
