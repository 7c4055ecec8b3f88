package procurement

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stitchline-erp/stitchline-erp/internal/platform/httpx"
	"github.com/stitchline-erp/stitchline-erp/internal/rbac"
)

// Handler wires HTTP endpoints for purchase orders.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler constructs the procurement handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), rbac: rbacMW}
}

// MountRoutes registers purchase order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpPurchaseWrite))
		r.Post("/", h.handleCreate)
		r.Put("/{id}", h.handleUpdate)
		r.Post("/{id}/order", h.handleMarkOrdered)
		r.Post("/{id}/cancel", h.handleCancel)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpPurchaseReceive))
		r.Post("/{id}/receive", h.handleMarkReceived)
	})
}

type lineRequest struct {
	MaterialID int64   `json:"materialId" validate:"required"`
	Quantity   float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice  float64 `json:"unitPrice" validate:"gte=0"`
	ItemType   string  `json:"itemType"`
}

type orderRequest struct {
	VendorID int64         `json:"vendorId" validate:"required"`
	Lines    []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

type lineResponse struct {
	ID         int64   `json:"id"`
	MaterialID int64   `json:"materialId"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	ItemType   string  `json:"itemType,omitempty"`
}

type orderResponse struct {
	ID          int64          `json:"id"`
	VendorID    int64          `json:"vendorId"`
	Status      string         `json:"status"`
	TotalAmount float64        `json:"totalAmount"`
	Lines       []lineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func toResponse(po PurchaseOrder) orderResponse {
	out := orderResponse{
		ID:          po.ID,
		VendorID:    po.VendorID,
		Status:      string(po.Status),
		TotalAmount: po.TotalAmount,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
	for _, l := range po.Lines {
		out.Lines = append(out.Lines, lineResponse{
			ID:         l.ID,
			MaterialID: l.MaterialID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.TotalPrice,
			ItemType:   l.ItemType,
		})
	}
	return out
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list purchase orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(list))
	for _, po := range list {
		out = append(out, toResponse(po))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(po))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.Create(r.Context(), CreateInput{VendorID: req.VendorID, Lines: toLineInputs(req.Lines)})
	if err != nil {
		h.logger.Error("create purchase order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(po))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req orderRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.Update(r.Context(), id, UpdateInput{VendorID: req.VendorID, Lines: toLineInputs(req.Lines)})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(po))
}

func (h *Handler) handleMarkOrdered(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "mark ordered", h.service.MarkOrdered)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "cancel purchase order", h.service.Cancel)
}

func (h *Handler) handleMarkReceived(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.MarkReceived(r.Context(), id, r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.logger.Error("receive purchase order", slog.Int64("purchase_order_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(po))
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, id int64) (PurchaseOrder, error)) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := fn(r.Context(), id)
	if err != nil {
		h.logger.Error(op, slog.Int64("purchase_order_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(po))
}

func toLineInputs(lines []lineRequest) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineInput{MaterialID: l.MaterialID, Quantity: l.Quantity, UnitPrice: l.UnitPrice, ItemType: l.ItemType})
	}
	return out
}

func (h *Handler) decodeValid(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return fmt.Errorf("%w: invalid json body", ErrValidation)
	}
	if err := h.validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", ErrValidation)
	}
	return id, nil
}
