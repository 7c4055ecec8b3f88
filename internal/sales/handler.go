package sales

import (
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

// Handler wires HTTP endpoints for sales.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler constructs the sales handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), rbac: rbacMW}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpSaleWrite))
		r.Post("/", h.handleCreate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpSaleReturn))
		r.Post("/{id}/returns", h.handleReturn)
	})
}

type saleItemRequest struct {
	FinishedGoodID int64   `json:"finishedGoodId" validate:"required"`
	Quantity       float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice      float64 `json:"unitPrice" validate:"gte=0"`
}

type saleRequest struct {
	CustomerID    *int64            `json:"customerId"`
	PaymentMethod string            `json:"paymentMethod" validate:"required"`
	Items         []saleItemRequest `json:"items" validate:"required,min=1,dive"`
}

type returnRequest struct {
	FinishedGoodID int64   `json:"finishedGoodId" validate:"required"`
	Quantity       float64 `json:"quantity" validate:"required,gt=0"`
	Reason         string  `json:"reason"`
}

type saleItemResponse struct {
	ID             int64   `json:"id"`
	FinishedGoodID int64   `json:"finishedGoodId"`
	Size           string  `json:"size"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	TotalPrice     float64 `json:"totalPrice"`
}

type returnResponse struct {
	ID             int64     `json:"id"`
	FinishedGoodID int64     `json:"finishedGoodId"`
	Quantity       float64   `json:"quantity"`
	Reason         string    `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type saleResponse struct {
	ID            int64              `json:"id"`
	CustomerID    *int64             `json:"customerId,omitempty"`
	PaymentMethod string             `json:"paymentMethod"`
	TotalAmount   float64            `json:"totalAmount"`
	Items         []saleItemResponse `json:"items,omitempty"`
	Returns       []returnResponse   `json:"returns,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

func toResponse(s Sale) saleResponse {
	out := saleResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		PaymentMethod: s.PaymentMethod,
		TotalAmount:   s.TotalAmount,
		CreatedAt:     s.CreatedAt,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, saleItemResponse{
			ID:             it.ID,
			FinishedGoodID: it.FinishedGoodID,
			Size:           it.Size,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			TotalPrice:     it.TotalPrice,
		})
	}
	for _, ret := range s.Returns {
		out.Returns = append(out.Returns, returnResponse{
			ID:             ret.ID,
			FinishedGoodID: ret.FinishedGoodID,
			Quantity:       ret.Quantity,
			Reason:         ret.Reason,
			CreatedAt:      ret.CreatedAt,
		})
	}
	return out
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]saleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toResponse(s))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	s, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(s))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	items := make([]SaleItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, SaleItemInput{FinishedGoodID: it.FinishedGoodID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	s, err := h.service.CreateSale(r.Context(), CreateSaleInput{
		CustomerID:    req.CustomerID,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	})
	if err != nil {
		h.logger.Error("create sale", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(s))
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req returnRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	s, err := h.service.ReturnItem(r.Context(), ReturnInput{
		SaleID:         id,
		FinishedGoodID: req.FinishedGoodID,
		Quantity:       req.Quantity,
		Reason:         req.Reason,
	})
	if err != nil {
		h.logger.Error("return sale item", slog.Int64("sale_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(s))
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
