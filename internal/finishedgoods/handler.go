package finishedgoods

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stitchline-erp/stitchline-erp/internal/platform/httpx"
	"github.com/stitchline-erp/stitchline-erp/internal/rbac"
)

// Handler wires HTTP endpoints for finished goods stock.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler constructs the finished goods handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), rbac: rbacMW}
}

// MountRoutes registers finished goods routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpFinishedWrite))
		r.Post("/produce", h.handleProduce)
		r.Post("/{id}/restock", h.handleRestock)
	})
}

type produceRequest struct {
	FinishedProductID int64   `json:"finishedProductId" validate:"required"`
	Size              string  `json:"size" validate:"required"`
	Quantity          float64 `json:"quantity" validate:"required,gt=0"`
	Cost              float64 `json:"cost" validate:"gte=0"`
}

type quantityRequest struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

type goodResponse struct {
	ID                int64   `json:"id"`
	FinishedProductID int64   `json:"finishedProductId"`
	Size              string  `json:"size"`
	Quantity          float64 `json:"quantity"`
	Cost              float64 `json:"cost"`
	Category          string  `json:"category,omitempty"`
	SubCategory       string  `json:"subCategory,omitempty"`
}

func toResponse(g FinishedGood) goodResponse {
	return goodResponse{
		ID:                g.ID,
		FinishedProductID: g.FinishedProductID,
		Size:              g.Size,
		Quantity:          g.Quantity,
		Cost:              g.Cost,
		Category:          g.Category,
		SubCategory:       g.SubCategory,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list finished goods", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]goodResponse, 0, len(list))
	for _, g := range list {
		out = append(out, toResponse(g))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	g, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(g))
}

func (h *Handler) handleProduce(w http.ResponseWriter, r *http.Request) {
	var req produceRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	g, err := h.service.Produce(r.Context(), ProduceInput{
		FinishedProductID: req.FinishedProductID,
		Size:              req.Size,
		Quantity:          req.Quantity,
		Cost:              req.Cost,
	})
	if err != nil {
		h.logger.Error("produce finished goods", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(g))
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req quantityRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	g, err := h.service.Restock(r.Context(), id, req.Quantity)
	if err != nil {
		h.logger.Error("restock finished goods", slog.Int64("finished_good_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(g))
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
