package materials

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

// Handler wires HTTP endpoints for the materials module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler constructs the materials handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), rbac: rbacMW}
}

// MountRoutes registers material routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/reorder", h.handleReorder)
	r.Get("/{id}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpMaterialWrite))
		r.Post("/", h.handleCreate)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpMaterialAdjust))
		r.Post("/{id}/receive", h.handleReceive)
		r.Post("/{id}/consume", h.handleConsume)
		r.Post("/consume-batch", h.handleConsumeBatch)
	})
}

type materialRequest struct {
	Name            string  `json:"name" validate:"required"`
	Unit            string  `json:"unit" validate:"required"`
	QuantityInStock float64 `json:"quantityInStock" validate:"gte=0"`
	ReorderLevel    float64 `json:"reorderLevel" validate:"gte=0"`
}

type quantityRequest struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

type consumeBatchRequest struct {
	Items []struct {
		MaterialID int64   `json:"materialId" validate:"required"`
		Quantity   float64 `json:"quantity" validate:"required,gt=0"`
	} `json:"items" validate:"required,min=1,dive"`
}

type materialResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Unit            string  `json:"unit"`
	QuantityInStock float64 `json:"quantityInStock"`
	ReorderLevel    float64 `json:"reorderLevel"`
	BelowReorder    bool    `json:"belowReorder"`
}

func toResponse(m Material) materialResponse {
	return materialResponse{
		ID:              m.ID,
		Name:            m.Name,
		Unit:            m.Unit,
		QuantityInStock: m.QuantityInStock,
		ReorderLevel:    m.ReorderLevel,
		BelowReorder:    m.BelowReorder(),
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list materials", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]materialResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toResponse(m))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListBelowReorder(r.Context())
	if err != nil {
		h.logger.Error("reorder report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]materialResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toResponse(m))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(m))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.Create(r.Context(), CreateInput{
		Name:            req.Name,
		Unit:            req.Unit,
		QuantityInStock: req.QuantityInStock,
		ReorderLevel:    req.ReorderLevel,
	})
	if err != nil {
		h.logger.Error("create material", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(m))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req materialRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:         req.Name,
		Unit:         req.Unit,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(m))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReceive(w http.ResponseWriter, r *http.Request) {
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
	m, err := h.service.Receive(r.Context(), id, req.Quantity)
	if err != nil {
		h.logger.Error("receive material", slog.Int64("material_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(m))
}

func (h *Handler) handleConsume(w http.ResponseWriter, r *http.Request) {
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
	m, err := h.service.Consume(r.Context(), id, req.Quantity)
	if err != nil {
		h.logger.Error("consume material", slog.Int64("material_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(m))
}

func (h *Handler) handleConsumeBatch(w http.ResponseWriter, r *http.Request) {
	var req consumeBatchRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	items := make([]ConsumeItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, ConsumeItem{MaterialID: item.MaterialID, Quantity: item.Quantity})
	}
	if err := h.service.ConsumeBatch(r.Context(), items); err != nil {
		h.logger.Error("consume batch", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
