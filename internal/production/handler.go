package production

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

// Handler wires HTTP endpoints for the production module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler constructs the production handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), rbac: rbacMW}
}

// MountRoutes registers processing and finished product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleListProcessing)
	r.Get("/{id}", h.handleGetProcessing)
	r.Get("/finished", h.handleListFinished)
	r.Get("/finished/{id}", h.handleGetFinished)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpProcessingWrite))
		r.Post("/", h.handleCreateProcessing)
		r.Post("/{id}/complete", h.handleComplete)
		r.Post("/{id}/deactivate", h.handleDeactivate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpFinishedWrite))
		r.Post("/finished", h.handleCreateFinished)
	})
}

type processingRequest struct {
	MaterialID       int64     `json:"materialId" validate:"required"`
	ProcessingCode   string    `json:"processingCode" validate:"required"`
	CuttingStaffID   int64     `json:"cuttingStaffId"`
	CuttingCost      float64   `json:"cuttingCost" validate:"gte=0"`
	EmbroideryStaff  int64     `json:"embroideryStaffId"`
	EmbroideryCost   float64   `json:"embroideryCost" validate:"gte=0"`
	PackagingStaffID int64     `json:"packagingStaffId"`
	PackagingCost    float64   `json:"packagingCost" validate:"gte=0"`
	OtherCost        float64   `json:"otherCost" validate:"gte=0"`
	StartDate        time.Time `json:"startDate" validate:"required"`
}

type sizeRequest struct {
	Size     string `json:"size" validate:"required"`
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
}

type finishedRequest struct {
	ProcessingProductID   int64         `json:"processingProductId" validate:"required"`
	FinishedCode          string        `json:"finishedCode" validate:"required"`
	ProductType           string        `json:"productType"`
	Sizes                 []sizeRequest `json:"sizes" validate:"required,min=1,dive"`
	Price                 float64       `json:"price" validate:"gte=0"`
	ManpowerChargePerUnit float64       `json:"manpowerChargePerUnit" validate:"gte=0"`
	Category              string        `json:"category"`
	SubCategory           string        `json:"subCategory"`
}

type processingResponse struct {
	ID               int64      `json:"id"`
	MaterialID       int64      `json:"materialId"`
	ProcessingCode   string     `json:"processingCode"`
	CuttingStaffID   int64      `json:"cuttingStaffId,omitempty"`
	CuttingCost      float64    `json:"cuttingCost"`
	EmbroideryStaff  int64      `json:"embroideryStaffId,omitempty"`
	EmbroideryCost   float64    `json:"embroideryCost"`
	PackagingStaffID int64      `json:"packagingStaffId,omitempty"`
	PackagingCost    float64    `json:"packagingCost"`
	OtherCost        float64    `json:"otherCost"`
	TotalCost        float64    `json:"totalCost"`
	StartDate        time.Time  `json:"startDate"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	Status           string     `json:"status"`
}

type sizeResponse struct {
	Size     string `json:"size"`
	Quantity int64  `json:"quantity"`
}

type finishedResponse struct {
	ID                    int64          `json:"id"`
	ProcessingProductID   int64          `json:"processingProductId"`
	FinishedCode          string         `json:"finishedCode"`
	ProductType           string         `json:"productType,omitempty"`
	Sizes                 []sizeResponse `json:"sizes,omitempty"`
	Price                 float64        `json:"price"`
	ManpowerChargePerUnit float64        `json:"manpowerChargePerUnit"`
	Category              string         `json:"category,omitempty"`
	SubCategory           string         `json:"subCategory,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`
}

func toProcessingResponse(p ProcessingProduct) processingResponse {
	return processingResponse{
		ID:               p.ID,
		MaterialID:       p.MaterialID,
		ProcessingCode:   p.ProcessingCode,
		CuttingStaffID:   p.CuttingStaffID,
		CuttingCost:      p.CuttingCost,
		EmbroideryStaff:  p.EmbroideryStaffID,
		EmbroideryCost:   p.EmbroideryCost,
		PackagingStaffID: p.PackagingStaffID,
		PackagingCost:    p.PackagingCost,
		OtherCost:        p.OtherCost,
		TotalCost:        p.TotalCost(),
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		Status:           string(p.Status),
	}
}

func toFinishedResponse(f FinishedProduct) finishedResponse {
	out := finishedResponse{
		ID:                    f.ID,
		ProcessingProductID:   f.ProcessingProductID,
		FinishedCode:          f.FinishedCode,
		ProductType:           f.ProductType,
		Price:                 f.Price,
		ManpowerChargePerUnit: f.ManpowerChargePerUnit,
		Category:              f.Category,
		SubCategory:           f.SubCategory,
		CreatedAt:             f.CreatedAt,
	}
	for _, sq := range f.Sizes {
		out.Sizes = append(out.Sizes, sizeResponse{Size: sq.Size, Quantity: sq.Quantity})
	}
	return out
}

func (h *Handler) handleListProcessing(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListProcessing(r.Context(), Status(r.URL.Query().Get("status")))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]processingResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProcessingResponse(p))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetProcessing(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.GetProcessing(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProcessingResponse(p))
}

func (h *Handler) handleCreateProcessing(w http.ResponseWriter, r *http.Request) {
	var req processingRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.CreateProcessing(r.Context(), CreateProcessingInput{
		MaterialID:        req.MaterialID,
		ProcessingCode:    req.ProcessingCode,
		CuttingStaffID:    req.CuttingStaffID,
		CuttingCost:       req.CuttingCost,
		EmbroideryStaffID: req.EmbroideryStaff,
		EmbroideryCost:    req.EmbroideryCost,
		PackagingStaffID:  req.PackagingStaffID,
		PackagingCost:     req.PackagingCost,
		OtherCost:         req.OtherCost,
		StartDate:         req.StartDate,
	})
	if err != nil {
		h.logger.Error("create processing", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toProcessingResponse(p))
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "complete processing", h.service.Complete)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "deactivate processing", h.service.Deactivate)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, id int64) (ProcessingProduct, error)) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := fn(r.Context(), id)
	if err != nil {
		h.logger.Error(op, slog.Int64("processing_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProcessingResponse(p))
}

func (h *Handler) handleCreateFinished(w http.ResponseWriter, r *http.Request) {
	var req finishedRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sizes := make([]SizeQuantity, 0, len(req.Sizes))
	for _, s := range req.Sizes {
		sizes = append(sizes, SizeQuantity{Size: s.Size, Quantity: s.Quantity})
	}
	f, err := h.service.CreateFinished(r.Context(), CreateFinishedInput{
		ProcessingProductID:   req.ProcessingProductID,
		FinishedCode:          req.FinishedCode,
		ProductType:           req.ProductType,
		Sizes:                 sizes,
		Price:                 req.Price,
		ManpowerChargePerUnit: req.ManpowerChargePerUnit,
		Category:              req.Category,
		SubCategory:           req.SubCategory,
	})
	if err != nil {
		h.logger.Error("create finished product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toFinishedResponse(f))
}

func (h *Handler) handleGetFinished(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	f, err := h.service.GetFinished(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toFinishedResponse(f))
}

func (h *Handler) handleListFinished(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListFinished(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]finishedResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFinishedResponse(f))
	}
	httpx.JSON(w, http.StatusOK, out)
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
