package expenses

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

// Handler wires HTTP endpoints for expenses.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler constructs the expenses handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), rbac: rbacMW}
}

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpExpenseWrite))
		r.Post("/", h.handleCreate)
	})
}

type expenseRequest struct {
	Title       string    `json:"title" validate:"required"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	IncurredOn  time.Time `json:"incurredOn" validate:"required"`
	Description string    `json:"description"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := now.AddDate(-1, 0, 0)
	to := now
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid from date", ErrValidation))
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid to date", ErrValidation))
			return
		}
		to = parsed
	}
	list, err := h.service.List(r.Context(), from, to)
	if err != nil {
		h.logger.Error("list expenses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", ErrValidation))
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json body", ErrValidation))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", ErrValidation, err))
		return
	}
	e, err := h.service.Create(r.Context(), CreateInput(req))
	if err != nil {
		h.logger.Error("create expense", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}
