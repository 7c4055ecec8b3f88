package workforce

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

// Handler wires HTTP endpoints for workforce records.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler constructs the workforce handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), rbac: rbacMW}
}

// MountRoutes registers employee, salary, attendance and production log
// routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/employees", h.handleListEmployees)
	r.Get("/employees/{id}", h.handleGetEmployee)
	r.Get("/employees/{id}/salaries", h.handleListSalaries)
	r.Get("/employees/{id}/attendance", h.handleListAttendance)
	r.Get("/production-logs", h.handleListProductionLogs)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.OpWorkforceWrite))
		r.Post("/employees", h.handleCreateEmployee)
		r.Put("/employees/{id}", h.handleUpdateEmployee)
		r.Post("/salaries", h.handleCreateSalary)
		r.Post("/attendance", h.handleCreateAttendance)
		r.Post("/production-logs", h.handleCreateProductionLog)
	})
}

type employeeRequest struct {
	Name        string    `json:"name" validate:"required"`
	Phone       string    `json:"phone"`
	Designation string    `json:"designation"`
	JoinedAt    time.Time `json:"joinedAt"`
}

type salaryRequest struct {
	EmployeeID    int64     `json:"employeeId" validate:"required"`
	BaseSalary    float64   `json:"baseSalary" validate:"gte=0"`
	OvertimeRate  float64   `json:"overtimeRate" validate:"gte=0"`
	EffectiveFrom time.Time `json:"effectiveFrom" validate:"required"`
}

type attendanceRequest struct {
	EmployeeID    int64     `json:"employeeId" validate:"required"`
	Date          time.Time `json:"date" validate:"required"`
	Present       bool      `json:"present"`
	OvertimeHours float64   `json:"overtimeHours" validate:"gte=0"`
}

type productionLogRequest struct {
	EmployeeID       int64     `json:"employeeId" validate:"required"`
	Date             time.Time `json:"date" validate:"required"`
	Stage            string    `json:"stage" validate:"required"`
	UnitsCompleted   int64     `json:"unitsCompleted" validate:"required,gt=0"`
	StagePerUnitCost float64   `json:"stagePerUnitCost" validate:"gte=0"`
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListEmployees(r.Context())
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	e, err := h.service.GetEmployee(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	e, err := h.service.CreateEmployee(r.Context(), EmployeeInput(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req employeeRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	e, err := h.service.UpdateEmployee(r.Context(), id, EmployeeInput(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) handleCreateSalary(w http.ResponseWriter, r *http.Request) {
	var req salaryRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	s, err := h.service.CreateSalary(r.Context(), SalaryInput(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

func (h *Handler) handleListSalaries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.ListSalaries(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreateAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	a, err := h.service.CreateAttendance(r.Context(), AttendanceInput(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.ListAttendance(r.Context(), id, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreateProductionLog(w http.ResponseWriter, r *http.Request) {
	var req productionLogRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.CreateProductionLog(r.Context(), ProductionLogInput(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) handleListProductionLogs(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var employeeID int64
	if raw := r.URL.Query().Get("employeeId"); raw != "" {
		employeeID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid employeeId", ErrValidation))
			return
		}
	}
	list, err := h.service.ListProductionLogs(r.Context(), employeeID, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// dateRange parses inclusive from/to query parameters, defaulting to the
// last 30 days.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid from date", ErrValidation)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid to date", ErrValidation)
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to before from", ErrValidation)
	}
	return from, to, nil
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
