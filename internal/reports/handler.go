package reports

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stitchline-erp/stitchline-erp/internal/platform/httpx"
)

// Handler wires the read-only report endpoints. Exports are rate limited
// separately because they bypass the cache.
type Handler struct {
	logger  *slog.Logger
	service *Service
	printer *message.Printer
}

// NewHandler constructs the reports handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, printer: message.NewPrinter(language.English)}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/material-cost", h.handleMaterialCost)
	r.Get("/skill-bonus", h.handleSkillBonus)
	r.Get("/annual", h.handleAnnual)
	r.Get("/reorder", h.handleReorder)
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Get("/material-cost/export.csv", h.handleMaterialCostCSV)
		r.Get("/skill-bonus/export.csv", h.handleSkillBonusCSV)
	})
}

func (h *Handler) handleMaterialCost(w http.ResponseWriter, r *http.Request) {
	rng, materialID, err := parseRangeAndID(r, "materialId")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.MaterialCost(r.Context(), rng, materialID)
	if err != nil {
		h.logger.Error("material cost report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handleSkillBonus(w http.ResponseWriter, r *http.Request) {
	rng, employeeID, err := parseRangeAndID(r, "employeeId")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.SkillBonus(r.Context(), rng, employeeID)
	if err != nil {
		h.logger.Error("skill bonus report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handleAnnual(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid year", ErrValidation))
		return
	}
	summary, err := h.service.Annual(r.Context(), year)
	if err != nil {
		h.logger.Error("annual report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Reorder(r.Context())
	if err != nil {
		h.logger.Error("reorder report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handleMaterialCostCSV(w http.ResponseWriter, r *http.Request) {
	rng, materialID, err := parseRangeAndID(r, "materialId")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.MaterialCost(r.Context(), rng, materialID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filename := fmt.Sprintf("material-cost-%s-%s.csv", rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"material_id", "material", "unit", "total_quantity", "total_cost", "average_cost_per_unit"})
	for _, row := range rows {
		avg := ""
		if row.AverageCostPerUnit != nil {
			avg = h.printer.Sprintf("%.2f", *row.AverageCostPerUnit)
		}
		_ = cw.Write([]string{
			strconv.FormatInt(row.MaterialID, 10),
			row.MaterialName,
			row.Unit,
			h.printer.Sprintf("%.2f", row.TotalQuantity),
			h.printer.Sprintf("%.2f", row.TotalCost),
			avg,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("stream material cost csv", slog.Any("error", err))
	}
}

func (h *Handler) handleSkillBonusCSV(w http.ResponseWriter, r *http.Request) {
	rng, employeeID, err := parseRangeAndID(r, "employeeId")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.SkillBonus(r.Context(), rng, employeeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filename := fmt.Sprintf("skill-bonus-%s-%s.csv", rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"employee_id", "employee", "date", "stage", "units_completed", "stage_per_unit_cost", "stage_cost", "total_bonus"})
	for _, row := range rows {
		for _, entry := range row.Entries {
			_ = cw.Write([]string{
				strconv.FormatInt(row.EmployeeID, 10),
				row.EmployeeName,
				entry.Date.Format("2006-01-02"),
				entry.Stage,
				strconv.FormatInt(entry.UnitsCompleted, 10),
				h.printer.Sprintf("%.2f", entry.StagePerUnitCost),
				h.printer.Sprintf("%.2f", entry.StageCost),
				h.printer.Sprintf("%.2f", row.TotalBonus),
			})
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("stream skill bonus csv", slog.Any("error", err))
	}
}

// parseRangeAndID reads from/to plus one optional numeric filter parameter.
func parseRangeAndID(r *http.Request, idParam string) (Range, int64, error) {
	q := r.URL.Query()
	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		return Range{}, 0, fmt.Errorf("%w: invalid from date", ErrValidation)
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		return Range{}, 0, fmt.Errorf("%w: invalid to date", ErrValidation)
	}
	rng := Range{From: from, To: to}
	if !rng.Valid() {
		return Range{}, 0, fmt.Errorf("%w: to before from", ErrValidation)
	}
	var id int64
	if raw := q.Get(idParam); raw != "" {
		id, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return Range{}, 0, fmt.Errorf("%w: invalid %s", ErrValidation, idParam)
		}
	}
	return rng, id, nil
}
