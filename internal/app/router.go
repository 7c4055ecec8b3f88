package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stitchline-erp/stitchline-erp/internal/audit"
	"github.com/stitchline-erp/stitchline-erp/internal/expenses"
	"github.com/stitchline-erp/stitchline-erp/internal/finishedgoods"
	"github.com/stitchline-erp/stitchline-erp/internal/masterdata"
	"github.com/stitchline-erp/stitchline-erp/internal/materials"
	"github.com/stitchline-erp/stitchline-erp/internal/observability"
	"github.com/stitchline-erp/stitchline-erp/internal/procurement"
	"github.com/stitchline-erp/stitchline-erp/internal/production"
	"github.com/stitchline-erp/stitchline-erp/internal/reports"
	"github.com/stitchline-erp/stitchline-erp/internal/sales"
	"github.com/stitchline-erp/stitchline-erp/internal/workforce"
	"github.com/stitchline-erp/stitchline-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	MaterialsHandler     *materials.Handler
	ProcurementHandler   *procurement.Handler
	ProductionHandler    *production.Handler
	FinishedGoodsHandler *finishedgoods.Handler
	SalesHandler         *sales.Handler
	ReportsHandler       *reports.Handler
	MasterDataHandler    *masterdata.Handler
	WorkforceHandler     *workforce.Handler
	ExpensesHandler      *expenses.Handler
	AuditHandler         *audit.Handler

	JobsHandler *jobs.Handler
	Metrics     *observability.Metrics
}

// NewRouter constructs the chi.Router with Stitchline defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/materials", params.MaterialsHandler.MountRoutes)
	r.Route("/procurement", params.ProcurementHandler.MountRoutes)
	r.Route("/production", params.ProductionHandler.MountRoutes)
	r.Route("/finished-goods", params.FinishedGoodsHandler.MountRoutes)
	r.Route("/sales", params.SalesHandler.MountRoutes)
	r.Route("/reports", params.ReportsHandler.MountRoutes)
	r.Route("/masterdata", params.MasterDataHandler.MountRoutes)
	r.Route("/workforce", params.WorkforceHandler.MountRoutes)
	r.Route("/expenses", params.ExpensesHandler.MountRoutes)
	if params.AuditHandler != nil {
		r.Route("/audit", params.AuditHandler.MountRoutes)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
