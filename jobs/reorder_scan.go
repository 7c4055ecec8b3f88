package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/stitchline-erp/stitchline-erp/internal/jobs"
	"github.com/stitchline-erp/stitchline-erp/internal/materials"
	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// MaterialLister returns materials sitting below their reorder level.
type MaterialLister interface {
	ListBelowReorder(ctx context.Context) ([]materials.Material, error)
}

// AuditPort records reorder alerts in the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ReorderScanJob walks material stock nightly and records an alert for every
// material strictly below its reorder level.
type ReorderScanJob struct {
	lister  MaterialLister
	audit   AuditPort
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewReorderScanJob constructs the job.
func NewReorderScanJob(lister MaterialLister, audit AuditPort, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReorderScanJob {
	return &ReorderScanJob{lister: lister, audit: audit, logger: logger, metrics: metrics}
}

// Handle processes TaskReorderScan tasks.
func (j *ReorderScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReorderScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.metrics.Track("reorder_scan")

	runID := uuid.NewString()
	flagged, err := j.lister.ListBelowReorder(ctx)
	if err != nil {
		return tracker.End(err)
	}
	for _, m := range flagged {
		meta := map[string]any{
			"run_id":            runID,
			"name":              m.Name,
			"quantity_in_stock": m.QuantityInStock,
			"reorder_level":     m.ReorderLevel,
		}
		if err := j.audit.Record(ctx, shared.AuditLog{
			Action:   "material.reorder_alert",
			Entity:   "material",
			EntityID: strconv.FormatInt(m.ID, 10),
			Meta:     meta,
			At:       time.Now().UTC(),
		}); err != nil {
			j.logger.Warn("record reorder alert", slog.Int64("material_id", m.ID), slog.Any("error", err))
		}
	}
	j.metrics.AddReorderAlerts(len(flagged))
	j.logger.Info("reorder scan complete",
		slog.String("run_id", runID),
		slog.Int("flagged", len(flagged)))
	return tracker.End(nil)
}
