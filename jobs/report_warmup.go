package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stitchline-erp/stitchline-erp/internal/jobs"
	"github.com/stitchline-erp/stitchline-erp/internal/reports"
)

// ReportBuilder is the slice of the reports service the warmup needs.
type ReportBuilder interface {
	MaterialCost(ctx context.Context, rng reports.Range, materialID int64) ([]reports.MaterialCostRow, error)
	Annual(ctx context.Context, year int) (reports.AnnualSummary, error)
}

// ReportWarmupJob pre-builds the hot report caches so the first morning
// request does not pay the aggregation cost.
type ReportWarmupJob struct {
	builder ReportBuilder
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewReportWarmupJob constructs the job.
func NewReportWarmupJob(builder ReportBuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{builder: builder, logger: logger, metrics: metrics}
}

// Handle processes TaskReportWarmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	now := time.Now().UTC()
	year := payload.Year
	if year == 0 {
		year = now.Year()
	}
	tracker := j.metrics.Track("report_warmup")

	rng := reports.Range{From: now.AddDate(0, 0, -30), To: now}
	if _, err := j.builder.MaterialCost(ctx, rng, 0); err != nil {
		return tracker.End(err)
	}
	if _, err := j.builder.Annual(ctx, year); err != nil {
		return tracker.End(err)
	}
	j.logger.Info("report warmup complete", slog.Int("year", year))
	return tracker.End(nil)
}
