package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stitchline-erp/stitchline-erp/internal/jobs"
)

// KeySweeper prunes idempotency keys older than the retention window.
type KeySweeper interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// IdempotencySweepJob removes expired idempotency keys so replay protection
// does not grow without bound.
type IdempotencySweepJob struct {
	sweeper KeySweeper
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewIdempotencySweepJob constructs the job.
func NewIdempotencySweepJob(sweeper KeySweeper, logger *slog.Logger, metrics *jobmetrics.Metrics) *IdempotencySweepJob {
	return &IdempotencySweepJob{sweeper: sweeper, logger: logger, metrics: metrics}
}

// Handle processes TaskIdempotencySweep tasks.
func (j *IdempotencySweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload IdempotencySweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	retention := payload.Retention
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	tracker := j.metrics.Track("idempotency_sweep")
	if err := j.sweeper.Cleanup(ctx, retention); err != nil {
		return tracker.End(err)
	}
	j.logger.Info("idempotency sweep complete", slog.Duration("retention", retention))
	return tracker.End(nil)
}
