package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskReorderScan flags materials below their reorder level.
	TaskReorderScan = "materials:reorder_scan"
	// TaskIdempotencySweep prunes expired idempotency keys.
	TaskIdempotencySweep = "shared:idempotency_sweep"
	// TaskReportWarmup pre-builds the hot report caches.
	TaskReportWarmup = "reports:warmup"
)

// ReorderScanPayload carries scheduling metadata for the reorder scan.
type ReorderScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewReorderScanTask constructs an Asynq task for the nightly reorder scan.
func NewReorderScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ReorderScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReorderScan, body, asynq.Queue(QueueDefault)), nil
}

// IdempotencySweepPayload sets the retention window for the sweep.
type IdempotencySweepPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewIdempotencySweepTask constructs an Asynq task for the key sweep.
func NewIdempotencySweepTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(IdempotencySweepPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencySweep, body, asynq.Queue(QueueDefault)), nil
}

// ReportWarmupPayload names the year whose annual summary gets warmed.
type ReportWarmupPayload struct {
	Year int `json:"year"`
}

// NewReportWarmupTask constructs an Asynq task for report cache warmup.
func NewReportWarmupTask(year int) (*asynq.Task, error) {
	body, err := json.Marshal(ReportWarmupPayload{Year: year})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, body, asynq.Queue(QueueDefault)), nil
}
