package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestTrackerRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	for i := 0; i < 5; i++ {
		tracker := metrics.Track("reorder_scan")
		if err := tracker.End(nil); err != nil {
			t.Fatalf("unexpected error ending tracker: %v", err)
		}
	}
	tracker := metrics.Track("reorder_scan")
	if err := tracker.End(errors.New("db down")); err == nil {
		t.Fatal("expected error to propagate")
	}
	metrics.AddReorderAlerts(3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := counterValue(t, families, "stitchline_jobs_total", map[string]string{"job": "reorder_scan", "status": "success"})
	if success != 5 {
		t.Fatalf("expected 5 successes, got %f", success)
	}
	failures := counterValue(t, families, "stitchline_jobs_failures_total", map[string]string{"job": "reorder_scan"})
	if failures != 1 {
		t.Fatalf("expected 1 failure, got %f", failures)
	}
	alerts := counterValue(t, families, "stitchline_reorder_alerts_total", nil)
	if alerts != 3 {
		t.Fatalf("expected 3 alerts, got %f", alerts)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	tracker := metrics.Track("reorder_scan")
	wrapped := errors.New("boom")
	if err := tracker.End(wrapped); !errors.Is(err, wrapped) {
		t.Fatal("expected error returned untouched")
	}
	metrics.AddReorderAlerts(2)
}

func counterValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	got := map[string]string{}
	for _, lp := range metric.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for key, val := range labels {
		if got[key] != val {
			return false
		}
	}
	return true
}
