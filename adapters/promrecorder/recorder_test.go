package promrecorder

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-hybridauth/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricName(t *testing.T) {
	cases := map[string]string{
		"hybridauth.authenticate.total":       "hybridauth_authenticate_total",
		" hybridauth.get-adapter.duration_ms": "hybridauth_get_adapter_duration_ms",
		"1up":                                 "_1up",
		"":                                    "",
	}
	for input, expected := range cases {
		if got := MetricName(input); got != expected {
			t.Fatalf("MetricName(%q): expected %q, got %q", input, expected, got)
		}
	}
}

func TestRecorder_CountersAndHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := New(reg)
	ctx := context.Background()
	tags := map[string]string{"operation": "authenticate", "status": "success", "provider": "github", "extra": "x"}

	rec.IncCounter(ctx, "hybridauth.authenticate.total", 1, tags)
	rec.IncCounter(ctx, "hybridauth.authenticate.total", 2, tags)
	rec.ObserveHistogram(ctx, "hybridauth.authenticate.duration_ms", 12, tags)

	counter := rec.counters["hybridauth_authenticate_total"]
	if counter == nil {
		t.Fatalf("expected counter vector to be created")
	}
	if value := testutil.ToFloat64(counter.WithLabelValues("authenticate", "success", "github")); value != 3 {
		t.Fatalf("expected counter value 3, got %v", value)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 2 {
		t.Fatalf("expected 2 metric families, got %d", len(families))
	}
	for _, family := range families {
		if family.GetName() != "hybridauth_authenticate_duration_ms" {
			continue
		}
		if count := family.Metric[0].GetHistogram().GetSampleCount(); count != 1 {
			t.Fatalf("expected one histogram sample, got %d", count)
		}
	}
}

func TestRecorder_SharesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg)
	second := New(reg)
	tags := map[string]string{"operation": "disconnect", "status": "success"}

	first.IncCounter(context.Background(), "hybridauth.disconnect.total", 1, tags)
	second.IncCounter(context.Background(), "hybridauth.disconnect.total", 1, tags)

	if value := testutil.ToFloat64(first.counters["hybridauth_disconnect_total"].WithLabelValues("disconnect", "success", "")); value != 2 {
		t.Fatalf("expected shared counter value 2, got %v", value)
	}
}

func TestRecorder_ReportsTypeConflicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	var reported error
	rec := New(reg, WithErrorHandler(func(err error) { reported = err }))

	rec.IncCounter(context.Background(), "hybridauth.conflict", 1, nil)
	rec.ObserveHistogram(context.Background(), "hybridauth.conflict", 1, nil)
	if reported == nil {
		t.Fatalf("expected registration conflict to be reported")
	}
}

func TestRecorder_WithObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	observer := core.Observer{Metrics: New(reg)}

	observer.Observe(context.Background(), time.Now(), "is_connected", nil, map[string]any{"provider": "gitlab"})

	count, err := testutil.GatherAndCount(reg, "hybridauth_is_connected_total", "hybridauth_is_connected_duration_ms")
	if err != nil {
		t.Fatalf("gather and count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 series, got %d", count)
	}
}
