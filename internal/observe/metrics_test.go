package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestHistogramObservation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	histograms := []struct {
		name string
		h    metric.Float64Histogram
	}{
		{"versecraft.enhance.duration", m.EnhanceDuration},
		{"versecraft.scan.duration", m.ScanDuration},
		{"versecraft.classify.duration", m.ClassifyDuration},
	}

	for _, tc := range histograms {
		tc.h.Record(ctx, 0.08)
		tc.h.Record(ctx, 0.123)
	}

	rm := collect(t, reader)

	for _, tc := range histograms {
		t.Run(tc.name, func(t *testing.T) {
			got := findMetric(rm, tc.name)
			if got == nil {
				t.Fatalf("metric %q not found", tc.name)
			}
			hist, ok := got.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("metric %q is not a float64 histogram", tc.name)
			}
			if len(hist.DataPoints) != 1 {
				t.Fatalf("expected 1 data point, got %d", len(hist.DataPoints))
			}
			if hist.DataPoints[0].Count != 2 {
				t.Errorf("count = %d, want 2", hist.DataPoints[0].Count)
			}
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, false)

	rm := collect(t, reader)
	got := findMetric(rm, "versecraft.phonetic.cache.lookups")
	if got == nil {
		t.Fatal("cache lookup metric not found")
	}
	sum, ok := got.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("expected int64 sum data")
	}
	// One data point per result attribute.
	if len(sum.DataPoints) != 2 {
		t.Fatalf("expected 2 data points, got %d", len(sum.DataPoints))
	}
	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key("result")); ok {
			counts[v.AsString()] = dp.Value
		}
	}
	if counts["hit"] != 2 {
		t.Errorf("hit count = %d, want 2", counts["hit"])
	}
	if counts["miss"] != 1 {
		t.Errorf("miss count = %d, want 1", counts["miss"])
	}
}

func TestRecordStrategy(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStrategy(ctx, "multi")
	m.RecordStrategy(ctx, "multi")
	m.RecordStrategy(ctx, "assonance")

	rm := collect(t, reader)
	got := findMetric(rm, "versecraft.enhance.strategy.applications")
	if got == nil {
		t.Fatal("strategy metric not found")
	}
	sum, ok := got.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("expected int64 sum data")
	}
	total := int64(0)
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("total applications = %d, want 3", total)
	}
}

func TestRecordClassifierTier(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordClassifierTier(ctx, "rules")
	m.RecordClassifierTier(ctx, "model")

	rm := collect(t, reader)
	got := findMetric(rm, "versecraft.classify.tier")
	if got == nil {
		t.Fatal("classifier tier metric not found")
	}
	sum, ok := got.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("expected int64 sum data")
	}
	if len(sum.DataPoints) != 2 {
		t.Errorf("expected 2 data points, got %d", len(sum.DataPoints))
	}
}

func TestRecordProviderRequestAndError(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordProviderRequest(ctx, "openai", "ok")
	m.RecordProviderRequest(ctx, "openai", "error")
	m.RecordProviderError(ctx, "openai")

	rm := collect(t, reader)

	reqs := findMetric(rm, "versecraft.provider.requests")
	if reqs == nil {
		t.Fatal("provider requests metric not found")
	}
	errs := findMetric(rm, "versecraft.provider.errors")
	if errs == nil {
		t.Fatal("provider errors metric not found")
	}
	sum, ok := errs.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("expected int64 sum data")
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("unexpected provider error data: %+v", sum.DataPoints)
	}
}

func TestDefaultMetrics_Singleton(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Error("DefaultMetrics returned different instances")
	}
}

func TestAttr(t *testing.T) {
	kv := Attr("technique", "multi")
	if kv.Key != "technique" || kv.Value.AsString() != "multi" {
		t.Errorf("Attr produced %v", kv)
	}
}
