// Package observe provides application-wide observability primitives for
// versecraft: OpenTelemetry metrics, tracing helpers, and trace-aware
// structured logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all versecraft metrics.
const meterName = "github.com/cypherbooth/versecraft"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// EnhanceDuration tracks end-to-end rhyme injection latency per call.
	EnhanceDuration metric.Float64Histogram

	// ScanDuration tracks rhyme pattern scan latency.
	ScanDuration metric.Float64Histogram

	// ClassifyDuration tracks crowd reaction classification latency.
	ClassifyDuration metric.Float64Histogram

	// --- Counters ---

	// CacheLookups counts phonetic cache lookups. Use with attribute:
	//   attribute.String("result", "hit"|"miss")
	CacheLookups metric.Int64Counter

	// StrategyApplications counts successful rhyme strategy applications.
	// Use with attribute: attribute.String("technique", ...)
	StrategyApplications metric.Int64Counter

	// ClassifierTier counts which classification tier answered. Use with
	// attribute: attribute.String("tier", "trivial"|"model"|"rules")
	ClassifierTier metric.Int64Counter

	// ProviderRequests counts LLM provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts LLM provider errors by provider name.
	ProviderErrors metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// the enhancement pipeline, whose budget sits in the low hundreds of
// milliseconds, plus a tail for model-backed classification.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.08, 0.12, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.EnhanceDuration, err = m.Float64Histogram("versecraft.enhance.duration",
		metric.WithDescription("Latency of rhyme injection per call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ScanDuration, err = m.Float64Histogram("versecraft.scan.duration",
		metric.WithDescription("Latency of rhyme pattern scanning."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClassifyDuration, err = m.Float64Histogram("versecraft.classify.duration",
		metric.WithDescription("Latency of crowd reaction classification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.CacheLookups, err = m.Int64Counter("versecraft.phonetic.cache.lookups",
		metric.WithDescription("Phonetic analysis cache lookups by result."),
	); err != nil {
		return nil, err
	}
	if met.StrategyApplications, err = m.Int64Counter("versecraft.enhance.strategy.applications",
		metric.WithDescription("Successful rhyme strategy applications by technique."),
	); err != nil {
		return nil, err
	}
	if met.ClassifierTier, err = m.Int64Counter("versecraft.classify.tier",
		metric.WithDescription("Crowd classifications by answering tier."),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("versecraft.provider.requests",
		metric.WithDescription("Total LLM provider requests by provider and status."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("versecraft.provider.errors",
		metric.WithDescription("Total LLM provider errors by provider."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordCacheLookup records one phonetic cache lookup outcome.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.Add(ctx, 1,
		metric.WithAttributes(attribute.String("result", result)),
	)
}

// RecordStrategy records one successful strategy application.
func (m *Metrics) RecordStrategy(ctx context.Context, technique string) {
	m.StrategyApplications.Add(ctx, 1,
		metric.WithAttributes(attribute.String("technique", technique)),
	)
}

// RecordClassifierTier records which tier produced a classification.
func (m *Metrics) RecordClassifierTier(ctx context.Context, tier string) {
	m.ClassifierTier.Add(ctx, 1,
		metric.WithAttributes(attribute.String("tier", tier)),
	)
}

// RecordProviderRequest records a provider request with its outcome status.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error.
func (m *Metrics) RecordProviderError(ctx context.Context, provider string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("provider", provider)),
	)
}
