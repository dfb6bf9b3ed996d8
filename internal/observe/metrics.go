// Package observe provides application-wide observability primitives for
// Sermable: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
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
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Sermable metrics.
const meterName = "github.com/Ebbbabebba/sermable"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Histograms ---

	// TimeToSpeak tracks how long each matched word took to arrive,
	// measured from the previous resolution.
	TimeToSpeak metric.Float64Histogram

	// SessionDuration tracks total recital session length.
	SessionDuration metric.Float64Histogram

	// --- Counters ---

	// WordsResolved counts resolved reference words. Use with attributes:
	//   attribute.String("status", ...), attribute.String("prompted", ...)
	WordsResolved metric.Int64Counter

	// HintPhases counts hint phase transitions. Use with attribute:
	//   attribute.String("phase", ...)
	HintPhases metric.Int64Counter

	// SourceErrors counts recogniser stream failures that triggered a
	// restart.
	SourceErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live recital sessions.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// timeToSpeakBuckets defines histogram bucket boundaries (in seconds) sized
// for word-to-word speech gaps: sub-second for fluent delivery, multi-second
// for hesitation.
var timeToSpeakBuckets = []float64{
	0.1, 0.25, 0.5, 1, 1.5, 2.5, 3, 5, 10, 30,
}

// sessionDurationBuckets defines histogram bucket boundaries (in seconds)
// sized for whole recitals.
var sessionDurationBuckets = []float64{
	5, 15, 30, 60, 120, 300, 600, 1200, 1800, 3600,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TimeToSpeak, err = m.Float64Histogram("sermable.word.time_to_speak",
		metric.WithDescription("Time from the previous resolution until each word was spoken."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(timeToSpeakBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SessionDuration, err = m.Float64Histogram("sermable.session.duration",
		metric.WithDescription("Total length of a recital session."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(sessionDurationBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.WordsResolved, err = m.Int64Counter("sermable.words.resolved",
		metric.WithDescription("Total reference words resolved by status and prompt flag."),
	); err != nil {
		return nil, err
	}
	if met.HintPhases, err = m.Int64Counter("sermable.hint.phases",
		metric.WithDescription("Total hint phase transitions by phase."),
	); err != nil {
		return nil, err
	}
	if met.SourceErrors, err = m.Int64Counter("sermable.source.errors",
		metric.WithDescription("Total recogniser stream failures that triggered a restart."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("sermable.active_sessions",
		metric.WithDescription("Number of live recital sessions."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("sermable.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
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

// RecordWordResolved is a convenience method that records a resolved word
// counter increment with the standard attribute set.
func (m *Metrics) RecordWordResolved(ctx context.Context, status string, prompted bool) {
	m.WordsResolved.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("status", status),
			attribute.String("prompted", strconv.FormatBool(prompted)),
		),
	)
}

// RecordHintPhase is a convenience method that records a hint phase
// transition counter increment.
func (m *Metrics) RecordHintPhase(ctx context.Context, phase string) {
	m.HintPhases.Add(ctx, 1,
		metric.WithAttributes(attribute.String("phase", phase)),
	)
}

// RecordSourceError is a convenience method that records a recogniser stream
// failure counter increment.
func (m *Metrics) RecordSourceError(ctx context.Context) {
	m.SourceErrors.Add(ctx, 1)
}
