// Package observe provides application-wide observability primitives:
// OpenTelemetry metrics with a Prometheus exporter bridge.
//
// Metrics are recorded through the OpenTelemetry Metrics API and scraped via
// the standard /metrics endpoint (see [InitProvider]). A package-level
// default [Metrics] instance ([DefaultMetrics]) is provided for convenience;
// tests should use [NewMetrics] with a custom [metric.MeterProvider] to
// avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/Kamalllx/evacuate"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// TranslateDuration tracks translation latency (one chunk per sample).
	TranslateDuration metric.Float64Histogram

	// LLMDuration tracks model inference latency.
	LLMDuration metric.Float64Histogram

	// TTSDuration tracks speech synthesis latency (one chunk per sample).
	TTSDuration metric.Float64Histogram

	// PipelineDuration tracks end-to-end voice-turn latency.
	PipelineDuration metric.Float64Histogram

	// --- Counters ---

	// PipelineRequests counts processed voice turns. Use with attribute:
	//   attribute.String("status", "ok"|"degraded"|"failed")
	PipelineRequests metric.Int64Counter

	// DegradedStages counts stage-level degradations. Use with attribute:
	//   attribute.String("stage", ...)
	DegradedStages metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live conversation sessions.
	ActiveSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// remote speech and model API latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.STTDuration, err = m.Float64Histogram("evacuate.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranslateDuration, err = m.Float64Histogram("evacuate.translate.duration",
		metric.WithDescription("Latency of translation, per chunk."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("evacuate.llm.duration",
		metric.WithDescription("Latency of model inference."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("evacuate.tts.duration",
		metric.WithDescription("Latency of speech synthesis, per chunk."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PipelineDuration, err = m.Float64Histogram("evacuate.pipeline.duration",
		metric.WithDescription("End-to-end voice-turn latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.PipelineRequests, err = m.Int64Counter("evacuate.pipeline.requests",
		metric.WithDescription("Total processed voice turns by status."),
	); err != nil {
		return nil, err
	}
	if met.DegradedStages, err = m.Int64Counter("evacuate.pipeline.degraded_stages",
		metric.WithDescription("Total stage-level degradations by stage."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("evacuate.active_sessions",
		metric.WithDescription("Number of live conversation sessions."),
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

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen with
// the global provider).
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

// RecordStage records one stage-latency sample. Unknown stage names are
// dropped silently. Safe on a nil receiver so callers can run unmetered in
// tests.
func (m *Metrics) RecordStage(ctx context.Context, stage string, d time.Duration) {
	if m == nil {
		return
	}
	var h metric.Float64Histogram
	switch stage {
	case StageSTT:
		h = m.STTDuration
	case StageTranslate:
		h = m.TranslateDuration
	case StageLLM:
		h = m.LLMDuration
	case StageTTS:
		h = m.TTSDuration
	default:
		return
	}
	h.Record(ctx, d.Seconds())
}

// RecordRequest records one completed voice turn with its terminal status.
// Safe on a nil receiver.
func (m *Metrics) RecordRequest(ctx context.Context, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.PipelineDuration.Record(ctx, d.Seconds())
	m.PipelineRequests.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordDegradedStage counts one stage-level degradation. Safe on a nil
// receiver.
func (m *Metrics) RecordDegradedStage(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.DegradedStages.Add(ctx, 1,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// AddActiveSessions moves the live-session gauge by delta. Safe on a nil
// receiver.
func (m *Metrics) AddActiveSessions(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, delta)
}

// Stage names used as metric attributes and log fields.
const (
	StageDetect    = "detect"
	StageSTT       = "stt"
	StageTranslate = "translate"
	StageLLM       = "llm"
	StageTTS       = "tts"
)

// Request statuses recorded by [Metrics.RecordRequest].
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)
