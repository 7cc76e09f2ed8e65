// Package metrics provides Prometheus metrics for the scouting ranking service.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// defaultLatencyBucketsMs suits in-memory operations measured in milliseconds.
var defaultLatencyBucketsMs = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500}

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Submission flow
	submissionsAccepted  prometheus.Counter
	submissionsDuplicate prometheus.Counter
	submissionsRejected  prometheus.Counter
	submissionsProcessed prometheus.Counter
	submissionsFailed    prometheus.Counter
	scoringLatency       prometheus.Histogram

	// Ranking points
	rankingPointsAwarded   prometheus.Counter
	rankingPointComponents *prometheus.CounterVec
	evaluations            *prometheus.CounterVec

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge

	// Store
	eventsTracked      prometheus.Gauge
	teamsTracked       prometheus.Gauge
	storeUpdateLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager registered on the configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoutrank",
		subsystem:        "core",
		histogramBuckets: defaultLatencyBucketsMs,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.submissionsAccepted = m.counter("submissions_accepted_total", "Submissions validated and queued")
	m.submissionsDuplicate = m.counter("submissions_duplicate_total", "Submissions rejected as already seen")
	m.submissionsRejected = m.counter("submissions_rejected_total", "Submissions that failed validation")
	m.submissionsProcessed = m.counter("submissions_processed_total", "Submissions scored and folded into statistics")
	m.submissionsFailed = m.counter("submissions_failed_total", "Submissions whose processing failed")
	m.scoringLatency = m.histogram("scoring_latency_ms", "Time to score, rank and fold one submission in milliseconds")

	m.rankingPointsAwarded = m.counter("ranking_points_awarded_total", "Total ranking points credited to submitting teams")
	m.rankingPointComponents = m.counterVec("ranking_point_components_total",
		"Ranking points by criterion, as reported by the evaluator", "component")
	m.evaluations = m.counterVec("ranking_evaluations_total",
		"Ranking-point evaluations by whether an alliance partner was present", "partner")

	m.queueSize = m.gauge("queue_size", "Submissions waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Enqueue attempts rejected by a full or closed queue")
	m.workerCount = m.gauge("worker_count", "Workers draining the queue")

	m.eventsTracked = m.gauge("events_tracked", "Events registered in the store")
	m.teamsTracked = m.gauge("teams_tracked", "Team registrations across all events")
	m.storeUpdateLatency = m.histogram("store_update_latency_ms", "Statistics update critical-section latency in milliseconds")
	m.storeQueryLatency = m.histogram("store_query_latency_ms", "Standings and rank query latency in milliseconds")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and kind", "component", "kind")
}

// RecordSubmissionAccepted increments the accepted submissions counter.
func RecordSubmissionAccepted() { globalManager.submissionsAccepted.Inc() }

// RecordSubmissionDuplicate increments the duplicate submissions counter.
func RecordSubmissionDuplicate() { globalManager.submissionsDuplicate.Inc() }

// RecordSubmissionRejected increments the invalid submissions counter.
func RecordSubmissionRejected() { globalManager.submissionsRejected.Inc() }

// RecordSubmissionProcessed increments the processed submissions counter.
func RecordSubmissionProcessed() { globalManager.submissionsProcessed.Inc() }

// RecordSubmissionFailed increments the failed submissions counter.
func RecordSubmissionFailed() { globalManager.submissionsFailed.Inc() }

// RecordScoringLatency records pipeline latency in milliseconds.
func RecordScoringLatency(latencyMs float64) { globalManager.scoringLatency.Observe(latencyMs) }

// RecordRankingPointsAwarded adds a match's total ranking points.
func RecordRankingPointsAwarded(total int) { globalManager.rankingPointsAwarded.Add(float64(total)) }

// RecordRankingPointComponent adds the points earned for one criterion.
func RecordRankingPointComponent(component string, points int) {
	globalManager.rankingPointComponents.WithLabelValues(component).Add(float64(points))
}

// RecordEvaluation counts one ranking-point evaluation.
func RecordEvaluation(partnerPresent bool) {
	label := "absent"
	if partnerPresent {
		label = "present"
	}
	globalManager.evaluations.WithLabelValues(label).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateEventsTracked sets the number of registered events.
func UpdateEventsTracked(count int) { globalManager.eventsTracked.Set(float64(count)) }

// UpdateTeamsTracked sets the number of team registrations.
func UpdateTeamsTracked(count int) { globalManager.teamsTracked.Set(float64(count)) }

// RecordStoreUpdateLatency records statistics update latency in milliseconds.
func RecordStoreUpdateLatency(latencyMs float64) { globalManager.storeUpdateLatency.Observe(latencyMs) }

// RecordStoreQueryLatency records read latency in milliseconds.
func RecordStoreQueryLatency(latencyMs float64) { globalManager.storeQueryLatency.Observe(latencyMs) }

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteText writes every gathered metric family in the text exposition format.
func WriteText(w io.Writer) error {
	families, err := customRegistry.Gather()
	if err != nil {
		return fmt.Errorf("gather: %w: %w", ErrObserveFailed, err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
