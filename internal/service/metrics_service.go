package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the domain counters
// the school API exposes.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	scheduleConflicts prometheus.Counter
	bulkMarks         *prometheus.CounterVec
	bulkSkips         *prometheus.CounterVec
	overviewCache     *prometheus.CounterVec
}

// NewMetricsService registers the API's collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	scheduleConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_conflicts_total",
		Help: "Timetable writes rejected because of a teacher overlap",
	})

	bulkMarks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_entries_written_total",
		Help: "Entries persisted by bulk attendance and grade operations",
	}, []string{"kind"})

	bulkSkips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_entries_skipped_total",
		Help: "Entries skipped by bulk attendance and grade operations",
	}, []string{"kind"})

	overviewCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "overview_cache_events_total",
		Help: "Student overview cache hits and misses",
	}, []string{"event"})

	registry.MustRegister(requestDuration, requestTotal, scheduleConflicts, bulkMarks, bulkSkips, overviewCache)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		scheduleConflicts: scheduleConflicts,
		bulkMarks:         bulkMarks,
		bulkSkips:         bulkSkips,
		overviewCache:     overviewCache,
	}
}

// Handler exposes the registry in Prometheus text format.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one completed request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	s.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, code).Inc()
}

// ObserveScheduleConflict records a rejected timetable write.
func (s *MetricsService) ObserveScheduleConflict() {
	s.scheduleConflicts.Inc()
}

// ObserveBulkResult records how a bulk operation fared.
func (s *MetricsService) ObserveBulkResult(kind string, written, skipped int) {
	s.bulkMarks.WithLabelValues(kind).Add(float64(written))
	s.bulkSkips.WithLabelValues(kind).Add(float64(skipped))
}

// ObserveOverviewCache records a cache hit or miss on the overview.
func (s *MetricsService) ObserveOverviewCache(hit bool) {
	event := "miss"
	if hit {
		event = "hit"
	}
	s.overviewCache.WithLabelValues(event).Inc()
}
