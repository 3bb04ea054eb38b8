package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the background timer job.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	jobRuns     prometheus.Counter
	jobDuration prometheus.Histogram

	alertsScheduled   prometheus.Counter
	alertsSent        prometheus.Counter
	alertSendFailures prometheus.Counter
	orphansPurged     prometheus.Counter
	completionsSent   prometheus.Counter
}

// NewMetricsService registers the collectors on a private registry.
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

	jobRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timer_job_runs_total",
		Help: "Total completed timer job runs",
	})

	jobDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timer_job_duration_seconds",
		Help:    "Duration of timer job runs in seconds",
		Buckets: prometheus.DefBuckets,
	})

	alertsScheduled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timer_alerts_scheduled_total",
		Help: "Total alert rows created",
	})

	alertsSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timer_alerts_sent_total",
		Help: "Total expiry warnings delivered",
	})

	alertSendFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timer_alert_send_failures_total",
		Help: "Total expiry warnings that failed to deliver and stay queued",
	})

	orphansPurged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timer_alert_orphans_purged_total",
		Help: "Total orphaned alert rows removed",
	})

	completionsSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timer_completions_sent_total",
		Help: "Total completion emails delivered",
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		jobRuns, jobDuration,
		alertsScheduled, alertsSent, alertSendFailures, orphansPurged, completionsSent,
	)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		jobRuns:           jobRuns,
		jobDuration:       jobDuration,
		alertsScheduled:   alertsScheduled,
		alertsSent:        alertsSent,
		alertSendFailures: alertSendFailures,
		orphansPurged:     orphansPurged,
		completionsSent:   completionsSent,
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records a finished HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveJobRun records a completed timer job run.
func (s *MetricsService) ObserveJobRun(duration time.Duration) {
	s.jobRuns.Inc()
	s.jobDuration.Observe(duration.Seconds())
}

// AddAlertsScheduled counts created alert rows.
func (s *MetricsService) AddAlertsScheduled(n int) {
	s.alertsScheduled.Add(float64(n))
}

// IncAlertSent counts a delivered expiry warning.
func (s *MetricsService) IncAlertSent() { s.alertsSent.Inc() }

// IncAlertSendFailure counts a delivery failure left for retry.
func (s *MetricsService) IncAlertSendFailure() { s.alertSendFailures.Inc() }

// AddOrphansPurged counts removed orphan alert rows.
func (s *MetricsService) AddOrphansPurged(n int64) {
	s.orphansPurged.Add(float64(n))
}

// IncCompletionSent counts a delivered completion email.
func (s *MetricsService) IncCompletionSent() { s.completionsSent.Inc() }
