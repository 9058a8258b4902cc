package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	settingsApplies   *prometheus.CounterVec
	settingsRestores  *prometheus.CounterVec
	backtestsTotal    *prometheus.CounterVec
	backtestDuration  prometheus.Histogram
	jobsActive        *prometheus.GaugeVec
	sessionsActive    prometheus.Gauge
	contactSubmission *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.settingsApplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantedge_settings_apply_total",
			Help: "Settings apply attempts by outcome",
		},
		[]string{"outcome"},
	)
	r.settingsRestores = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantedge_settings_restore_total",
			Help: "Settings restores by outcome",
		},
		[]string{"outcome"},
	)
	r.backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantedge_backtests_total",
			Help: "Total number of strategy runs sent to the backtest service",
		},
		[]string{"status"},
	)
	r.backtestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quantedge_backtest_duration_seconds",
			Help:    "Backtest service round trip in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
	r.jobsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quantedge_jobs_active",
			Help: "Number of active jobs",
		},
		[]string{"type"},
	)
	r.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quantedge_sessions_active",
			Help: "Number of live login sessions",
		},
	)
	r.contactSubmission = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantedge_contact_submissions_total",
			Help: "Contact form submissions by status",
		},
		[]string{"status"},
	)

	reg.MustRegister(r.settingsApplies)
	reg.MustRegister(r.settingsRestores)
	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.jobsActive)
	reg.MustRegister(r.sessionsActive)
	reg.MustRegister(r.contactSubmission)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordSettingsApply counts an apply attempt.
func (r *Registry) RecordSettingsApply(outcome string) {
	r.settingsApplies.WithLabelValues(outcome).Inc()
}

// RecordSettingsRestore counts a restore.
func (r *Registry) RecordSettingsRestore(outcome string) {
	r.settingsRestores.WithLabelValues(outcome).Inc()
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(status string, duration float64) {
	r.backtestsTotal.WithLabelValues(status).Inc()
	r.backtestDuration.Observe(duration)
}

// SetJobsActive sets the number of active jobs of a type.
func (r *Registry) SetJobsActive(jobType string, count int) {
	r.jobsActive.WithLabelValues(jobType).Set(float64(count))
}

// SetSessionsActive sets the number of live sessions.
func (r *Registry) SetSessionsActive(count int) {
	r.sessionsActive.Set(float64(count))
}

// RecordContact counts a contact form submission.
func (r *Registry) RecordContact(status string) {
	r.contactSubmission.WithLabelValues(status).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
