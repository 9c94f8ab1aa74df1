package metrics

import (
	"github.com/RuvinSL/token-estimator/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements metrics collection using Prometheus
type PrometheusCollector struct {
	serviceName string

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Business metrics
	analysisTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	analysesInFlight prometheus.Gauge
	sessionsActive   prometheus.Gauge
}

// NewPrometheusCollector creates a new Prometheus metrics collector
func NewPrometheusCollector(serviceName string) *PrometheusCollector {
	return &PrometheusCollector{
		serviceName: serviceName,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
				ConstLabels: prometheus.Labels{
					"service": serviceName,
				},
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request duration in seconds",
				ConstLabels: prometheus.Labels{
					"service": serviceName,
				},
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		analysisTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "token_estimate_analysis_total",
				Help: "Total number of token estimation requests by mode and outcome",
				ConstLabels: prometheus.Labels{
					"service": serviceName,
				},
			},
			[]string{"mode", "outcome"},
		),

		analysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "token_estimate_analysis_duration_seconds",
				Help: "Round trip to the analysis service in seconds",
				ConstLabels: prometheus.Labels{
					"service": serviceName,
				},
				// full-site crawls routinely take minutes
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"mode", "outcome"},
		),

		analysesInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "token_estimate_analyses_in_flight",
				Help: "Number of analysis requests currently waiting on the analysis service",
				ConstLabels: prometheus.Labels{
					"service": serviceName,
				},
			},
		),

		sessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "token_estimate_sessions_active",
				Help: "Number of open estimator sessions",
				ConstLabels: prometheus.Labels{
					"service": serviceName,
				},
			},
		),
	}
}

// GetCollectors returns all Prometheus collectors for registration
func (p *PrometheusCollector) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.httpRequestsTotal,
		p.httpRequestDuration,
		p.analysisTotal,
		p.analysisDuration,
		p.analysesInFlight,
		p.sessionsActive,
	}
}

// RecordRequest records HTTP request metrics
func (p *PrometheusCollector) RecordRequest(method, path string, statusCode int, duration float64) {
	status := statusCodeToString(statusCode)

	p.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	p.httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
}

// RecordAnalysis records one analyze() call that reached the analysis
// service. outcome is success or failure.
func (p *PrometheusCollector) RecordAnalysis(mode string, outcome string, duration float64) {
	p.analysisTotal.WithLabelValues(mode, outcome).Inc()
	p.analysisDuration.WithLabelValues(mode, outcome).Observe(duration)
}

// RecordRejectedAnalysis counts an analyze() call refused before any network
// call. It is kept out of the duration histogram.
func (p *PrometheusCollector) RecordRejectedAnalysis(mode string) {
	p.analysisTotal.WithLabelValues(mode, "invalid").Inc()
}

func (p *PrometheusCollector) IncAnalysesInFlight() {
	p.analysesInFlight.Inc()
}

func (p *PrometheusCollector) DecAnalysesInFlight() {
	p.analysesInFlight.Dec()
}

// SetSessions reports the number of live sessions
func (p *PrometheusCollector) SetSessions(count int) {
	p.sessionsActive.Set(float64(count))
}

// statusCodeToString converts HTTP status code to string category
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// Ensure PrometheusCollector implements interfaces.MetricsCollector
var _ interfaces.MetricsCollector = (*PrometheusCollector)(nil)
