package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	TransportJSON   = "json"
	TransportLegacy = "legacy"
	TransportStatus = "status"
)

const (
	OutcomeOK          = "ok"
	OutcomeDecodeError = "decode_error"
	OutcomeAuthError   = "auth_error"
	OutcomeStoreError  = "store_error"
)

// Metrics groups the collectors for report ingestion and HTTP traffic.
type Metrics struct {
	Registry *prometheus.Registry

	ReportsTotal     *prometheus.CounterVec
	IngestDuration   *prometheus.HistogramVec
	PlayersCreated   prometheus.Counter
	ServersCreated   prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPRequestTimes *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Registry: reg,
		ReportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stats_reports_total",
			Help: "Telemetry reports received, by transport and outcome.",
		}, []string{"transport", "outcome"}),
		IngestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stats_ingest_duration_seconds",
			Help:    "Time spent in the report transaction.",
			Buckets: prometheus.DefBuckets,
		}, []string{"transport"}),
		PlayersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stats_players_created_total",
			Help: "Player identities created on first sight.",
		}),
		ServersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stats_servers_created_total",
			Help: "Server identities created on first sight.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stats_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		HTTPRequestTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stats_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.ReportsTotal,
		m.IngestDuration,
		m.PlayersCreated,
		m.ServersCreated,
		m.HTTPRequests,
		m.HTTPRequestTimes,
	)
	return m
}

func (m *Metrics) ObserveReport(transport, outcome string, n int) {
	m.ReportsTotal.WithLabelValues(transport, outcome).Add(float64(n))
}
