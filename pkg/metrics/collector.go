// Package metrics exposes Prometheus instrumentation for the HTTP surface and the auth flow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth event outcomes.
const (
	AuthLoginSuccess   = "login_success"
	AuthLoginFailure   = "login_failure"
	AuthLoginThrottled = "login_throttled"
	AuthRefreshSuccess = "refresh_success"
	AuthRefreshFailure = "refresh_failure"
	AuthLogout         = "logout"
	AuthTokenRejected  = "token_rejected"
)

// Recorder is what the transport and services depend on.
type Recorder interface {
	ObserveRequest(method, route string, status int, latency time.Duration)
	RecordAuthEvent(event string)
}

// Collector implements Recorder on top of Prometheus metrics.
type Collector struct {
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	authEvents *prometheus.CounterVec
}

// NewCollector registers the service metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "projectshelf_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "projectshelf_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "projectshelf_auth_events_total",
			Help: "Authentication events by outcome.",
		}, []string{"event"}),
	}
	reg.MustRegister(c.requests, c.latency, c.authEvents)
	return c
}

// ObserveRequest records one served request.
func (c *Collector) ObserveRequest(method, route string, status int, latency time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(latency.Seconds())
}

// RecordAuthEvent counts an auth outcome.
func (c *Collector) RecordAuthEvent(event string) {
	c.authEvents.WithLabelValues(event).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used by tests and tools that do not expose metrics.
type Nop struct{}

func (Nop) ObserveRequest(string, string, int, time.Duration) {}
func (Nop) RecordAuthEvent(string)                            {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
