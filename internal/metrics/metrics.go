// Package metrics records gateway activity as prometheus series.
//
// All methods are safe on a nil *Recorder, so components can run without
// metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nexus"

// Outcome labels
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// UnknownServer labels calls whose server name is missing or not configured.
// Caller supplied names never become label values.
const UnknownServer = "unknown"

// Recorder owns the gateway's collectors and the registry they live in
type Recorder struct {
	registry *prometheus.Registry

	catalogFetches *prometheus.CounterVec
	calls          *prometheus.CounterVec
	callDuration   *prometheus.HistogramVec
	connected      prometheus.Gauge
	configured     prometheus.Gauge
}

// New creates a recorder with its own registry. Go runtime and process
// collectors are registered alongside the gateway series.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		catalogFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetches_total",
			Help:      "Tool catalog fetches from downstream servers.",
		}, []string{"server", "outcome"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool calls routed to downstream servers.",
		}, []string{"server", "outcome"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of forwarded tool calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"server"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "downstream_servers_connected",
			Help:      "Downstream servers with a live session.",
		}),
		configured: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "downstream_servers_configured",
			Help:      "Downstream servers named in the server list.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.catalogFetches,
		r.calls,
		r.callDuration,
		r.connected,
		r.configured,
	)
	return r
}

// Registry exposes the underlying registry, mostly for tests
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveFetch counts one catalog fetch against server
func (r *Recorder) ObserveFetch(server string, err error) {
	if r == nil {
		return
	}
	r.catalogFetches.WithLabelValues(server, outcomeOf(err)).Inc()
}

// ObserveCall counts one routed call and, unless it was rejected before
// reaching the server, its duration
func (r *Recorder) ObserveCall(server, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.calls.WithLabelValues(server, outcome).Inc()
	if outcome != OutcomeRejected {
		r.callDuration.WithLabelValues(server).Observe(elapsed.Seconds())
	}
}

// SetServers records how many servers were configured and how many connected
func (r *Recorder) SetServers(configured, connected int) {
	if r == nil {
		return
	}
	r.configured.Set(float64(configured))
	r.connected.Set(float64(connected))
}

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
