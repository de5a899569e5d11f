// Package metrics provides an optional Prometheus collector for pgclient.
// It is wired into [pgclient.Conn] through the WithMetrics option and is a
// no-op (nil-safe) when unused. The collector owns its own
// *prometheus.Registry (never the global default), so multiple Conns in
// one process never collide.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds every Prometheus metric pgclient records.
type Collector struct {
	Registry *prometheus.Registry

	connectsTotal  *prometheus.CounterVec
	authOutcome    *prometheus.CounterVec
	rowsDecoded    prometheus.Counter
	queryDuration  prometheus.Histogram
	protocolErrors *prometheus.CounterVec
}

// New constructs a collector with its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		Registry: reg,
		connectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgclient_connects_total",
				Help: "Connection attempts by outcome (ok, auth_failed, io_error).",
			},
			[]string{"outcome"},
		),
		authOutcome: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgclient_auth_total",
				Help: "Completed authentication attempts by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		rowsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pgclient_rows_decoded_total",
			Help: "Rows successfully decoded into a row-sink destination.",
		}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pgclient_query_duration_seconds",
			Help:    "Wall time spent in one Execute call, write through final ReadyForQuery.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		}),
		protocolErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgclient_protocol_errors_total",
				Help: "Errors observed while decoding the wire protocol, by kind.",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(c.connectsTotal, c.authOutcome, c.rowsDecoded, c.queryDuration, c.protocolErrors)
	return c
}

// ConnectAttempted records the outcome of one Connect call.
func (c *Collector) ConnectAttempted(outcome string) {
	if c == nil {
		return
	}
	c.connectsTotal.WithLabelValues(outcome).Inc()
}

// AuthCompleted records the outcome of one authentication method.
func (c *Collector) AuthCompleted(method, outcome string) {
	if c == nil {
		return
	}
	c.authOutcome.WithLabelValues(method, outcome).Inc()
}

// RowsDecoded increments the decoded-row counter by n.
func (c *Collector) RowsDecoded(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.rowsDecoded.Add(float64(n))
}

// QueryDuration observes one Execute call's wall time.
func (c *Collector) QueryDuration(d time.Duration) {
	if c == nil {
		return
	}
	c.queryDuration.Observe(d.Seconds())
}

// ProtocolError records a decode failure by pgerr.Kind name.
func (c *Collector) ProtocolError(kind string) {
	if c == nil {
		return
	}
	c.protocolErrors.WithLabelValues(kind).Inc()
}
