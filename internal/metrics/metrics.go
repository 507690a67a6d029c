// Package metrics defines the prometheus instruments a Client or Pool can
// optionally expose. Unlike the teacher's server-side metrics, which
// self-register against the global default registry via
// prometheus.MustRegister in an init func, a library must not touch the
// process-global registry — a program embedding two dnsasync clients (or
// just running its own test suite) would panic on the second
// registration. Callers instead pass a prometheus.Registerer explicitly.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every instrument dnsasync records against. The *Metrics
// returned by NewNoop is always safe to record into; a nil *Metrics is not.
type Metrics struct {
	QueriesSent      prometheus.Counter
	QueriesResolved  *prometheus.CounterVec // label "outcome": success, error, or an errkind.Kind string (timeout|cancelled|io|...)
	InflightQueries  prometheus.Gauge
	QueryDuration    prometheus.Histogram
	PoolSize         prometheus.Gauge
	PoolConnectRetry prometheus.Counter
}

// New creates the instrument set and registers it against reg. namespace
// prefixes every metric name, e.g. "dnsasync" -> "dnsasync_queries_sent_total".
func New(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		QueriesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "queries_sent_total", Help: "Total queries sent.",
		}),
		QueriesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "queries_resolved_total", Help: "Queries resolved, by outcome.",
		}, []string{"outcome"}),
		InflightQueries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "inflight_queries", Help: "Queries currently awaiting a response.",
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "query_duration_seconds", Help: "Time from send to resolution.",
			Buckets: prometheus.DefBuckets,
		}),
		PoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "pool_size", Help: "Pooled clients currently held.",
		}),
		PoolConnectRetry: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "pool_connect_retries_total", Help: "Connection attempts beyond the first, across all pool.Next calls.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.QueriesSent, m.QueriesResolved, m.InflightQueries,
			m.QueryDuration, m.PoolSize, m.PoolConnectRetry,
		)
	}
	return m
}

// NewNoop returns a Metrics whose instruments are never registered
// anywhere; every method still works, recording into unregistered
// instruments that nothing ever scrapes. Used as the default when a
// caller passes no Registerer.
func NewNoop() *Metrics {
	return New(nil, "dnsasync")
}
