package cache

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	hits      prometheus.Counter
	fetches   prometheus.Counter
	retries   prometheus.Counter
	errors    prometheus.Counter
	discarded prometheus.Counter
	observed  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wallet",
			Subsystem: "query_cache",
			Name:      name,
			Help:      help,
		})
	}
	m := &Metrics{
		hits:      counter("hits_total", "Queries served from a fresh cached value."),
		fetches:   counter("fetch_attempts_total", "Fetch attempts issued to the underlying source."),
		retries:   counter("retries_total", "Failed attempts that were retried."),
		errors:    counter("errors_total", "Fetch cycles that surfaced an error after exhausting retries."),
		discarded: counter("discarded_total", "Responses dropped because they were out of order or abandoned."),
		observed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wallet",
			Subsystem: "query_cache",
			Name:      "observers",
			Help:      "Active observers across all keys.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.fetches, m.retries, m.errors, m.discarded, m.observed)
	}
	return m
}

func (m *Metrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) fetch() {
	if m != nil {
		m.fetches.Inc()
	}
}

func (m *Metrics) retry() {
	if m != nil {
		m.retries.Inc()
	}
}

func (m *Metrics) failed() {
	if m != nil {
		m.errors.Inc()
	}
}

func (m *Metrics) discard() {
	if m != nil {
		m.discarded.Inc()
	}
}

func (m *Metrics) observers(delta float64) {
	if m != nil {
		m.observed.Add(delta)
	}
}
