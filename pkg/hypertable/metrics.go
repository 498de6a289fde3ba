// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package hypertable

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the hypertable cache metrics.
type Metrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	Pins        prometheus.Counter
	ActivePins  prometheus.Gauge
}

// NewMetrics creates the cache metrics. They are not registered.
func NewMetrics() *Metrics {
	const (
		namespace = "hyperplan"
		subsystem = "hypertable_cache"
	)
	return &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "hits_total",
			Help:      "Number of hypertable lookups answered from the cache, including negative entries",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "misses_total",
			Help:      "Number of hypertable lookups that went to the catalog",
		}),
		Pins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pins_total",
			Help:      "Number of times the cache was pinned",
		}),
		ActivePins: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_pins",
			Help:      "Number of pins currently held",
		}),
	}
}

// PrometheusCollectors returns the collectors to register.
func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{m.CacheHits, m.CacheMisses, m.Pins, m.ActivePins}
}
