// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package planner

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts the rewrites performed by the planner hooks.
type Metrics struct {
	InsertsRedirected       prometheus.Counter
	ModifyTablesWrapped     prometheus.Counter
	AppendPathsWrapped      prometheus.Counter
	SortTransformsDelegated prometheus.Counter
}

// NewMetrics creates unregistered metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		InsertsRedirected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hyperplan",
			Subsystem: "planner",
			Name:      "inserts_redirected_total",
			Help:      "Number of INSERT subplans routed through chunk dispatch.",
		}),
		ModifyTablesWrapped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hyperplan",
			Subsystem: "planner",
			Name:      "modify_tables_wrapped_total",
			Help:      "Number of ModifyTable nodes wrapped in a hypertable insert node.",
		}),
		AppendPathsWrapped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hyperplan",
			Subsystem: "planner",
			Name:      "append_paths_wrapped_total",
			Help:      "Number of append paths wrapped for execution-time chunk exclusion.",
		}),
		SortTransformsDelegated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hyperplan",
			Subsystem: "planner",
			Name:      "sort_transforms_total",
			Help:      "Number of relations handed to the sort transform.",
		}),
	}
}

// PrometheusCollectors returns the collectors to register.
func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.InsertsRedirected, m.ModifyTablesWrapped, m.AppendPathsWrapped, m.SortTransformsDelegated,
	}
}
