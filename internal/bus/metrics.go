// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package bus

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts bus traffic for the observability endpoint.
type Metrics struct {
	Published *prometheus.CounterVec
	Handled   *prometheus.CounterVec
	Unclaimed prometheus.Counter
	Timeouts  prometheus.Counter
}

// NewMetrics creates and registers bus metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playgrid_bus_published_total",
				Help: "Total events published by this process, by operation",
			},
			[]string{"op"},
		),
		Handled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playgrid_bus_handled_total",
				Help: "Total events executed by this process as owner, by operation",
			},
			[]string{"op"},
		),
		Unclaimed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "playgrid_bus_unclaimed_total",
				Help: "Total published events no process claimed before the timeout",
			},
		),
		Timeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "playgrid_bus_publish_timeouts_total",
				Help: "Total publishes that hit the bus timeout",
			},
		),
	}

	reg.MustRegister(m.Published, m.Handled, m.Unclaimed, m.Timeouts)
	return m
}
