// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// planRequestsTotal counts planning requests by outcome.
	// Labels: outcome (ok, fallback)
	planRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dial",
		Subsystem: "planner",
		Name:      "requests_total",
		Help:      "Total planning requests by outcome",
	}, []string{"outcome"})

	// planLatencySeconds measures end-to-end planning latency.
	planLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dial",
		Subsystem: "planner",
		Name:      "latency_seconds",
		Help:      "End-to-end planning request latency",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)

// recordPlanRequest records one planning round trip.
func recordPlanRequest(outcome string, duration time.Duration) {
	planRequestsTotal.WithLabelValues(outcome).Inc()
	planLatencySeconds.Observe(duration.Seconds())
}
