// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telephony

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/AleutianDial/services/dial/plan"
)

var (
	// placementsTotal counts placement attempts by outcome.
	// Labels: outcome (accepted, rejected, provider_error)
	placementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dial",
		Subsystem: "telephony",
		Name:      "placements_total",
		Help:      "Total call placement attempts by outcome",
	}, []string{"outcome"})

	// placementLatencySeconds measures placement round-trip latency.
	placementLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dial",
		Subsystem: "telephony",
		Name:      "latency_seconds",
		Help:      "Call placement round-trip latency",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})
)

// recordPlacement records one placement attempt.
func recordPlacement(result *plan.CallResult, duration time.Duration) {
	var outcome string
	switch result.Error {
	case "":
		outcome = "accepted"
	case ErrCodeMissingCredentials, ErrCodeMissingDestination, ErrCodeMissingSource, ErrCodeInvalidRequest:
		outcome = "rejected"
	default:
		outcome = "provider_error"
	}
	placementsTotal.WithLabelValues(outcome).Inc()
	placementLatencySeconds.Observe(duration.Seconds())
}
