// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package viewcost implements the adaptive view-cost estimator: a
// running average of inter-view intervals maintained under an atomic
// CAS loop, feeding a sigmoid-weighted popularity contribution.
package viewcost

import (
	"math"
	"sync/atomic"
)

// Estimator tracks the mean inter-view interval (in milliseconds) across
// every view the service observes, independent of partition.
type Estimator struct {
	// bits holds math.Float64bits(mean); 0 means "not yet observed".
	bits  atomic.Uint64
	count atomic.Uint64
}

// NewEstimator returns an estimator with no observations yet.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Observe folds one inter-view interval (milliseconds) into the running
// mean via a CAS loop, reloading the prior average and retrying on
// contention.
func (e *Estimator) Observe(sinceMS float64) {
	count := e.count.Add(1)

	for {
		oldBits := e.bits.Load()

		var next float64
		if oldBits == 0 {
			next = sinceMS
		} else {
			prior := math.Float64frombits(oldBits)
			next = (prior*float64(count-1) + sinceMS) / float64(count)
		}

		if e.bits.CompareAndSwap(oldBits, math.Float64bits(next)) {
			return
		}
	}
}

// ViewCost returns sigma(mean_interval_ms / windowMS), the current
// time-adaptive weight a view contributes to popularity counters.
func (e *Estimator) ViewCost(windowMS float64) float64 {
	mean := math.Float64frombits(e.bits.Load())
	return sigmoid(mean / windowMS)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
