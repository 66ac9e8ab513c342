// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package viewcost

import (
	"math"
	"sync"
	"testing"
)

func TestEstimator_FirstObservationSeedsMean(t *testing.T) {
	e := NewEstimator()
	e.Observe(1000)

	got := e.ViewCost(60000)
	want := sigmoid(1000.0 / 60000.0)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ViewCost = %v, want %v", got, want)
	}
}

func TestEstimator_ViewCostIsInUnitInterval(t *testing.T) {
	e := NewEstimator()
	for _, v := range []float64{100, 5000, 200000, 10} {
		e.Observe(v)
		cost := e.ViewCost(60000)
		if cost <= 0 || cost >= 1 {
			t.Errorf("ViewCost = %v, want in (0,1)", cost)
		}
	}
}

func TestEstimator_ConcurrentObservationsDoNotRace(t *testing.T) {
	e := NewEstimator()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			e.Observe(v)
		}(float64(i + 1))
	}
	wg.Wait()

	if e.count.Load() != 50 {
		t.Errorf("count = %d, want 50", e.count.Load())
	}
	cost := e.ViewCost(60000)
	if cost <= 0 || cost >= 1 {
		t.Errorf("ViewCost after concurrent observes = %v, want in (0,1)", cost)
	}
}
