// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"math"
	"testing"

	"github.com/tomtom215/cartographus/internal/recommend/vector"
)

func TestROCAUC_SimpleSeparable(t *testing.T) {
	got := ROCAUC([]float64{0.5, 0.2, 0.3, -1.0}, []float64{1, 1, 0, 0})
	want := 0.75
	if math.Abs(got-want) > 1e-5 {
		t.Errorf("ROCAUC = %v, want %v", got, want)
	}
}

func TestROCAUC_TieHandling(t *testing.T) {
	got := ROCAUC([]float64{0.5, 0.5, -1.0, 0.5}, []float64{1, 1, 0, 0})
	want := 0.75
	if math.Abs(got-want) > 1e-5 {
		t.Errorf("ROCAUC = %v, want %v", got, want)
	}
}

func TestSigmoid_PropertiesHold(t *testing.T) {
	if got := Sigmoid(0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Sigmoid(0) = %v, want 0.5", got)
	}
	for _, x := range []float64{-3, -0.5, 1, 4.2} {
		if got := Sigmoid(x) + Sigmoid(-x); math.Abs(got-1) > 1e-9 {
			t.Errorf("Sigmoid(%v)+Sigmoid(%v) = %v, want 1", x, -x, got)
		}
	}
	if Sigmoid(5) <= Sigmoid(1) {
		t.Error("Sigmoid is not monotonic")
	}
}

func TestLearner_FitReducesLossOnSeparableData(t *testing.T) {
	examples := []LabeledExample{
		{X: vector.Vector{1, 0}, Y: 1},
		{X: vector.Vector{1, 0}, Y: 1},
		{X: vector.Vector{0, 1}, Y: 0},
		{X: vector.Vector{0, 1}, Y: 0},
	}

	l := NewLearner(vector.Vector{0, 0}, 0, 0.001, 1e-4, 200, 1.0)
	initialLoss := l.computeLoss(l.w, examples)

	l.Fit(examples)
	finalLoss := l.computeLoss(l.w, examples)

	if finalLoss >= initialLoss {
		t.Errorf("final loss %v did not improve on initial loss %v", finalLoss, initialLoss)
	}

	w := l.Weights()
	if w.At(0) <= w.At(1) {
		t.Errorf("weights = %v, want w[0] > w[1] for this separable data", w)
	}
}

func TestLearner_StopsWithinIterationCap(t *testing.T) {
	examples := []LabeledExample{
		{X: vector.Vector{1}, Y: 1},
		{X: vector.Vector{-1}, Y: 0},
	}
	l := NewLearner(vector.Vector{0}, 0, 0, 1e-6, 5, 1.0)
	l.Fit(examples)
	// No assertion beyond "did not hang" — IterationCap bounds Fit's loop.
}
