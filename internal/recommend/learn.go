// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"math"
	"sort"

	"github.com/tomtom215/cartographus/internal/recommend/vector"
)

// LabeledExample is one training row: a dense feature vector aligned to
// a shared key ordering, and its binary label.
type LabeledExample struct {
	X vector.Vector
	Y float64
}

// Learner trains a linear classifier by gradient descent with a
// Barzilai-Borwein step-size estimate, with optional L1/L2
// regularization.
type Learner struct {
	L1, L2      float64
	GradientCap float64
	IterationCap int

	w, wPrev vector.Vector
	g, gPrev vector.Vector
	loss     float64
	eta      *float64
}

// NewLearner seeds the learner at w0 with an initial learning rate.
func NewLearner(w0 vector.Vector, l1, l2, gradientCap float64, iterationCap int, initialLearningRate float64) *Learner {
	eta := initialLearningRate
	l := &Learner{
		L1:           l1,
		L2:           l2,
		GradientCap:  gradientCap,
		IterationCap: iterationCap,
		w:            append(vector.Vector(nil), w0...),
		eta:          &eta,
	}
	return l
}

// Weights returns the learner's current weight vector.
func (l *Learner) Weights() vector.Vector {
	return append(vector.Vector(nil), l.w...)
}

func predict(w, x vector.Vector) float64 {
	return Sigmoid(vector.Dot(w, x))
}

// subtract returns a - b as a dense vector, zero-extending the shorter side.
func subtract(a, b vector.Vector) vector.Vector {
	pairs := vector.Combine(a, b)
	out := make(vector.Vector, len(pairs))
	for i, p := range pairs {
		out[i] = p.A - p.B
	}
	return out
}

// computeLoss computes the regularized log loss over examples.
func (l *Learner) computeLoss(w vector.Vector, examples []LabeledExample) float64 {
	n := float64(len(examples))
	var sum float64
	for _, ex := range examples {
		p := predict(w, ex.X)
		p = clampProbability(p)
		sum += ex.Y*math.Log(p) + (1-ex.Y)*math.Log(1-p)
	}
	loss := -sum / n

	var l1, l2 float64
	for i := 0; i < w.Len(); i++ {
		l1 += math.Abs(w.At(i))
		l2 += w.At(i) * w.At(i)
	}
	loss += l.L1*l1 + l.L2*l2
	return loss
}

// computeGradient computes the regularized gradient of the loss at w.
func (l *Learner) computeGradient(w vector.Vector, examples []LabeledExample) vector.Vector {
	dim := w.Len()
	for _, ex := range examples {
		if ex.X.Len() > dim {
			dim = ex.X.Len()
		}
	}

	grad := make(vector.Vector, dim)
	n := float64(len(examples))
	for _, ex := range examples {
		p := predict(w, ex.X)
		diff := p - ex.Y
		for i := 0; i < ex.X.Len(); i++ {
			grad[i] += diff * ex.X.At(i)
		}
	}
	for i := range grad {
		grad[i] /= n
		wi := w.At(i)
		if wi > 0 {
			grad[i] += l.L1
		} else if wi < 0 {
			grad[i] -= l.L1
		}
		grad[i] += 2 * l.L2 * wi
	}
	return grad
}

func clampProbability(p float64) float64 {
	const eps = 1e-12
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}

// Fit runs gradient descent with a Barzilai-Borwein step-size estimate
// until the gradient norm drops to GradientCap, the iteration cap is
// reached, or the step size collapses to None (signaled by a nil eta).
func (l *Learner) Fit(examples []LabeledExample) {
	l.g = l.computeGradient(l.w, examples)
	l.loss = l.computeLoss(l.w, examples)

	for iter := 0; iter < l.IterationCap; iter++ {
		if l.eta == nil {
			return
		}
		if vector.Magnitude(l.g) <= l.GradientCap {
			return
		}

		candidate := stepOnce(l.w, l.g, *l.eta)
		candidateLoss := l.computeLoss(candidate, examples)

		for candidateLoss > l.loss {
			next := *l.eta / 2
			if next <= 0 {
				l.eta = nil
				return
			}
			l.eta = &next
			candidate = stepOnce(l.w, l.g, *l.eta)
			candidateLoss = l.computeLoss(candidate, examples)
		}

		l.wPrev, l.gPrev = l.w, l.g
		l.w = candidate
		l.g = l.computeGradient(l.w, examples)
		l.loss = l.computeLoss(l.w, examples)

		l.reestimateStep()
	}
}

func stepOnce(w, g vector.Vector, eta float64) vector.Vector {
	dim := w.Len()
	if g.Len() > dim {
		dim = g.Len()
	}
	out := make(vector.Vector, dim)
	for i := 0; i < dim; i++ {
		out[i] = w.At(i) - eta*g.At(i)
	}
	return out
}

func (l *Learner) reestimateStep() {
	if l.wPrev == nil {
		return
	}
	dw := subtract(l.w, l.wPrev)
	dg := subtract(l.g, l.gPrev)

	dgdg := vector.Dot(dg, dg)
	if dgdg == 0 {
		l.eta = nil
		return
	}
	eta := math.Abs(vector.Dot(dw, dg)) / dgdg
	l.eta = &eta
}

// ROCAUC computes the area under the ROC curve for (prediction, label)
// pairs by sorting predictions descending and integrating the
// (FPR, TPR) polygon via the trapezoidal rule.
func ROCAUC(predictions []float64, labels []float64) float64 {
	type pair struct {
		p, y float64
	}
	pairs := make([]pair, len(predictions))
	var positives, negatives float64
	for i := range predictions {
		pairs[i] = pair{p: predictions[i], y: labels[i]}
		if labels[i] == 1 {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0.5
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].p > pairs[j].p })

	// Tied predictions are consumed as one batch step so the curve does
	// not depend on how ties happen to be ordered going in.
	var tp, fp float64
	var prevFPR, prevTPR float64
	var auc float64
	for i := 0; i < len(pairs); {
		j := i
		for j < len(pairs) && pairs[j].p == pairs[i].p {
			if pairs[j].y == 1 {
				tp++
			} else {
				fp++
			}
			j++
		}
		tpr := tp / positives
		fpr := fp / negatives
		auc += (fpr - prevFPR) * (tpr + prevTPR) / 2
		prevFPR, prevTPR = fpr, tpr
		i = j
	}
	return auc
}
