// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/cartographus/internal/recommend/vector"
	"github.com/tomtom215/cartographus/internal/recostore"
)

// minLabeledFeatures is the fixed signal floor below which a training
// tick is skipped as too sparse to fit on.
const minLabeledFeatures = 64

// Train runs one training tick: pluck recently-completed activities,
// build labeled examples, fit a candidate model, and promote it only if
// its held-out ROC-AUC improves on the current model's. A tick with too
// little signal, or whose candidate model does not improve, returns a
// *recostore.TrainingSkipped — not an error.
func (e *Engine) Train(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return fmt.Errorf("training already in progress")
	}
	defer e.trainMu.Unlock()

	if !e.trainLimiter.Allow() {
		return &recostore.TrainingSkipped{Reason: fmt.Sprintf("training ran within the last %s, skipping", e.cfg.Training.MinInterval)}
	}

	e.training.Store(true)
	defer e.training.Store(false)
	e.trainCount.Add(1)

	activities, err := e.store.PluckAll(ctx)
	if err != nil {
		return fmt.Errorf("pluck activities: %w", err)
	}
	if len(activities) == 0 {
		return &recostore.TrainingSkipped{Reason: "no activities to train on"}
	}

	examples := labelActivities(activities, e.cfg.MetaKeys)
	if len(examples) < minLabeledFeatures {
		return &recostore.TrainingSkipped{Reason: fmt.Sprintf("only %d labeled features, need %d", len(examples), minLabeledFeatures)}
	}

	model, err := e.store.FindDefaultModel(ctx)
	if err != nil {
		return fmt.Errorf("resolve current model: %w", err)
	}

	keys := unionKeys(model.Weights, examples)
	dense := projectExamples(examples, keys)
	modelVec := model.Weights.Project(keys)

	split := (len(dense) * 2) / 3
	trainSet, holdout := dense[:split], dense[split:]

	baseline := evaluateAUC(modelVec, holdout)

	learner := NewLearner(modelVec, e.cfg.Training.L1, e.cfg.Training.L2, e.cfg.Training.GradientCap, e.cfg.Training.IterationCap, e.cfg.Training.InitialLearningRate)
	learner.Fit(trainSet)
	candidate := learner.Weights()

	newAUC := evaluateAUC(candidate, holdout)

	refs := make([]recostore.ActivityRef, len(activities))
	for i, a := range activities {
		refs[i] = recostore.ActivityRef{Part: a.Part, ID: a.ID}
	}

	if newAUC <= baseline {
		if err := e.store.DeleteAll(ctx, refs); err != nil {
			return fmt.Errorf("delete plucked activities: %w", err)
		}
		return &recostore.TrainingSkipped{Reason: fmt.Sprintf("held-out AUC %.4f did not improve on baseline %.4f", newAUC, baseline)}
	}

	newModel := Model{Weights: vector.FeatureMap{}}
	for i, k := range keys {
		newModel.Weights[k] = candidate.At(i)
	}
	if err := e.store.SetDefaultModel(ctx, newModel); err != nil {
		return fmt.Errorf("promote model: %w", err)
	}
	e.modelCache.Clear()
	e.modelVer.Add(1)
	e.lastTrained.Store(time.Now().UnixMilli())

	if err := e.store.DeleteAll(ctx, refs); err != nil {
		return fmt.Errorf("delete plucked activities: %w", err)
	}
	return nil
}

// labelActivities builds one labeled example per visible example across
// every plucked activity: 1.0 if the item was chosen, else 0.0.
func labelActivities(activities []Activity, metaKeys map[string]MetaKeyKind) []Example {
	var examples []Example
	for _, a := range activities {
		for _, v := range a.Visible {
			label := 0.0
			if a.IsChosen(v.ItemID) {
				label = 1.0
			}
			features := ExtractFeatures(a.Current, v.Item, v.Signals, metaKeys)
			examples = append(examples, Example{Features: features, Label: label})
		}
	}
	return examples
}

// unionKeys collects every feature key seen across examples plus the
// existing model's keys, sorted for a stable projection ordering.
func unionKeys(model vector.FeatureMap, examples []Example) []string {
	seen := make(map[string]struct{})
	for k := range model {
		seen[k] = struct{}{}
	}
	for _, ex := range examples {
		for k := range ex.Features {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func projectExamples(examples []Example, keys []string) []LabeledExample {
	out := make([]LabeledExample, len(examples))
	for i, ex := range examples {
		out[i] = LabeledExample{X: ex.Features.Project(keys), Y: ex.Label}
	}
	return out
}

func evaluateAUC(w vector.Vector, holdout []LabeledExample) float64 {
	predictions := make([]float64, len(holdout))
	labels := make([]float64, len(holdout))
	for i, ex := range holdout {
		predictions[i] = predict(w, ex.X)
		labels[i] = ex.Y
	}
	return ROCAUC(predictions, labels)
}
