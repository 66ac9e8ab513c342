// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"fmt"
	"math"

	"github.com/tomtom215/cartographus/internal/recommend/vector"
)

// ExtractFeatures builds the feature map for one candidate scored
// against the current item, per the list-position and metadata-overlap
// feature families.
func ExtractFeatures(current, candidateItem Item, signals CandidateSignals, metaKeys map[string]MetaKeyKind) vector.FeatureMap {
	f := vector.NewFeatureMap()

	nearValue, nearRank := 0.0, 0.0
	if signals.Near != nil {
		nearValue = signals.Near.Value
		nearRank = float64(signals.Near.Rank)
	}
	f.Set("list:near:value:ln1p", math.Log1p(nearValue))
	f.Set("list:near:rank", nearRank)

	for scope, pos := range signals.Top {
		f.Set(fmt.Sprintf("list:top:%s:value:ln1p", scope), math.Log1p(pos.Value))
		f.Set(fmt.Sprintf("list:top:%s:rank", scope), float64(pos.Rank))
	}
	for scope, pos := range signals.Pop {
		f.Set(fmt.Sprintf("list:pop:%s:value:ln1p", scope), math.Log1p(pos.Value))
		f.Set(fmt.Sprintf("list:pop:%s:rank", scope), float64(pos.Rank))
	}

	for key, kind := range metaKeys {
		if kind != MetaOverlap {
			continue
		}
		f.Set(fmt.Sprintf("meta:%s:overlap", key), current.MetaOverlap(candidateItem, key))
	}

	return f
}

// Sigmoid is the logistic function, used both for scoring and for the
// adaptive view-cost estimator.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Score aligns a candidate's features against the model (intersection
// of the candidate's own keys) and returns the sigmoid of the summed
// products.
func Score(features, model vector.FeatureMap) float64 {
	return Sigmoid(vector.DotAligned(features, model))
}
