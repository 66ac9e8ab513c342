// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package decay implements the closed-form scalar decay families applied
// to ranked-list scores during compaction.
package decay

import "math"

// Func is a pure scalar decay function applied to a ranked-list score.
type Func func(score, lambda float64) float64

// Family identifies one of the enumerated decay function families.
type Family string

const (
	// Linear decays proportionally to lambda with an additive offset.
	Linear Family = "linear"
	// Ln1p decays via the natural log of one plus the score.
	Ln1p Family = "ln1p"
	// Log decays via an arbitrary-base logarithm with an offset.
	Log Family = "log"
	// ExpMul decays multiplicatively via a base raised to a scaled lambda.
	ExpMul Family = "exp_mul"
)

// Params configures a decay family. Not every field applies to every
// family; see New for which fields each family reads.
type Params struct {
	Coefficient float64
	Offset      float64
	Base        float64
	PowMul      float64
}

// New builds the Func for the given family and parameters.
func New(family Family, p Params) Func {
	switch family {
	case Linear:
		return func(score, lambda float64) float64 {
			return score*p.Coefficient*lambda + p.Offset
		}
	case Ln1p:
		return func(score, lambda float64) float64 {
			return math.Log1p(score) * p.Coefficient * lambda
		}
	case Log:
		return func(score, lambda float64) float64 {
			return logBase(score+p.Offset, p.Base) * p.Coefficient * lambda
		}
	case ExpMul:
		return func(score, lambda float64) float64 {
			return score * math.Pow(p.Base, p.PowMul*lambda)
		}
	default:
		return func(score, lambda float64) float64 { return score }
	}
}

// logBase returns the logarithm of x in the given base. Falls back to
// natural log when base is not usable (<=0 or ==1).
func logBase(x, base float64) float64 {
	if base <= 0 || base == 1 {
		return math.Log(x)
	}
	return math.Log(x) / math.Log(base)
}

// HalfLife enumerates the scope half-life classes ranked lists decay
// over, from half an hour to a month.
type HalfLife int

// Half-life scopes for time-scoped top/popular lists, in milliseconds.
const (
	HalfLife30m HalfLife = 30 * 60 * 1000
	HalfLife1h  HalfLife = 60 * 60 * 1000
	HalfLife2h  HalfLife = 2 * 60 * 60 * 1000
	HalfLife4h  HalfLife = 4 * 60 * 60 * 1000
	HalfLife8h  HalfLife = 8 * 60 * 60 * 1000
	HalfLife1d  HalfLife = 24 * 60 * 60 * 1000
	HalfLife30d HalfLife = 30 * 24 * 60 * 60 * 1000
)

// Scopes lists every enumerated half-life class, in ascending order.
var Scopes = []HalfLife{HalfLife30m, HalfLife1h, HalfLife2h, HalfLife4h, HalfLife8h, HalfLife1d, HalfLife30d}

// String returns a short scope identifier suitable for use in storage keys.
func (h HalfLife) String() string {
	switch h {
	case HalfLife30m:
		return "30m"
	case HalfLife1h:
		return "1h"
	case HalfLife2h:
		return "2h"
	case HalfLife4h:
		return "4h"
	case HalfLife8h:
		return "8h"
	case HalfLife1d:
		return "1d"
	case HalfLife30d:
		return "30d"
	default:
		return "unknown"
	}
}

// Lambda computes the elapsed-time multiple of the scope's half-life,
// for use as the decay function's lambda argument on a time-scoped list.
func (h HalfLife) Lambda(sinceEpochMS int64) float64 {
	if h <= 0 {
		return 0
	}
	return float64(sinceEpochMS) / float64(h)
}

// NearLambda is the lambda value used for the (untimed) co-occurrence
// near list: decay is applied once per compaction regardless of elapsed
// wall-clock time.
const NearLambda = 1.0
