// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tomtom215/cartographus/internal/recommend/decay"
)

// MetaKeyKind classifies how a metadata key contributes to feature
// extraction: Overlap produces a `meta:K:overlap` feature, Ignore
// contributes nothing.
type MetaKeyKind string

const (
	MetaOverlap MetaKeyKind = "overlap"
	MetaIgnore  MetaKeyKind = "ignore"
)

// RankedListConfig configures one kind of decaying ranked list (near,
// top, or popular).
type RankedListConfig struct {
	// MaxCount bounds cardinality after compaction.
	// Default: near=500, top/pop=200.
	MaxCount int `json:"max_count"`

	// MaxModifications triggers compaction once nmods exceeds it.
	// Default: near=256, top/pop=128.
	MaxModifications int `json:"max_modifications"`

	// DecayFamily selects the scalar decay function.
	// Default: ln1p for near, linear for top/pop.
	DecayFamily decay.Family `json:"decay_family"`

	// DecayParams parameterizes DecayFamily.
	DecayParams decay.Params `json:"decay_params"`
}

// Config contains all configuration for the recommendation core.
type Config struct {
	// Near configures the co-occurrence ranked list.
	Near RankedListConfig `json:"near"`

	// Top configures the time-scoped "most viewed" ranked lists.
	Top RankedListConfig `json:"top"`

	// Popular configures the time-scoped popularity ranked lists.
	Popular RankedListConfig `json:"popular"`

	// MaxCandidateCount bounds the candidate set size before scoring.
	// Default: 200.
	MaxCandidateCount int `json:"max_candidate_count"`

	// UpgradeChance is the probability of the exploratory tail-into-prefix
	// swap applied after scoring.
	// Default: 0.05.
	UpgradeChance float64 `json:"upgrade_chance"`

	// UserHistoryLength bounds each user's FIFO view history.
	// Default: 50.
	UserHistoryLength int `json:"user_history_length"`

	// MetaKeys lists the metadata keys feature extraction considers,
	// and whether each contributes an overlap feature.
	// Default: empty (no metadata features).
	MetaKeys map[string]MetaKeyKind `json:"meta_keys"`

	// Training contains training-tick parameters.
	Training TrainingConfig `json:"training"`

	// Activity contains activity TTL and default-list parameters.
	Activity ActivityConfig `json:"activity"`

	// ViewCostWindowMS is the divisor for the adaptive view-cost sigmoid
	// (mean inter-view interval in milliseconds over this window maps to
	// a cost near 0.5).
	// Default: 60000.
	ViewCostWindowMS float64 `json:"view_cost_window_ms"`

	// Seed is the random seed used for exploration swaps.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// TrainingConfig contains the logistic-regression training schedule and
// Barzilai–Borwein stopping parameters.
type TrainingConfig struct {
	// Interval is the time between scheduled training ticks.
	// Default: 5m.
	Interval time.Duration `json:"interval"`

	// Timeout bounds a single training tick.
	// Default: 2m.
	Timeout time.Duration `json:"timeout"`

	// MinInterval floors the spacing between two training ticks that
	// actually run their fit-and-evaluate body, regardless of what
	// triggered them (the periodic ticker or a manual
	// POST /api/model/{name}/train). It guards against a burst of
	// manual calls repeatedly draining and rescanning the store; it
	// does not apply to the mutual-exclusion TryLock, which still
	// rejects a tick that arrives while one is already running.
	// Default: 30s.
	MinInterval time.Duration `json:"min_interval"`

	// MinLabeledFeatures is validated (must be positive) and carried in
	// the config, but Train does not read it: a tick with fewer than 64
	// labeled examples is always skipped (minLabeledFeatures in train.go).
	// Default: 64 (fixed by spec).
	MinLabeledFeatures int `json:"min_labeled_features"`

	// GradientCap stops training once the gradient norm falls at or
	// below this value.
	// Default: 1e-4.
	GradientCap float64 `json:"gradient_cap"`

	// IterationCap bounds the number of fit steps per tick.
	// Default: 500.
	IterationCap int `json:"iteration_cap"`

	// L1 is the L1 regularization coefficient.
	// Default: 0.0001.
	L1 float64 `json:"l1"`

	// L2 is the L2 regularization coefficient.
	// Default: 0.001.
	L2 float64 `json:"l2"`

	// InitialLearningRate seeds eta before the first Barzilai–Borwein
	// reestimation.
	// Default: 0.1.
	InitialLearningRate float64 `json:"initial_learning_rate"`
}

// ActivityConfig contains activity and default-activity-list lifetimes.
type ActivityConfig struct {
	// UnchosenTTL is how long an activity without a chosen item survives.
	// Default: 10m.
	UnchosenTTL time.Duration `json:"unchosen_ttl"`

	// ChosenTTL is how long an activity with a chosen item survives.
	// Default: 2h.
	ChosenTTL time.Duration `json:"chosen_ttl"`

	// DefaultListTTL is how long the default activity list survives.
	// Default: 2h.
	DefaultListTTL time.Duration `json:"default_list_ttl"`

	// DefaultListCap bounds the default activity list length.
	// Default: 256.
	DefaultListCap int `json:"default_list_cap"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Near: RankedListConfig{
			MaxCount:         500,
			MaxModifications: 256,
			DecayFamily:      decay.Ln1p,
			DecayParams:      decay.Params{Coefficient: 1.0},
		},
		Top: RankedListConfig{
			MaxCount:         200,
			MaxModifications: 128,
			DecayFamily:      decay.Linear,
			DecayParams:      decay.Params{Coefficient: 0.5},
		},
		Popular: RankedListConfig{
			MaxCount:         200,
			MaxModifications: 128,
			DecayFamily:      decay.Linear,
			DecayParams:      decay.Params{Coefficient: 0.5},
		},
		MaxCandidateCount: 200,
		UpgradeChance:     0.05,
		UserHistoryLength: 50,
		MetaKeys:          map[string]MetaKeyKind{},
		Training: TrainingConfig{
			Interval:            5 * time.Minute,
			Timeout:             2 * time.Minute,
			MinInterval:         30 * time.Second,
			MinLabeledFeatures:  64,
			GradientCap:         1e-4,
			IterationCap:        500,
			L1:                  0.0001,
			L2:                  0.001,
			InitialLearningRate: 0.1,
		},
		Activity: ActivityConfig{
			UnchosenTTL:    10 * time.Minute,
			ChosenTTL:      2 * time.Hour,
			DefaultListTTL: 2 * time.Hour,
			DefaultListCap: 256,
		},
		ViewCostWindowMS: 60000,
		Seed:             42,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for name, rl := range map[string]RankedListConfig{"near": c.Near, "top": c.Top, "popular": c.Popular} {
		if rl.MaxCount < 1 {
			return fmt.Errorf("%s.max_count must be positive, got %d", name, rl.MaxCount)
		}
		if rl.MaxModifications < 1 {
			return fmt.Errorf("%s.max_modifications must be positive, got %d", name, rl.MaxModifications)
		}
	}

	if c.MaxCandidateCount < 1 {
		return fmt.Errorf("max_candidate_count must be positive, got %d", c.MaxCandidateCount)
	}
	if c.UpgradeChance < 0 || c.UpgradeChance > 1 {
		return fmt.Errorf("upgrade_chance must be in [0, 1], got %f", c.UpgradeChance)
	}
	if c.UserHistoryLength < 1 {
		return fmt.Errorf("user_history_length must be positive, got %d", c.UserHistoryLength)
	}

	if c.Training.MinInterval < 0 {
		return fmt.Errorf("training.min_interval must not be negative, got %v", c.Training.MinInterval)
	}
	if c.Training.MinLabeledFeatures < 1 {
		return fmt.Errorf("training.min_labeled_features must be positive, got %d", c.Training.MinLabeledFeatures)
	}
	if c.Training.IterationCap < 1 {
		return fmt.Errorf("training.iteration_cap must be positive, got %d", c.Training.IterationCap)
	}
	if c.Training.GradientCap <= 0 {
		return fmt.Errorf("training.gradient_cap must be positive, got %f", c.Training.GradientCap)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}

	if c.Activity.DefaultListCap < 1 {
		return fmt.Errorf("activity.default_list_cap must be positive, got %d", c.Activity.DefaultListCap)
	}

	if c.ViewCostWindowMS <= 0 {
		return fmt.Errorf("view_cost_window_ms must be positive, got %f", c.ViewCostWindowMS)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	metaKeys := make(map[string]MetaKeyKind, len(c.MetaKeys))
	for k, v := range c.MetaKeys {
		metaKeys[k] = v
	}
	clone := *c
	clone.MetaKeys = metaKeys
	return &clone
}

// MarshalJSON implements custom JSON marshaling for duration fields.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		Training struct {
			Interval            string  `json:"interval"`
			Timeout             string  `json:"timeout"`
			MinInterval         string  `json:"min_interval"`
			MinLabeledFeatures  int     `json:"min_labeled_features"`
			GradientCap         float64 `json:"gradient_cap"`
			IterationCap        int     `json:"iteration_cap"`
			L1                  float64 `json:"l1"`
			L2                  float64 `json:"l2"`
			InitialLearningRate float64 `json:"initial_learning_rate"`
		} `json:"training"`
		Activity struct {
			UnchosenTTL    string `json:"unchosen_ttl"`
			ChosenTTL      string `json:"chosen_ttl"`
			DefaultListTTL string `json:"default_list_ttl"`
			DefaultListCap int    `json:"default_list_cap"`
		} `json:"activity"`
	}{
		Alias: (*Alias)(c),
		Training: struct {
			Interval            string  `json:"interval"`
			Timeout             string  `json:"timeout"`
			MinInterval         string  `json:"min_interval"`
			MinLabeledFeatures  int     `json:"min_labeled_features"`
			GradientCap         float64 `json:"gradient_cap"`
			IterationCap        int     `json:"iteration_cap"`
			L1                  float64 `json:"l1"`
			L2                  float64 `json:"l2"`
			InitialLearningRate float64 `json:"initial_learning_rate"`
		}{
			Interval:            c.Training.Interval.String(),
			Timeout:             c.Training.Timeout.String(),
			MinInterval:         c.Training.MinInterval.String(),
			MinLabeledFeatures:  c.Training.MinLabeledFeatures,
			GradientCap:         c.Training.GradientCap,
			IterationCap:        c.Training.IterationCap,
			L1:                  c.Training.L1,
			L2:                  c.Training.L2,
			InitialLearningRate: c.Training.InitialLearningRate,
		},
		Activity: struct {
			UnchosenTTL    string `json:"unchosen_ttl"`
			ChosenTTL      string `json:"chosen_ttl"`
			DefaultListTTL string `json:"default_list_ttl"`
			DefaultListCap int    `json:"default_list_cap"`
		}{
			UnchosenTTL:    c.Activity.UnchosenTTL.String(),
			ChosenTTL:      c.Activity.ChosenTTL.String(),
			DefaultListTTL: c.Activity.DefaultListTTL.String(),
			DefaultListCap: c.Activity.DefaultListCap,
		},
	})
}
