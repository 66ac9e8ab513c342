// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"time"

	"github.com/tomtom215/cartographus/internal/recommend/vector"
)

// Item is a recommendable entity identified by (Part, ID). Views is
// monotonically increasing; Meta maps a metadata key to a set of string
// tags and is otherwise immutable once inserted.
type Item struct {
	ID    string              `json:"id"`
	Part  string              `json:"part"`
	Views uint64              `json:"views"`
	Meta  map[string][]string `json:"meta"`
}

// MetaValues returns the tags for key, or nil if absent.
func (it Item) MetaValues(key string) []string {
	if it.Meta == nil {
		return nil
	}
	return it.Meta[key]
}

// MetaOverlap counts the tags key has in common between it and other.
func (it Item) MetaOverlap(other Item, key string) float64 {
	a := it.MetaValues(key)
	if len(a) == 0 {
		return 0
	}
	bSet := make(map[string]struct{}, len(other.MetaValues(key)))
	for _, v := range other.MetaValues(key) {
		bSet[v] = struct{}{}
	}
	var n float64
	for _, v := range a {
		if _, ok := bSet[v]; ok {
			n++
		}
	}
	return n
}

// User is identified by (Part, ID) and carries a bounded FIFO of
// recently-viewed item ids, most recent first.
type User struct {
	ID      string   `json:"id"`
	Part    string   `json:"part"`
	History []string `json:"history"`
}

// PushHistory prepends itemID to the history, truncating to maxLen.
func (u *User) PushHistory(itemID string, maxLen int) {
	history := append([]string{itemID}, u.History...)
	if len(history) > maxLen {
		history = history[:maxLen]
	}
	u.History = history
}

// CandidatePosition records a candidate's rank and accumulated score in
// one ranked list at the time it was surfaced.
type CandidatePosition struct {
	Value float64 `json:"value"`
	Rank  int     `json:"rank"`
}

// CandidateSignals is the full set of list positions a candidate carried
// when it was assembled, keyed by decaying-list origin. Near is present
// only when the candidate came from the near list; Top and Pop are keyed
// by scope string (e.g. "1h", "30d").
type CandidateSignals struct {
	Near *CandidatePosition          `json:"near,omitempty"`
	Top  map[string]CandidatePosition `json:"top,omitempty"`
	Pop  map[string]CandidatePosition `json:"pop,omitempty"`
}

// VisibleExample is one item shown to the user as part of a
// recommendation response: a value-captured item snapshot (so a later
// item deletion cannot invalidate a past activity) plus the candidate
// signals used to score it.
type VisibleExample struct {
	ItemID  string           `json:"item_id"`
	Item    Item             `json:"item"`
	Score   float64          `json:"score"`
	Signals CandidateSignals `json:"signals"`
}

// Activity records one recommendation event: the current item the
// request was anchored on, the items shown, and (once feedback arrives)
// which of them the user chose. Visible is immutable after creation;
// Chosen may be assigned exactly once.
type Activity struct {
	ID        string           `json:"id"`
	Part      string           `json:"part"`
	Current   Item             `json:"current"`
	Visible   []VisibleExample `json:"visible"`
	Chosen    []string         `json:"chosen,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// IsChosen reports whether itemID is present in Chosen.
func (a Activity) IsChosen(itemID string) bool {
	for _, id := range a.Chosen {
		if id == itemID {
			return true
		}
	}
	return false
}

// Model is a feature map serving as linear weights for one partition,
// or the default (global) model when Part is empty.
type Model struct {
	Part    string            `json:"part,omitempty"`
	Weights vector.FeatureMap `json:"weights"`
}

// ScoredCandidate pairs an item id with its model score, used both for
// the candidate-selection importance ordering and for the final
// recommendation response.
type ScoredCandidate struct {
	ItemID  string
	Score   float64
	Signals CandidateSignals
}

// Example is a labeled training row: the feature map extracted for one
// candidate against the current item, and (during training) the label
// derived from whether the candidate was chosen.
type Example struct {
	Features vector.FeatureMap
	Label    float64
}
