// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package ranklist

import (
	"sync"
	"testing"

	"github.com/tomtom215/cartographus/internal/recommend/decay"
)

func identityDecay() decay.Func {
	return func(score, lambda float64) float64 { return score }
}

func TestList_IncrementInsertsAndAccumulates(t *testing.T) {
	l := New(100, 1000, identityDecay())

	l.Increment("a", 1.0, decay.NearLambda)
	l.Increment("a", 2.0, decay.NearLambda)
	l.Increment("b", 5.0, decay.NearLambda)

	snap := l.Snapshot()
	want := map[string]float64{"a": 3.0, "b": 5.0}
	if len(snap) != len(want) {
		t.Fatalf("len(snap) = %d, want %d", len(snap), len(want))
	}
	for _, e := range snap {
		if e.Score != want[e.ID] {
			t.Errorf("snapshot[%s] = %v, want %v", e.ID, e.Score, want[e.ID])
		}
	}
}

func TestList_CompactionBoundsSize(t *testing.T) {
	l := New(3, 5, identityDecay())

	compactions := 0
	for i := 0; i < 10; i++ {
		l.Increment(string(rune('a'+i)), float64(i+1), decay.NearLambda)
		if l.nmods != 0 {
			continue
		}
		// This increment crossed max_modifications and compacted.
		compactions++
		if got := l.Len(); got > 3 {
			t.Errorf("Len() = %d, want <= 3 after compaction", got)
		}
	}
	if compactions == 0 {
		t.Fatal("expected at least one compaction in 10 increments with max_modifications 5")
	}
}

func TestList_CompactionResetsNmods(t *testing.T) {
	l := New(100, 2, identityDecay())

	l.Increment("a", 1, decay.NearLambda)
	l.Increment("b", 1, decay.NearLambda)
	l.Increment("c", 1, decay.NearLambda) // crosses max_modifications, compacts

	if l.nmods != 0 {
		t.Errorf("nmods = %d, want 0 after compaction", l.nmods)
	}
}

func TestList_BulkIncrementConcentratesHighestCount(t *testing.T) {
	l := New(64, 1000, identityDecay())

	counts := make(map[string]int)
	for i := 2; i <= 65; i++ {
		counts[string(rune('a'+i%26))+string(rune('A'+i/26))] = i
	}

	for id, c := range counts {
		ids := make([]string, c)
		for i := range ids {
			ids[i] = id
		}
		l.BulkIncrement(ids, 1.0, decay.NearLambda)
	}

	snap := l.Snapshot()
	if len(snap) < 63 {
		t.Errorf("len(snapshot) = %d, want >= 63", len(snap))
	}

	var maxID string
	maxCount := -1
	for id, c := range counts {
		if c > maxCount {
			maxCount = c
			maxID = id
		}
	}
	if len(snap) > 0 && snap[0].ID != maxID {
		t.Errorf("highest-count item not first: got %s, want %s", snap[0].ID, maxID)
	}
}

func TestList_ConcurrentIncrements(t *testing.T) {
	l := New(1000, 10000, identityDecay())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				l.Increment("shared", 1.0, decay.NearLambda)
			}
		}()
	}
	wg.Wait()

	snap := l.Snapshot()
	if len(snap) != 1 || snap[0].Score != 1000 {
		t.Errorf("concurrent increments: snapshot = %+v, want single entry with score 1000", snap)
	}
}
