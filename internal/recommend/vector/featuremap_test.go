// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vector

import "testing"

func TestFeatureMap_GetAbsentIsZero(t *testing.T) {
	f := NewFeatureMap()
	if got := f.Get("missing"); got != 0 {
		t.Errorf("Get(missing) = %v, want 0", got)
	}
}

func TestFeatureMap_EnsureHasIsIdempotent(t *testing.T) {
	f := NewFeatureMap()
	f.Set("k", 5)
	f.EnsureHas("k")
	if got := f.Get("k"); got != 5 {
		t.Errorf("Get(k) = %v, want 5 (EnsureHas must not overwrite)", got)
	}

	f.EnsureHas("new")
	if got := f.Get("new"); got != 0 {
		t.Errorf("Get(new) = %v, want 0", got)
	}
}

func TestFeatureMap_UnionCoversBothKeySets(t *testing.T) {
	a := FeatureMap{"x": 1, "y": 2}
	b := FeatureMap{"y": 3, "z": 4}

	entries := a.Union(b)
	got := make(map[string][2]float64, len(entries))
	for _, e := range entries {
		got[e.Key] = [2]float64{e.Self, e.Other}
	}

	want := map[string][2]float64{
		"x": {1, 0},
		"y": {2, 3},
		"z": {0, 4},
	}
	if len(got) != len(want) {
		t.Fatalf("len(union) = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("union[%s] = %v, want %v", k, got[k], v)
		}
	}
}

func TestFeatureMap_CombineOnlySelfKeys(t *testing.T) {
	a := FeatureMap{"x": 1, "y": 2}
	b := FeatureMap{"y": 3, "z": 4}

	entries := a.Combine(b)
	if len(entries) != 2 {
		t.Fatalf("len(combine) = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Key == "z" {
			t.Errorf("Combine must not include keys absent from self, found %s", e.Key)
		}
	}
}

func TestFeatureMap_Sub(t *testing.T) {
	a := FeatureMap{"x": 5, "y": 2}
	b := FeatureMap{"y": 1, "z": 3}

	diff := a.Sub(b)
	want := FeatureMap{"x": 5, "y": 1, "z": -3}
	if len(diff) != len(want) {
		t.Fatalf("len(diff) = %d, want %d", len(diff), len(want))
	}
	for k, v := range want {
		if diff[k] != v {
			t.Errorf("diff[%s] = %v, want %v", k, diff[k], v)
		}
	}
}

func TestFeatureMap_ProjectPreservesKeyOrder(t *testing.T) {
	f := FeatureMap{"a": 1, "b": 2, "c": 3}
	v := f.Project([]string{"c", "missing", "a"})

	want := Vector{3, 0, 1}
	if v.Len() != want.Len() {
		t.Fatalf("Len() = %d, want %d", v.Len(), want.Len())
	}
	for i := range want {
		if v.At(i) != want.At(i) {
			t.Errorf("v[%d] = %v, want %v", i, v.At(i), want.At(i))
		}
	}
}

func TestDotAligned_OnlyExampleKeysScored(t *testing.T) {
	example := FeatureMap{"a": 2, "b": 3}
	model := FeatureMap{"a": 1, "b": 1, "c": 100}

	if got, want := DotAligned(example, model), 5.0; got != want {
		t.Errorf("DotAligned = %v, want %v", got, want)
	}
}
