// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vector

import "sort"

// FeatureMap is a sparse string-keyed mapping to float64 values, with an
// implicit zero default for absent keys. It backs both example features
// and model weights.
type FeatureMap map[string]float64

// NewFeatureMap returns an empty feature map.
func NewFeatureMap() FeatureMap {
	return make(FeatureMap)
}

// Set inserts or overwrites the value for key.
func (f FeatureMap) Set(key string, value float64) {
	f[key] = value
}

// EnsureHas inserts key with value zero if it is not already present.
// Idempotent when the key already exists.
func (f FeatureMap) EnsureHas(key string) {
	if _, ok := f[key]; !ok {
		f[key] = 0
	}
}

// Get returns the value for key, or zero if absent.
func (f FeatureMap) Get(key string) float64 {
	return f[key]
}

// Keys returns the map's keys in no particular order.
func (f FeatureMap) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	return keys
}

// SortedKeys returns the map's keys in ascending lexical order.
func (f FeatureMap) SortedKeys() []string {
	keys := f.Keys()
	sort.Strings(keys)
	return keys
}

// UnionEntry is one row emitted by Union: the value from self and from
// other at a shared key, each defaulting to zero when absent.
type UnionEntry struct {
	Key         string
	Self, Other float64
}

// Union emits one UnionEntry per key present in f or other.
func (f FeatureMap) Union(other FeatureMap) []UnionEntry {
	seen := make(map[string]struct{}, len(f)+len(other))
	entries := make([]UnionEntry, 0, len(f)+len(other))
	for k, v := range f {
		seen[k] = struct{}{}
		entries = append(entries, UnionEntry{Key: k, Self: v, Other: other[k]})
	}
	for k, v := range other {
		if _, ok := seen[k]; ok {
			continue
		}
		entries = append(entries, UnionEntry{Key: k, Self: 0, Other: v})
	}
	return entries
}

// Combine emits one UnionEntry per key present in f only, pairing each
// with the corresponding value (or zero) from other. Used to align a
// feature vector against a model, scoring only the intersection that
// matters to the example.
func (f FeatureMap) Combine(other FeatureMap) []UnionEntry {
	entries := make([]UnionEntry, 0, len(f))
	for k, v := range f {
		entries = append(entries, UnionEntry{Key: k, Self: v, Other: other[k]})
	}
	return entries
}

// Sub returns a new map over the union of keys, holding f[k] - other[k].
func (f FeatureMap) Sub(other FeatureMap) FeatureMap {
	result := make(FeatureMap, len(f)+len(other))
	for _, e := range f.Union(other) {
		result[e.Key] = e.Self - e.Other
	}
	return result
}

// Project maps f onto a dense Vector using the caller-supplied key
// order. Any key absent from f contributes zero at its slot; the order
// of keys is preserved exactly as given.
func (f FeatureMap) Project(keys []string) Vector {
	v := make(Vector, len(keys))
	for i, k := range keys {
		v[i] = f[k]
	}
	return v
}

// DotAligned scores f against a model by summing products over the
// intersection of keys present in f, defaulting the model's value to
// zero for any key f does not carry.
func DotAligned(example, model FeatureMap) float64 {
	var sum float64
	for k, v := range example {
		sum += v * model[k]
	}
	return sum
}
