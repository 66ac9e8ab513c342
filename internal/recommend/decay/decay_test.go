// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package decay

import (
	"math"
	"testing"
)

func TestNew_Linear(t *testing.T) {
	f := New(Linear, Params{Coefficient: 0.5, Offset: 1})
	got := f(10, 2)
	want := 10*0.5*2 + 1
	if got != want {
		t.Errorf("Linear(10, 2) = %v, want %v", got, want)
	}
}

func TestNew_Ln1p(t *testing.T) {
	f := New(Ln1p, Params{Coefficient: 2})
	got := f(math.E-1, 1)
	want := math.Log1p(math.E-1) * 2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Ln1p = %v, want %v", got, want)
	}
}

func TestNew_Log(t *testing.T) {
	f := New(Log, Params{Coefficient: 1, Offset: 0, Base: 2})
	got := f(8, 1)
	want := 3.0 // log2(8) = 3
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Log base 2 of 8 = %v, want %v", got, want)
	}
}

func TestNew_LogFallsBackToNaturalLogForInvalidBase(t *testing.T) {
	f := New(Log, Params{Coefficient: 1, Offset: 0, Base: 1})
	got := f(10, 1)
	want := math.Log(10)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Log with base=1 = %v, want natural log %v", got, want)
	}
}

func TestNew_ExpMul(t *testing.T) {
	f := New(ExpMul, Params{Base: 2, PowMul: 1})
	got := f(5, 3)
	want := 5 * math.Pow(2, 3)
	if got != want {
		t.Errorf("ExpMul(5, 3) = %v, want %v", got, want)
	}
}

func TestHalfLife_StringRoundTrip(t *testing.T) {
	cases := map[HalfLife]string{
		HalfLife30m: "30m",
		HalfLife1h:  "1h",
		HalfLife2h:  "2h",
		HalfLife4h:  "4h",
		HalfLife8h:  "8h",
		HalfLife1d:  "1d",
		HalfLife30d: "30d",
	}
	for h, want := range cases {
		if got := h.String(); got != want {
			t.Errorf("HalfLife(%d).String() = %q, want %q", h, got, want)
		}
	}
}

func TestHalfLife_LambdaIsElapsedOverHalfLife(t *testing.T) {
	h := HalfLife1h
	got := h.Lambda(int64(h) * 3)
	if got != 3 {
		t.Errorf("Lambda(3x half-life) = %v, want 3", got)
	}

	got = h.Lambda(int64(h) / 2)
	if got != 0.5 {
		t.Errorf("Lambda(half of half-life) = %v, want 0.5", got)
	}
}

func TestScopes_EnumeratesAllSevenAscending(t *testing.T) {
	if len(Scopes) != 7 {
		t.Fatalf("len(Scopes) = %d, want 7", len(Scopes))
	}
	for i := 1; i < len(Scopes); i++ {
		if Scopes[i] <= Scopes[i-1] {
			t.Errorf("Scopes not strictly ascending at index %d", i)
		}
	}
}
