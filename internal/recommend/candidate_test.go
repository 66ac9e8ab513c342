// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/cartographus/internal/recommend/decay"
	"github.com/tomtom215/cartographus/internal/recostore"
)

// fakeStore implements recostore.Store with just enough behavior to
// drive candidate selection; every other method is a harmless no-op.
type fakeStore struct {
	near map[string][]recostore.NearEntry
	top  map[decay.HalfLife][]recostore.NearEntry
	pop  map[decay.HalfLife][]recostore.NearEntry
}

func (f *fakeStore) FindItem(ctx context.Context, part, id string) (Item, bool, error) {
	return Item{}, false, nil
}
func (f *fakeStore) FindItemsBatch(ctx context.Context, part string, ids []string) ([]Item, error) {
	return nil, nil
}
func (f *fakeStore) FindItemsNear(ctx context.Context, part, id string) ([]recostore.NearEntry, error) {
	return f.near[id], nil
}
func (f *fakeStore) FindItemsTop(ctx context.Context, part string, scope decay.HalfLife) ([]recostore.NearEntry, error) {
	return f.top[scope], nil
}
func (f *fakeStore) FindItemsPopular(ctx context.Context, part string, scope decay.HalfLife) ([]recostore.NearEntry, error) {
	return f.pop[scope], nil
}
func (f *fakeStore) FindItemsRecent(ctx context.Context, part string) ([]string, error) {
	return nil, nil
}
func (f *fakeStore) Insert(ctx context.Context, item Item) error { return nil }
func (f *fakeStore) Delete(ctx context.Context, part, id string) error { return nil }
func (f *fakeStore) AddNear(ctx context.Context, part, item, near string, by float64) error {
	return nil
}
func (f *fakeStore) AddBulkNear(ctx context.Context, part string, batch []recostore.BulkNear, by float64) error {
	return nil
}
func (f *fakeStore) View(ctx context.Context, part, item string, viewCost float64) error {
	return nil
}
func (f *fakeStore) ListFlush(ctx context.Context, part string) error { return nil }
func (f *fakeStore) FindUser(ctx context.Context, part, id string) (User, error) {
	return User{}, nil
}
func (f *fakeStore) PushHistory(ctx context.Context, part, id, itemID string, maxLen int) error {
	return nil
}
func (f *fakeStore) SetDefaultModel(ctx context.Context, model Model) error { return nil }
func (f *fakeStore) FindDefaultModel(ctx context.Context) (Model, error)   { return Model{}, nil }
func (f *fakeStore) FindModel(ctx context.Context, part string) (Model, bool, error) {
	return Model{}, false, nil
}
func (f *fakeStore) Save(ctx context.Context, activity Activity, ttl time.Duration) error {
	return nil
}
func (f *fakeStore) Load(ctx context.Context, part, id string) (Activity, bool, error) {
	return Activity{}, false, nil
}
func (f *fakeStore) Choose(ctx context.Context, part, id string, chosen []string, ttl time.Duration) error {
	return nil
}
func (f *fakeStore) PluckAll(ctx context.Context) ([]Activity, error) { return nil, nil }
func (f *fakeStore) DeleteAll(ctx context.Context, refs []recostore.ActivityRef) error {
	return nil
}

var _ recostore.Store = (*fakeStore)(nil)

func TestSelectCandidates_WhitelistBypassesMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCandidateCount = 2
	store := &fakeStore{}

	out, err := SelectCandidates(context.Background(), store, cfg, "p", "cur", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("select candidates: %v", err)
	}
	if len(out) != 2 || out[0].ItemID != "a" || out[1].ItemID != "b" {
		t.Errorf("candidates = %+v, want [a b] (truncated whitelist)", out)
	}
}

func TestSelectCandidates_MergesNearTopAndPopular(t *testing.T) {
	cfg := DefaultConfig()
	store := &fakeStore{
		near: map[string][]recostore.NearEntry{
			"cur": {{ItemID: "a", Score: 5.0}, {ItemID: "b", Score: 1.0}},
		},
		top: map[decay.HalfLife][]recostore.NearEntry{
			decay.HalfLife1h: {{ItemID: "c", Score: 9.0}},
		},
		pop: map[decay.HalfLife][]recostore.NearEntry{},
	}

	out, err := SelectCandidates(context.Background(), store, cfg, "p", "cur", nil)
	if err != nil {
		t.Fatalf("select candidates: %v", err)
	}

	ids := make(map[string]bool)
	for _, c := range out {
		ids[c.ItemID] = true
	}
	if !ids["a"] || !ids["b"] || !ids["c"] {
		t.Errorf("candidates missing expected ids, got %+v", out)
	}

	for _, c := range out {
		if c.ItemID == "a" {
			if c.Signals.Near == nil || c.Signals.Near.Value != 5.0 {
				t.Errorf("candidate a signals = %+v, want near value 5.0", c.Signals)
			}
		}
		if c.ItemID == "c" {
			pos, ok := c.Signals.Top["1h"]
			if !ok || pos.Value != 9.0 {
				t.Errorf("candidate c signals = %+v, want top[1h]=9.0", c.Signals)
			}
		}
	}
}

func TestSelectCandidates_ImportanceOrdersHighestFirstWhenBoundApplies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCandidateCount = 1
	store := &fakeStore{
		near: map[string][]recostore.NearEntry{
			"cur": {{ItemID: "low", Score: 0.1}, {ItemID: "high", Score: 100.0}},
		},
	}

	out, err := SelectCandidates(context.Background(), store, cfg, "p", "cur", nil)
	if err != nil {
		t.Fatalf("select candidates: %v", err)
	}
	if len(out) != 1 || out[0].ItemID != "high" {
		t.Errorf("candidates = %+v, want [high]", out)
	}
}
