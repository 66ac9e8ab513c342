// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

//go:build integration

package spike_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recostore"
	"github.com/tomtom215/cartographus/internal/recostore/spike"
	"github.com/tomtom215/cartographus/internal/testinfra"
)

func openTestBackend(t *testing.T) *spike.Backend {
	t.Helper()
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	aero, err := testinfra.NewAerospikeContainer(ctx)
	if err != nil {
		t.Fatalf("start aerospike container: %v", err)
	}
	t.Cleanup(func() { aero.Terminate(context.Background()) }) //nolint:errcheck

	backend, err := spike.Open(spike.Options{
		Host:      aero.Host,
		Port:      aero.Port,
		Namespace: aero.Namespace,
	}, recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("open spike backend: %v", err)
	}
	t.Cleanup(func() { backend.Close() }) //nolint:errcheck

	return backend
}

func TestBackend_ItemRoundTrip(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	item := recommend.Item{Part: "p1", ID: "item-1", Meta: map[string][]string{"genre": {"drama"}}}
	if err := backend.Insert(ctx, item); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, ok, err := backend.FindItem(ctx, "p1", "item-1")
	if err != nil {
		t.Fatalf("FindItem: %v", err)
	}
	if !ok {
		t.Fatal("FindItem: want found, got miss")
	}
	if got.ID != item.ID {
		t.Errorf("FindItem id = %q, want %q", got.ID, item.ID)
	}

	if err := backend.Delete(ctx, "p1", "item-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, err := backend.FindItem(ctx, "p1", "item-1"); err != nil || ok {
		t.Fatalf("FindItem after delete: ok=%v err=%v", ok, err)
	}
}

func TestBackend_BatchLookup(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := backend.Insert(ctx, recommend.Item{Part: "p1", ID: id}); err != nil {
			t.Fatalf("Insert(%s): %v", id, err)
		}
	}

	got, err := backend.FindItemsBatch(ctx, "p1", []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("FindItemsBatch: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("FindItemsBatch returned %d items, want 2", len(got))
	}
}

func TestBackend_NearLists(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	if err := backend.Insert(ctx, recommend.Item{Part: "p1", ID: "item-1"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := backend.Insert(ctx, recommend.Item{Part: "p1", ID: "item-2"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := backend.AddNear(ctx, "p1", "item-1", "item-2", 0.9); err != nil {
		t.Fatalf("AddNear: %v", err)
	}

	near, err := backend.FindItemsNear(ctx, "p1", "item-1")
	if err != nil {
		t.Fatalf("FindItemsNear: %v", err)
	}
	if len(near) != 1 || near[0].ItemID != "item-2" {
		t.Errorf("FindItemsNear = %v, want one entry for item-2", near)
	}

	if err := backend.AddBulkNear(ctx, "p1", []recostore.BulkNear{
		{ItemID: "item-1", Targets: []string{"item-2"}},
	}, 0.5); err != nil {
		t.Fatalf("AddBulkNear: %v", err)
	}
}

func TestBackend_ViewAndRankedLists(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	if err := backend.Insert(ctx, recommend.Item{Part: "p1", ID: "item-1"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := backend.View(ctx, "p1", "item-1", 1.0); err != nil {
		t.Fatalf("View: %v", err)
	}

	recent, err := backend.FindItemsRecent(ctx, "p1")
	if err != nil {
		t.Fatalf("FindItemsRecent: %v", err)
	}
	if len(recent) != 1 || recent[0] != "item-1" {
		t.Errorf("FindItemsRecent = %v, want [item-1]", recent)
	}
}

func TestBackend_ActivityLifecycle(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	activity := recommend.Activity{Part: "p1", ID: "act-1", Current: recommend.Item{Part: "p1", ID: "item-1"}}
	if err := backend.Save(ctx, activity, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := backend.Choose(ctx, "p1", "act-1", []string{"item-1"}, time.Minute); err != nil {
		t.Fatalf("Choose: %v", err)
	}

	got, ok, err := backend.Load(ctx, "p1", "act-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("Load: want found")
	}
	if len(got.Chosen) != 1 || got.Chosen[0] != "item-1" {
		t.Errorf("Load Chosen = %v, want [item-1]", got.Chosen)
	}

	plucked, err := backend.PluckAll(ctx)
	if err != nil {
		t.Fatalf("PluckAll: %v", err)
	}
	if len(plucked) != 1 || plucked[0].ID != "act-1" {
		t.Errorf("PluckAll = %v, want one activity act-1", plucked)
	}

	again, err := backend.PluckAll(ctx)
	if err != nil {
		t.Fatalf("second PluckAll: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second PluckAll = %v, want empty", again)
	}

	if err := backend.DeleteAll(ctx, []recostore.ActivityRef{{Part: "p1", ID: "act-1"}}); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
}

func TestBackend_Models(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	model := recommend.Model{Weights: map[string]float64{"genre:drama": 0.5}}
	if err := backend.SetDefaultModel(ctx, model); err != nil {
		t.Fatalf("SetDefaultModel: %v", err)
	}

	got, err := backend.FindDefaultModel(ctx)
	if err != nil {
		t.Fatalf("FindDefaultModel: %v", err)
	}
	if got.Weights["genre:drama"] != 0.5 {
		t.Errorf("FindDefaultModel weight = %v, want 0.5", got.Weights["genre:drama"])
	}

	if _, ok, err := backend.FindModel(ctx, "p1"); err != nil || ok {
		t.Fatalf("FindModel for unset partition: ok=%v err=%v", ok, err)
	}
}

func TestBackend_UserHistory(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	if err := backend.PushHistory(ctx, "p1", "user-1", "item-1", 10); err != nil {
		t.Fatalf("PushHistory: %v", err)
	}

	user, err := backend.FindUser(ctx, "p1", "user-1")
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if len(user.History) != 1 || user.History[0] != "item-1" {
		t.Errorf("FindUser history = %v, want one entry for item-1", user.History)
	}
}

func TestBackend_ListFlush(t *testing.T) {
	backend := openTestBackend(t)
	ctx := context.Background()

	if err := backend.Insert(ctx, recommend.Item{Part: "p1", ID: "item-1"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := backend.AddNear(ctx, "p1", "item-1", "item-2", 0.9); err != nil {
		t.Fatalf("AddNear: %v", err)
	}

	if err := backend.ListFlush(ctx, "p1"); err != nil {
		t.Fatalf("ListFlush: %v", err)
	}
}
