// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package natskv

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recostore"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	dir, err := os.MkdirTemp("", "recostore-natskv-test-*")
	if err != nil {
		t.Fatalf("make temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := recommend.DefaultConfig()
	b, err := Open(ctx, Options{Embedded: true, StoreDir: dir, Bucket: "test"}, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	return b
}

func TestBackend_InsertFindDeleteItem(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	item := recommend.Item{ID: "item-1", Part: "p", Meta: map[string][]string{"genre": {"drama"}}}
	if err := b.Insert(ctx, item); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, ok, err := b.FindItem(ctx, "p", "item-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !ok {
		t.Fatal("find: item not found after insert")
	}
	if got.ID != item.ID || got.MetaValues("genre")[0] != "drama" {
		t.Errorf("found item = %+v, want %+v", got, item)
	}

	if err := b.Delete(ctx, "p", "item-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, ok, err = b.FindItem(ctx, "p", "item-1")
	if err != nil {
		t.Fatalf("find after delete: %v", err)
	}
	if ok {
		t.Error("item still found after delete")
	}
}

func TestBackend_AddNearAndFindItemsNear(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.AddNear(ctx, "p", "a", "b", 1.0); err != nil {
		t.Fatalf("add near: %v", err)
	}
	if err := b.AddNear(ctx, "p", "a", "c", 2.0); err != nil {
		t.Fatalf("add near: %v", err)
	}

	near, err := b.FindItemsNear(ctx, "p", "a")
	if err != nil {
		t.Fatalf("find near: %v", err)
	}
	if len(near) != 2 {
		t.Fatalf("near = %+v, want 2 entries", near)
	}
	if near[0].ItemID != "c" {
		t.Errorf("near[0].ItemID = %q, want c (higher score first)", near[0].ItemID)
	}
}

func TestBackend_AddBulkNearMergesEntriesForSameKey(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	batch := []recostore.BulkNear{
		{ItemID: "a", Targets: []string{"b", "c"}},
		{ItemID: "a", Targets: []string{"d"}},
	}
	if err := b.AddBulkNear(ctx, "p", batch, 1.0); err != nil {
		t.Fatalf("add bulk near: %v", err)
	}

	near, err := b.FindItemsNear(ctx, "p", "a")
	if err != nil {
		t.Fatalf("find near: %v", err)
	}
	if len(near) != 3 {
		t.Fatalf("near = %+v, want 3 entries", near)
	}
}

func TestBackend_ViewBumpsTopPopularAndViews(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.Insert(ctx, recommend.Item{ID: "x", Part: "p"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := b.View(ctx, "p", "x", 1.0); err != nil {
		t.Fatalf("view: %v", err)
	}

	item, ok, err := b.FindItem(ctx, "p", "x")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !ok || item.Views != 1 {
		t.Errorf("item views = %+v, want Views=1", item)
	}
}

func TestBackend_UserHistory(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.PushHistory(ctx, "p", "u1", "item-1", 2); err != nil {
		t.Fatalf("push history: %v", err)
	}
	if err := b.PushHistory(ctx, "p", "u1", "item-2", 2); err != nil {
		t.Fatalf("push history: %v", err)
	}
	if err := b.PushHistory(ctx, "p", "u1", "item-3", 2); err != nil {
		t.Fatalf("push history: %v", err)
	}

	user, err := b.FindUser(ctx, "p", "u1")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if len(user.History) != 2 || user.History[0] != "item-3" {
		t.Errorf("history = %v, want [item-3 item-2]", user.History)
	}
}

func TestBackend_ModelDefaultAndPartitionOverride(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	def, err := b.FindDefaultModel(ctx)
	if err != nil {
		t.Fatalf("find default model: %v", err)
	}
	if def.Weights == nil {
		t.Error("default model should have non-nil empty Weights map")
	}

	model := recommend.Model{Weights: map[string]float64{"bias": 0.5}}
	if err := b.SetDefaultModel(ctx, model); err != nil {
		t.Fatalf("set default model: %v", err)
	}
	got, err := b.FindDefaultModel(ctx)
	if err != nil {
		t.Fatalf("find default model: %v", err)
	}
	if got.Weights["bias"] != 0.5 {
		t.Errorf("Weights[bias] = %v, want 0.5", got.Weights["bias"])
	}

	if _, ok, err := b.FindModel(ctx, "p1"); err != nil || ok {
		t.Errorf("FindModel(p1) = (_, %v, %v), want (_, false, nil)", ok, err)
	}
}

func TestBackend_ActivitySaveLoadChooseAndPluck(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	activity := recommend.Activity{ID: "act-1", Part: "p"}
	if err := b.Save(ctx, activity, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := b.Load(ctx, "p", "act-1")
	if err != nil || !ok {
		t.Fatalf("load: got=%+v ok=%v err=%v", got, ok, err)
	}

	if err := b.Choose(ctx, "p", "act-1", []string{"item-1"}, time.Hour); err != nil {
		t.Fatalf("choose: %v", err)
	}
	got, _, _ = b.Load(ctx, "p", "act-1")
	if !got.IsChosen("item-1") {
		t.Error("activity should have item-1 chosen")
	}

	plucked, err := b.PluckAll(ctx)
	if err != nil {
		t.Fatalf("pluck all: %v", err)
	}
	if len(plucked) != 1 || plucked[0].ID != "act-1" {
		t.Errorf("plucked = %+v, want 1 activity act-1", plucked)
	}

	plucked2, err := b.PluckAll(ctx)
	if err != nil {
		t.Fatalf("pluck all (empty): %v", err)
	}
	if len(plucked2) != 0 {
		t.Errorf("second pluck = %+v, want empty", plucked2)
	}
}

func TestBackend_ActivityExpires(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.Save(ctx, recommend.Activity{ID: "act-ttl", Part: "p"}, time.Nanosecond); err != nil {
		t.Fatalf("save: %v", err)
	}
	time.Sleep(time.Millisecond)

	_, ok, err := b.Load(ctx, "p", "act-ttl")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Error("expired activity should not be found")
	}
}
