// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recostore"
	"github.com/tomtom215/cartographus/internal/recostore/badger"
)

func newTestEngine(t *testing.T) *recommend.Engine {
	t.Helper()

	dir, err := os.MkdirTemp("", "recommend-engine-test-*")
	if err != nil {
		t.Fatalf("make temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := recommend.DefaultConfig()
	store, err := badger.Open(dir, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return recommend.NewEngine(store, cfg, zerolog.Nop())
}

func TestEngine_RecommendWithWhitelistReturnsThoseIDs(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	resp, err := e.Recommend(ctx, recommend.RecommendRequest{
		Part:      "p",
		User:      "u",
		Current:   "cur",
		Whitelist: []string{"a", "b", "c"},
		Count:     2,
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(resp.Result) != 2 {
		t.Fatalf("result = %+v, want 2 entries", resp.Result)
	}
	if resp.ActivityID == "" {
		t.Error("expected a non-empty activity id")
	}
}

func TestEngine_RecommendSynthesizesMissingCurrentItem(t *testing.T) {
	e := newTestEngine(t)

	resp, err := e.Recommend(context.Background(), recommend.RecommendRequest{
		Part:    "p",
		User:    "u",
		Current: "never-inserted",
		Count:   5,
	})
	if err != nil {
		t.Fatalf("recommend with missing current item should not error: %v", err)
	}
	if resp == nil {
		t.Fatal("expected a response even with no candidates")
	}
}

func TestEngine_ViewBuildsSymmetricCoOccurrence(t *testing.T) {
	e, store := newTestEngineWithStore(t)
	ctx := context.Background()

	if err := e.View(ctx, recommend.ViewRequest{Part: "p", User: "u", Item: "h"}); err != nil {
		t.Fatalf("first view: %v", err)
	}
	if err := e.View(ctx, recommend.ViewRequest{Part: "p", User: "u", Item: "i"}); err != nil {
		t.Fatalf("second view: %v", err)
	}

	nearI, err := store.FindItemsNear(ctx, "p", "i")
	if err != nil {
		t.Fatalf("find near i: %v", err)
	}
	if !containsID(nearI, "h") {
		t.Errorf("near(i) = %+v, want to contain h", nearI)
	}

	nearH, err := store.FindItemsNear(ctx, "p", "h")
	if err != nil {
		t.Fatalf("find near h: %v", err)
	}
	if !containsID(nearH, "i") {
		t.Errorf("near(h) = %+v, want to contain i", nearH)
	}
}

func TestEngine_ViewChoosesActivity(t *testing.T) {
	e, store := newTestEngineWithStore(t)
	ctx := context.Background()

	resp, err := e.Recommend(ctx, recommend.RecommendRequest{
		Part: "p", User: "u", Current: "cur", Whitelist: []string{"x"}, Count: 1,
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}

	if err := e.View(ctx, recommend.ViewRequest{Part: "p", User: "u", Item: "x", ActivityID: resp.ActivityID}); err != nil {
		t.Fatalf("view with activity: %v", err)
	}

	activity, ok, err := store.Load(ctx, "p", resp.ActivityID)
	if err != nil || !ok {
		t.Fatalf("load activity: ok=%v err=%v", ok, err)
	}
	if !activity.IsChosen("x") {
		t.Errorf("activity.Chosen = %v, want x chosen", activity.Chosen)
	}
}

func TestEngine_TrainSkipsOnEmptyActivityQueue(t *testing.T) {
	e := newTestEngine(t)

	err := e.Train(context.Background())
	var skipped *recostore.TrainingSkipped
	if !errors.As(err, &skipped) {
		t.Fatalf("Train() error = %v, want a *recostore.TrainingSkipped", err)
	}
}

func TestEngine_TrainRateLimitsBackToBackTicks(t *testing.T) {
	dir, err := os.MkdirTemp("", "recommend-engine-test-*")
	if err != nil {
		t.Fatalf("make temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := recommend.DefaultConfig()
	cfg.Training.MinInterval = time.Hour
	store, err := badger.Open(dir, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	e := recommend.NewEngine(store, cfg, zerolog.Nop())

	if err := e.Train(context.Background()); err != nil {
		var skipped *recostore.TrainingSkipped
		if !errors.As(err, &skipped) {
			t.Fatalf("first Train() error = %v, want nil or a *recostore.TrainingSkipped", err)
		}
	}

	err = e.Train(context.Background())
	var skipped *recostore.TrainingSkipped
	if !errors.As(err, &skipped) {
		t.Fatalf("second Train() error = %v, want a *recostore.TrainingSkipped from the rate limit", err)
	}
}

func newTestEngineWithStore(t *testing.T) (*recommend.Engine, *badger.Backend) {
	t.Helper()

	dir, err := os.MkdirTemp("", "recommend-engine-test-*")
	if err != nil {
		t.Fatalf("make temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := recommend.DefaultConfig()
	store, err := badger.Open(dir, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return recommend.NewEngine(store, cfg, zerolog.Nop()), store
}

func containsID(entries []recostore.NearEntry, id string) bool {
	for _, e := range entries {
		if e.ItemID == id {
			return true
		}
	}
	return false
}
