// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package recostore defines the storage trait the recommendation core
// runs against: a capability set over items, users, models, and
// activities that concrete backends (embedded Badger, external NATS
// JetStream KV, in-network Aerospike data grid) implement identically.
package recostore

import (
	"context"
	"time"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recommend/decay"
)

// NearEntry is one (item id, score) pair as returned from a near,
// top, or popular list read.
type NearEntry struct {
	ItemID string
	Score  float64
}

// BulkNear is one side of an add_bulk_near batch: the anchor item and
// the set of items to add as its co-occurrence neighbors.
type BulkNear struct {
	ItemID  string
	Targets []string
}

// Store is the full capability surface the recommendation core runs
// against. All methods are safe for concurrent use; a backend may apply
// its own I/O timeout beneath ctx.
type Store interface {
	// Items

	// FindItem returns the item, or (zero, false, nil) on a clean miss.
	FindItem(ctx context.Context, part, id string) (recommend.Item, bool, error)
	// FindItemsBatch returns whichever of ids exist, in no particular order.
	FindItemsBatch(ctx context.Context, part string, ids []string) ([]recommend.Item, error)
	FindItemsNear(ctx context.Context, part, id string) ([]NearEntry, error)
	FindItemsTop(ctx context.Context, part string, scope decay.HalfLife) ([]NearEntry, error)
	FindItemsPopular(ctx context.Context, part string, scope decay.HalfLife) ([]NearEntry, error)
	FindItemsRecent(ctx context.Context, part string) ([]string, error)

	Insert(ctx context.Context, item recommend.Item) error
	Delete(ctx context.Context, part, id string) error

	// AddNear adds a single co-occurrence edge: near becomes more
	// associated with item.
	AddNear(ctx context.Context, part, item, near string, by float64) error
	// AddBulkNear applies many co-occurrence edges with one BulkIncrement
	// per batch entry, so a near list compacts at most once per entry
	// that names it.
	AddBulkNear(ctx context.Context, part string, batch []BulkNear, by float64) error

	// View records a view of item, bumping its top/popular counters by
	// viewCost across every enumerated scope and incrementing Views.
	View(ctx context.Context, part, item string, viewCost float64) error

	// ListFlush drops all cached ranked-list state for part. Used by
	// administrative recovery paths; never called by the core itself.
	ListFlush(ctx context.Context, part string) error

	// Users

	// FindUser returns the user, with an empty history on a clean miss.
	FindUser(ctx context.Context, part, id string) (recommend.User, error)
	// PushHistory prepends itemID to the user's history, truncating to maxLen.
	PushHistory(ctx context.Context, part, id, itemID string, maxLen int) error

	// Models

	SetDefaultModel(ctx context.Context, model recommend.Model) error
	// FindDefaultModel always succeeds, returning an empty model on a miss.
	FindDefaultModel(ctx context.Context) (recommend.Model, error)
	// FindModel returns the partition override, or (zero, false, nil) on a miss.
	FindModel(ctx context.Context, part string) (recommend.Model, bool, error)

	// Activities

	Save(ctx context.Context, activity recommend.Activity, ttl time.Duration) error
	Load(ctx context.Context, part, id string) (recommend.Activity, bool, error)
	// Choose assigns chosen items to an activity, extending its TTL.
	Choose(ctx context.Context, part, id string, chosen []string, ttl time.Duration) error
	// PluckAll atomically drains the default activity list and returns
	// every activity it referenced. No activity returned here may be
	// returned by a later PluckAll call.
	PluckAll(ctx context.Context) ([]recommend.Activity, error)
	// DeleteAll removes the named (part, id) activities.
	DeleteAll(ctx context.Context, refs []ActivityRef) error
}

// ActivityRef identifies one activity for bulk deletion.
type ActivityRef struct {
	Part string
	ID   string
}
