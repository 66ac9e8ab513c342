// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package spike

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recommend/decay"
	"github.com/tomtom215/cartographus/internal/recostore"
)

const recentListCap = 256

// FindItem returns the item, or (zero, false, nil) on a clean miss.
func (b *Backend) FindItem(ctx context.Context, part, id string) (recommend.Item, bool, error) {
	data, _, ok, err := b.getRecord(itemDefinitionKey(part, id))
	if err != nil {
		return recommend.Item{}, false, err
	}
	if !ok {
		return recommend.Item{}, false, nil
	}
	var item recommend.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return recommend.Item{}, false, wrapSerialization("unmarshal item", err)
	}
	return item, true, nil
}

// FindItemsBatch returns whichever of ids exist, in no particular order.
func (b *Backend) FindItemsBatch(ctx context.Context, part string, ids []string) ([]recommend.Item, error) {
	items := make([]recommend.Item, 0, len(ids))
	for _, id := range ids {
		item, ok, err := b.FindItem(ctx, part, id)
		if err != nil {
			return nil, err
		}
		if ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// Insert persists item and appends it to the partition's recent list.
func (b *Backend) Insert(ctx context.Context, item recommend.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return wrapSerialization("marshal item", err)
	}
	if err := b.putRecord(itemDefinitionKey(item.Part, item.ID), data); err != nil {
		return err
	}
	return b.pushRecent(item.Part, item.ID)
}

// Delete removes the item definition. Its ranked-list entries are left
// to decay away naturally rather than hunted down across every scope.
func (b *Backend) Delete(ctx context.Context, part, id string) error {
	return b.deleteRecord(itemDefinitionKey(part, id))
}

// FindItemsNear returns the co-occurrence list for (part, id).
func (b *Backend) FindItemsNear(ctx context.Context, part, id string) ([]recostore.NearEntry, error) {
	l, err := b.listFor(itemNearKey(part, id), b.cfg.Near)
	if err != nil {
		return nil, err
	}
	return entriesToNear(l.Snapshot()), nil
}

// FindItemsTop returns the time-scoped top list for (part, scope).
func (b *Backend) FindItemsTop(ctx context.Context, part string, scope decay.HalfLife) ([]recostore.NearEntry, error) {
	l, err := b.listFor(itemTopKey(part, scope), b.cfg.Top)
	if err != nil {
		return nil, err
	}
	return entriesToNear(l.Snapshot()), nil
}

// FindItemsPopular returns the time-scoped popularity list for (part, scope).
func (b *Backend) FindItemsPopular(ctx context.Context, part string, scope decay.HalfLife) ([]recostore.NearEntry, error) {
	l, err := b.listFor(itemPopKey(part, scope), b.cfg.Popular)
	if err != nil {
		return nil, err
	}
	return entriesToNear(l.Snapshot()), nil
}

// FindItemsRecent returns the bounded FIFO of recently inserted item ids.
func (b *Backend) FindItemsRecent(ctx context.Context, part string) ([]string, error) {
	data, _, ok, err := b.getRecord(itemRecentKey(part))
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, wrapSerialization("unmarshal recent list", err)
	}
	return ids, nil
}

func (b *Backend) pushRecent(part, id string) error {
	ids, err := b.FindItemsRecent(context.Background(), part)
	if err != nil {
		return err
	}

	ids = append([]string{id}, ids...)
	if len(ids) > recentListCap {
		ids = ids[:recentListCap]
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return wrapSerialization("marshal recent list", err)
	}
	return b.putRecord(itemRecentKey(part), data)
}

// AddNear adds a single co-occurrence edge: near becomes more
// associated with item.
func (b *Backend) AddNear(ctx context.Context, part, item, near string, by float64) error {
	key := itemNearKey(part, item)
	l, err := b.listFor(key, b.cfg.Near)
	if err != nil {
		return err
	}

	b.listsMu.Lock()
	l.Increment(near, by, decay.NearLambda)
	err = b.persistList(key, l)
	b.listsMu.Unlock()
	return err
}

// AddBulkNear applies many co-occurrence edges with one BulkIncrement
// per batch entry, so a near list compacts at most once per entry that
// names it.
func (b *Backend) AddBulkNear(ctx context.Context, part string, batch []recostore.BulkNear, by float64) error {
	for _, edge := range batch {
		if len(edge.Targets) == 0 {
			continue
		}
		key := itemNearKey(part, edge.ItemID)
		l, err := b.listFor(key, b.cfg.Near)
		if err != nil {
			return err
		}

		b.listsMu.Lock()
		l.BulkIncrement(edge.Targets, by, decay.NearLambda)
		err = b.persistList(key, l)
		b.listsMu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// View records a view of item, bumping its top/popular counters by
// viewCost across every enumerated scope and incrementing Views.
func (b *Backend) View(ctx context.Context, part, itemID string, viewCost float64) error {
	for _, scope := range decay.Scopes {
		if err := b.bumpScopedList(itemTopKey(part, scope), b.cfg.Top, itemID, viewCost, scope); err != nil {
			return err
		}
		if err := b.bumpScopedList(itemPopKey(part, scope), b.cfg.Popular, itemID, viewCost, scope); err != nil {
			return err
		}
	}
	return b.bumpViews(part, itemID)
}

func (b *Backend) bumpScopedList(key string, rlCfg recommend.RankedListConfig, itemID string, by float64, scope decay.HalfLife) error {
	l, err := b.listFor(key, rlCfg)
	if err != nil {
		return err
	}

	b.listsMu.Lock()
	sinceMS := time.Since(l.Epoch()).Milliseconds()
	l.Increment(itemID, by, scope.Lambda(sinceMS))
	err = b.persistList(key, l)
	b.listsMu.Unlock()
	return err
}

func (b *Backend) bumpViews(part, id string) error {
	item, ok, err := b.FindItem(context.Background(), part, id)
	if err != nil {
		return err
	}
	if !ok {
		item = recommend.Item{ID: id, Part: part}
	}
	item.Views++

	data, err := json.Marshal(item)
	if err != nil {
		return wrapSerialization("marshal item", err)
	}
	return b.putRecord(itemDefinitionKey(part, id), data)
}

// ListFlush drops all cached ranked-list state for part.
func (b *Backend) ListFlush(ctx context.Context, part string) error {
	prefixes := []string{
		prefixItemListNear + part + ":",
		prefixItemListTop + part + ":",
		prefixItemListPop + part + ":",
	}

	b.listsMu.Lock()
	for key := range b.lists {
		for _, prefix := range prefixes {
			if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
				delete(b.lists, key)
				delete(b.listGen, key)
				break
			}
		}
	}
	b.listsMu.Unlock()

	for _, prefix := range prefixes {
		keys, err := b.scanKeysWithPrefix(prefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := b.deleteRecord(key); err != nil {
				return err
			}
		}
	}
	return nil
}
