// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package badger

import (
	"context"
	"errors"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recommend/decay"
	"github.com/tomtom215/cartographus/internal/recostore"
)

const recentListCap = 256

// FindItem returns the item, or (zero, false, nil) on a clean miss.
func (b *Backend) FindItem(ctx context.Context, part, id string) (recommend.Item, bool, error) {
	var item recommend.Item
	found := false

	err := b.db.View(func(txn *badgerdb.Txn) error {
		kv, err := txn.Get(itemDefinitionKey(part, id))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return kv.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &item); err != nil {
				return err
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return recommend.Item{}, false, wrapStorage("find item", err)
	}
	return item, found, nil
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

	err = b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(itemDefinitionKey(item.Part, item.ID), data)
	})
	if err != nil {
		return wrapStorage("insert item", err)
	}

	return b.pushRecent(item.Part, item.ID)
}

// Delete removes the item definition. Its ranked-list entries are left
// to decay away naturally rather than hunted down across every scope.
func (b *Backend) Delete(ctx context.Context, part, id string) error {
	err := b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(itemDefinitionKey(part, id))
	})
	if err != nil {
		return wrapStorage("delete item", err)
	}
	return nil
}

// FindItemsNear returns the co-occurrence list for (part, id).
func (b *Backend) FindItemsNear(ctx context.Context, part, id string) ([]recostore.NearEntry, error) {
	l, err := b.listFor(string(itemNearKey(part, id)), b.cfg.Near)
	if err != nil {
		return nil, err
	}
	return entriesToNear(l.Snapshot()), nil
}

// FindItemsTop returns the time-scoped top list for (part, scope).
func (b *Backend) FindItemsTop(ctx context.Context, part string, scope decay.HalfLife) ([]recostore.NearEntry, error) {
	l, err := b.listFor(string(itemTopKey(part, scope)), b.cfg.Top)
	if err != nil {
		return nil, err
	}
	return entriesToNear(l.Snapshot()), nil
}

// FindItemsPopular returns the time-scoped popularity list for (part, scope).
func (b *Backend) FindItemsPopular(ctx context.Context, part string, scope decay.HalfLife) ([]recostore.NearEntry, error) {
	l, err := b.listFor(string(itemPopKey(part, scope)), b.cfg.Popular)
	if err != nil {
		return nil, err
	}
	return entriesToNear(l.Snapshot()), nil
}

// FindItemsRecent returns the bounded FIFO of recently inserted item ids.
func (b *Backend) FindItemsRecent(ctx context.Context, part string) ([]string, error) {
	var ids []string

	err := b.db.View(func(txn *badgerdb.Txn) error {
		kv, err := txn.Get(itemRecentKey(part))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return kv.Value(func(val []byte) error {
			if len(val) == 0 {
				return nil
			}
			return json.Unmarshal(val, &ids)
		})
	})
	if err != nil {
		return nil, wrapStorage("find recent items", err)
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

	err = b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(itemRecentKey(part), data)
	})
	if err != nil {
		return wrapStorage("persist recent list", err)
	}
	return nil
}

// AddNear adds a single co-occurrence edge: near becomes more
// associated with item.
func (b *Backend) AddNear(ctx context.Context, part, item, near string, by float64) error {
	key := string(itemNearKey(part, item))
	l, err := b.listFor(key, b.cfg.Near)
	if err != nil {
		return err
	}
	l.Increment(near, by, decay.NearLambda)
	return b.persistList(key, l)
}

// AddBulkNear applies many co-occurrence edges with one BulkIncrement
// per batch entry, so a near list compacts at most once per entry that
// names it.
func (b *Backend) AddBulkNear(ctx context.Context, part string, batch []recostore.BulkNear, by float64) error {
	for _, edge := range batch {
		if len(edge.Targets) == 0 {
			continue
		}
		key := string(itemNearKey(part, edge.ItemID))
		l, err := b.listFor(key, b.cfg.Near)
		if err != nil {
			return err
		}
		l.BulkIncrement(edge.Targets, by, decay.NearLambda)
		if err := b.persistList(key, l); err != nil {
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

func (b *Backend) bumpScopedList(key []byte, rlCfg recommend.RankedListConfig, itemID string, by float64, scope decay.HalfLife) error {
	l, err := b.listFor(string(key), rlCfg)
	if err != nil {
		return err
	}
	sinceMS := time.Since(l.Epoch()).Milliseconds()
	l.Increment(itemID, by, scope.Lambda(sinceMS))
	return b.persistList(string(key), l)
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
	err = b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(itemDefinitionKey(part, id), data)
	})
	if err != nil {
		return wrapStorage("bump item views", err)
	}
	return nil
}

// ListFlush drops all cached ranked-list state for part.
func (b *Backend) ListFlush(ctx context.Context, part string) error {
	prefixes := [][]byte{
		[]byte(prefixItemListNear + part + ":"),
		[]byte(prefixItemListTop + part + ":"),
		[]byte(prefixItemListPop + part + ":"),
	}

	b.listsMu.Lock()
	for key := range b.lists {
		for _, prefix := range prefixes {
			if len(key) >= len(prefix) && key[:len(prefix)] == string(prefix) {
				delete(b.lists, key)
				break
			}
		}
	}
	b.listsMu.Unlock()

	err := b.db.Update(func(txn *badgerdb.Txn) error {
		for _, prefix := range prefixes {
			it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
			var keys [][]byte
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				k := it.Item().KeyCopy(nil)
				keys = append(keys, k)
			}
			it.Close()
			for _, k := range keys {
				if err := txn.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return wrapStorage("flush lists", err)
	}
	return nil
}
