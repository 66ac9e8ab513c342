// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package badger

import (
	"errors"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recommend/decay"
	"github.com/tomtom215/cartographus/internal/recommend/ranklist"
	"github.com/tomtom215/cartographus/internal/recostore"
)

// persistedList is the on-disk shape of one ranked list.
type persistedList struct {
	Epoch   time.Time        `json:"epoch"`
	Entries []persistedEntry `json:"entries"`
}

// persistedEntry is the on-disk shape of one ranked-list row.
type persistedEntry struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// listFor returns the cached in-memory list for key, lazily hydrating
// it from BadgerDB on first access. Safe for concurrent callers; the
// returned *ranklist.List serializes its own mutations internally.
func (b *Backend) listFor(key string, rlCfg recommend.RankedListConfig) (*ranklist.List, error) {
	b.listsMu.Lock()
	defer b.listsMu.Unlock()

	if l, ok := b.lists[key]; ok {
		return l, nil
	}

	decayFunc := decay.New(rlCfg.DecayFamily, rlCfg.DecayParams)

	persisted, err := b.loadList(key)
	if err != nil {
		return nil, err
	}

	epoch := time.Now()
	var entries []ranklist.Entry
	if persisted != nil {
		epoch = persisted.Epoch
		entries = make([]ranklist.Entry, len(persisted.Entries))
		for i, e := range persisted.Entries {
			entries[i] = ranklist.Entry{ID: e.ID, Score: e.Score}
		}
	}

	l := ranklist.Restore(rlCfg.MaxCount, rlCfg.MaxModifications, decayFunc, entries, epoch)
	b.lists[key] = l
	return l, nil
}

func (b *Backend) loadList(key string) (*persistedList, error) {
	var out *persistedList

	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 0 {
				return nil
			}
			var pl persistedList
			if err := json.Unmarshal(val, &pl); err != nil {
				return err
			}
			out = &pl
			return nil
		})
	})
	if err != nil {
		return nil, wrapStorage("load ranked list", err)
	}
	return out, nil
}

// persistList snapshots l and writes it back to key.
func (b *Backend) persistList(key string, l *ranklist.List) error {
	snap := l.Snapshot()
	entries := make([]persistedEntry, 0, len(snap))
	for _, e := range snap {
		entries = append(entries, persistedEntry{ID: e.ID, Score: e.Score})
	}
	pl := persistedList{Epoch: l.Epoch(), Entries: entries}

	data, err := json.Marshal(pl)
	if err != nil {
		return wrapSerialization("marshal ranked list", err)
	}

	err = b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return wrapStorage("persist ranked list", err)
	}
	return nil
}

func entriesToNear(entries []ranklist.Entry) []recostore.NearEntry {
	out := make([]recostore.NearEntry, len(entries))
	for i, e := range entries {
		out[i] = recostore.NearEntry{ItemID: e.ID, Score: e.Score}
	}
	return out
}
