// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package spike

import (
	"errors"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recommend/decay"
	"github.com/tomtom215/cartographus/internal/recommend/ranklist"
	"github.com/tomtom215/cartographus/internal/recostore"
)

// persistedList is the on-the-wire shape of one ranked list.
type persistedList struct {
	Epoch   time.Time        `json:"epoch"`
	Entries []persistedEntry `json:"entries"`
}

// persistedEntry is the on-the-wire shape of one ranked-list row.
type persistedEntry struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// listFor returns the cached in-memory list for key, lazily hydrating
// it from the cluster on first access. The record generation observed
// at hydration time is remembered so the next persistList call can
// guard its write against a concurrent writer on another node.
func (b *Backend) listFor(key string, rlCfg recommend.RankedListConfig) (*ranklist.List, error) {
	b.listsMu.Lock()
	defer b.listsMu.Unlock()

	if l, ok := b.lists[key]; ok {
		return l, nil
	}

	decayFunc := decay.New(rlCfg.DecayFamily, rlCfg.DecayParams)

	persisted, gen, err := b.loadList(key)
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
	b.listGen[key] = gen
	return l, nil
}

func (b *Backend) loadList(key string) (*persistedList, uint32, error) {
	data, gen, ok, err := b.getRecord(key)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, nil
	}
	if len(data) == 0 {
		return nil, gen, nil
	}
	var pl persistedList
	if err := json.Unmarshal(data, &pl); err != nil {
		return nil, 0, wrapSerialization("unmarshal ranked list", err)
	}
	return &pl, gen, nil
}

// persistList snapshots l and writes it back to key, retrying on
// generation conflicts up to maxOptimisticRetries times. Callers hold
// b.listsMu for the duration of the in-memory mutation, so the only
// source of conflict is another process sharing the same namespace/set.
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

	gen := b.listGen[key]
	for attempt := 0; attempt < maxOptimisticRetries; attempt++ {
		putErr := b.putRecordGen(key, data, gen)
		if putErr == nil {
			b.listGen[key] = gen + 1
			return nil
		}
		if !isGenerationError(putErr) {
			return wrapStorage("persist ranked list", putErr)
		}

		_, newGen, _, getErr := b.getRecord(key)
		if getErr != nil {
			return wrapStorage("reload ranked list after conflict", getErr)
		}
		gen = newGen
	}
	return wrapConcurrency("persist ranked list", errors.New("retry budget exhausted"))
}

func entriesToNear(entries []ranklist.Entry) []recostore.NearEntry {
	out := make([]recostore.NearEntry, len(entries))
	for i, e := range entries {
		out[i] = recostore.NearEntry{ItemID: e.ID, Score: e.Score}
	}
	return out
}
