// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package natskv

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go/jetstream"

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
// it from the KV bucket on first access. The bucket revision observed
// at hydration time is remembered so the next persistList call can
// guard its write with Update instead of blindly overwriting a
// concurrent writer's progress.
func (b *Backend) listFor(ctx context.Context, key string, rlCfg recommend.RankedListConfig) (*ranklist.List, error) {
	b.listsMu.Lock()
	defer b.listsMu.Unlock()

	if l, ok := b.lists[key]; ok {
		return l, nil
	}

	decayFunc := decay.New(rlCfg.DecayFamily, rlCfg.DecayParams)

	persisted, rev, err := b.loadList(ctx, key)
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
	b.listRev[key] = rev
	return l, nil
}

func (b *Backend) loadList(ctx context.Context, key string) (*persistedList, uint64, error) {
	entry, err := b.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, wrapStorage("load ranked list", err)
	}
	if len(entry.Value()) == 0 {
		return nil, entry.Revision(), nil
	}
	var pl persistedList
	if err := json.Unmarshal(entry.Value(), &pl); err != nil {
		return nil, 0, wrapSerialization("unmarshal ranked list", err)
	}
	return &pl, entry.Revision(), nil
}

// persistList snapshots l and writes it back to key, retrying on
// revision conflicts up to maxOptimisticRetries times. Callers hold
// b.listsMu for the duration of the in-memory mutation, so the only
// source of conflict is another process sharing the same bucket.
func (b *Backend) persistList(ctx context.Context, key string, l *ranklist.List) error {
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

	rev := b.listRev[key]
	for attempt := 0; attempt < maxOptimisticRetries; attempt++ {
		var newRev uint64
		var putErr error
		if rev == 0 {
			newRev, putErr = b.kv.Create(ctx, key, data)
		} else {
			newRev, putErr = b.kv.Update(ctx, key, data, rev)
		}
		if putErr == nil {
			b.listRev[key] = newRev
			return nil
		}
		if !errors.Is(putErr, jetstream.ErrKeyExists) && !isWrongLastSequence(putErr) {
			return wrapStorage("persist ranked list", putErr)
		}

		entry, getErr := b.kv.Get(ctx, key)
		if getErr != nil {
			return wrapStorage("reload ranked list after conflict", getErr)
		}
		rev = entry.Revision()
	}
	return wrapConcurrency("persist ranked list", errors.New("retry budget exhausted"))
}

// isWrongLastSequence reports whether err is JetStream's "wrong last
// sequence" KV conflict, returned by Update when rev no longer matches.
func isWrongLastSequence(err error) bool {
	return strings.Contains(err.Error(), "wrong last sequence")
}

func entriesToNear(entries []ranklist.Entry) []recostore.NearEntry {
	out := make([]recostore.NearEntry, len(entries))
	for i, e := range entries {
		out[i] = recostore.NearEntry{ItemID: e.ID, Score: e.Score}
	}
	return out
}
