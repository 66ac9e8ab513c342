// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package ranklist implements the decaying ranked list: a bounded
// multiset of (item id, score) pairs used for the near, top, and
// popular lists. Mutations are serialized per list under a single
// critical section, which satisfies the linearizable-schedule
// requirement without needing optimistic generation retries.
package ranklist

import (
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/cartographus/internal/recommend/decay"
)

// Entry is one (id, score) pair as returned by a snapshot read.
type Entry struct {
	ID    string
	Score float64
}

// List is a bounded unordered collection of (item id, score) pairs plus
// a modification counter and an epoch timestamp. It is compacted
// through a decay function once the modification counter crosses
// MaxModifications, then truncated to MaxCount.
//
// Reads are non-blocking snapshots; the compaction step is atomic with
// respect to concurrent increments because every mutation runs under
// the same mutex.
type List struct {
	mu               sync.Mutex
	items            map[string]float64
	nmods            int
	epoch            time.Time
	maxCount         int
	maxModifications int
	decayFunc        decay.Func
}

// New creates an empty list bounded to maxCount entries, compacting via
// decayFunc every time maxModifications mutations accumulate.
func New(maxCount, maxModifications int, decayFunc decay.Func) *List {
	return &List{
		items:            make(map[string]float64),
		epoch:            time.Now(),
		maxCount:         maxCount,
		maxModifications: maxModifications,
		decayFunc:        decayFunc,
	}
}

// Restore rebuilds a list from previously persisted entries without
// counting the rebuild as modifications or disturbing epoch. Used by
// storage backends to hydrate a list from its serialized form.
func Restore(maxCount, maxModifications int, decayFunc decay.Func, entries []Entry, epoch time.Time) *List {
	items := make(map[string]float64, len(entries))
	for _, e := range entries {
		items[e.ID] = e.Score
	}
	return &List{
		items:            items,
		epoch:            epoch,
		maxCount:         maxCount,
		maxModifications: maxModifications,
		decayFunc:        decayFunc,
	}
}

// Snapshot returns the current contents sorted by score descending. Ties
// break arbitrarily but stably within a single call.
func (l *List) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *List) snapshotLocked() []Entry {
	entries := make([]Entry, 0, len(l.items))
	for id, score := range l.items {
		entries = append(entries, Entry{ID: id, Score: score})
	}
	sortDescending(entries)
	return entries
}

// Increment atomically adds by to items[id] (inserting when absent),
// bumps nmods by one, and compacts if nmods now exceeds
// maxModifications. lambda is the decay argument used if compaction
// fires: 1.0 for the near list, or a scope's elapsed-half-life multiple
// for time-scoped lists.
func (l *List) Increment(id string, by, lambda float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items[id] += by
	l.nmods++
	l.maybeCompactLocked(lambda)
}

// BulkIncrement adds by to items[id] for every id in ids, advances
// nmods by len(ids), and compacts at most once after the whole batch.
func (l *List) BulkIncrement(ids []string, by, lambda float64) {
	if len(ids) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range ids {
		l.items[id] += by
	}
	l.nmods += len(ids)
	l.maybeCompactLocked(lambda)
}

// maybeCompactLocked runs the compaction algorithm when nmods has
// crossed maxModifications. Caller must hold mu.
func (l *List) maybeCompactLocked(lambda float64) {
	if l.nmods <= l.maxModifications {
		return
	}

	entries := l.snapshotLocked()
	for i := range entries {
		entries[i].Score = l.decayFunc(entries[i].Score, lambda)
	}
	if len(entries) > l.maxCount {
		entries = entries[:l.maxCount]
	}

	l.items = make(map[string]float64, len(entries))
	for _, e := range entries {
		l.items[e.ID] = e.Score
	}
	l.nmods = 0
	l.epoch = time.Now()
}

// Len returns the current cardinality of the list.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Epoch returns the timestamp of the last compaction (or creation, if
// none has occurred yet).
func (l *List) Epoch() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epoch
}

// sortDescending sorts entries by score, highest first. Equal scores
// compare equal and NaN is treated as equal to everything, so ties do
// not have a defined relative order across calls.
func sortDescending(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return totalOrderGreater(entries[i].Score, entries[j].Score)
	})
}

// totalOrderGreater reports whether a sorts before b under the
// descending total order ranking uses: NaN compares equal to
// everything, so it never forces an ordering either way.
func totalOrderGreater(a, b float64) bool {
	if a != a || b != b { // either is NaN
		return false
	}
	return a > b
}
