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
	"github.com/tomtom215/cartographus/internal/recostore"
)

// activityRef is the on-disk shape of one entry in the default activity
// list.
type activityRef struct {
	Part string `json:"part"`
	ID   string `json:"id"`
}

// Save persists activity with the given TTL and appends a reference to
// the default activity list, bounded to the configured cap.
func (b *Backend) Save(ctx context.Context, activity recommend.Activity, ttl time.Duration) error {
	if err := b.putActivity(activity, ttl); err != nil {
		return err
	}
	return b.appendDefaultRef(activityRef{Part: activity.Part, ID: activity.ID})
}

// Load returns the activity, or (zero, false, nil) on a clean miss.
func (b *Backend) Load(ctx context.Context, part, id string) (recommend.Activity, bool, error) {
	var activity recommend.Activity
	found := false

	err := b.db.View(func(txn *badgerdb.Txn) error {
		kv, err := txn.Get(activityItemKey(part, id))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return kv.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &activity); err != nil {
				return err
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return recommend.Activity{}, false, wrapStorage("load activity", err)
	}
	return activity, found, nil
}

// Choose assigns chosen items to an activity, extending its TTL.
func (b *Backend) Choose(ctx context.Context, part, id string, chosen []string, ttl time.Duration) error {
	activity, ok, err := b.Load(ctx, part, id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	activity.Chosen = chosen
	return b.putActivity(activity, ttl)
}

func (b *Backend) putActivity(activity recommend.Activity, ttl time.Duration) error {
	data, err := json.Marshal(activity)
	if err != nil {
		return wrapSerialization("marshal activity", err)
	}

	err = b.db.Update(func(txn *badgerdb.Txn) error {
		entry := badgerdb.NewEntry(activityItemKey(activity.Part, activity.ID), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return wrapStorage("persist activity", err)
	}
	return nil
}

// PluckAll atomically drains the default activity list and returns
// every activity it referenced.
func (b *Backend) PluckAll(ctx context.Context) ([]recommend.Activity, error) {
	b.activityListMu.Lock()
	defer b.activityListMu.Unlock()

	var refs []activityRef

	err := b.db.Update(func(txn *badgerdb.Txn) error {
		kv, err := txn.Get([]byte(keyActivityListDefault))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := kv.Value(func(val []byte) error {
			if len(val) == 0 {
				return nil
			}
			return json.Unmarshal(val, &refs)
		}); err != nil {
			return err
		}
		return txn.Delete([]byte(keyActivityListDefault))
	})
	if err != nil {
		return nil, wrapStorage("pluck activity list", err)
	}

	activities := make([]recommend.Activity, 0, len(refs))
	for _, ref := range refs {
		activity, ok, err := b.Load(ctx, ref.Part, ref.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			activities = append(activities, activity)
		}
	}
	return activities, nil
}

// DeleteAll removes the named (part, id) activities.
func (b *Backend) DeleteAll(ctx context.Context, refs []recostore.ActivityRef) error {
	err := b.db.Update(func(txn *badgerdb.Txn) error {
		for _, ref := range refs {
			if err := txn.Delete(activityItemKey(ref.Part, ref.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapStorage("delete activities", err)
	}
	return nil
}

func (b *Backend) appendDefaultRef(ref activityRef) error {
	b.activityListMu.Lock()
	defer b.activityListMu.Unlock()

	listCap := b.cfg.Activity.DefaultListCap
	ttl := b.cfg.Activity.DefaultListTTL

	err := b.db.Update(func(txn *badgerdb.Txn) error {
		var refs []activityRef

		kv, err := txn.Get([]byte(keyActivityListDefault))
		if err != nil && !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return err
		}
		if err == nil {
			if err := kv.Value(func(val []byte) error {
				if len(val) == 0 {
					return nil
				}
				return json.Unmarshal(val, &refs)
			}); err != nil {
				return err
			}
		}

		refs = append(refs, ref)
		if listCap > 0 && len(refs) > listCap {
			refs = refs[len(refs)-listCap:]
		}

		data, err := json.Marshal(refs)
		if err != nil {
			return err
		}

		entry := badgerdb.NewEntry([]byte(keyActivityListDefault), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return wrapStorage("append default activity ref", err)
	}
	return nil
}
