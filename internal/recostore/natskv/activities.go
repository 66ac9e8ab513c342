// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package natskv

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recostore"
)

// persistedActivity wraps an activity with its expiry. JetStream KV's
// per-bucket TTL applies uniformly to every key, so expiry for the
// per-activity TTL spec.md requires is tracked here and checked on
// every read instead.
type persistedActivity struct {
	Activity  recommend.Activity `json:"activity"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// activityRef is the on-the-wire shape of one entry in the default
// activity list.
type activityRef struct {
	Part string `json:"part"`
	ID   string `json:"id"`
}

// Save persists activity with the given TTL and appends a reference to
// the default activity list, bounded to the configured cap.
func (b *Backend) Save(ctx context.Context, activity recommend.Activity, ttl time.Duration) error {
	if err := b.putActivity(ctx, activity, ttl); err != nil {
		return err
	}
	return b.appendDefaultRef(ctx, activityRef{Part: activity.Part, ID: activity.ID})
}

// Load returns the activity, or (zero, false, nil) on a clean miss or
// an expired entry.
func (b *Backend) Load(ctx context.Context, part, id string) (recommend.Activity, bool, error) {
	entry, err := b.kv.Get(ctx, activityItemKey(part, id))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return recommend.Activity{}, false, nil
	}
	if err != nil {
		return recommend.Activity{}, false, wrapStorage("load activity", err)
	}
	var pa persistedActivity
	if err := json.Unmarshal(entry.Value(), &pa); err != nil {
		return recommend.Activity{}, false, wrapSerialization("unmarshal activity", err)
	}
	if !pa.ExpiresAt.IsZero() && time.Now().After(pa.ExpiresAt) {
		return recommend.Activity{}, false, nil
	}
	return pa.Activity, true, nil
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
	return b.putActivity(ctx, activity, ttl)
}

func (b *Backend) putActivity(ctx context.Context, activity recommend.Activity, ttl time.Duration) error {
	pa := persistedActivity{Activity: activity}
	if ttl > 0 {
		pa.ExpiresAt = time.Now().Add(ttl)
	}

	data, err := json.Marshal(pa)
	if err != nil {
		return wrapSerialization("marshal activity", err)
	}
	if _, err := b.kv.Put(ctx, activityItemKey(activity.Part, activity.ID), data); err != nil {
		return wrapStorage("persist activity", err)
	}
	return nil
}

// PluckAll atomically drains the default activity list and returns
// every activity it referenced.
func (b *Backend) PluckAll(ctx context.Context) ([]recommend.Activity, error) {
	b.activityListMu.Lock()
	defer b.activityListMu.Unlock()

	refs, rev, err := b.loadActivityRefs(ctx)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}

	if rev == 0 {
		if err := b.kv.Delete(ctx, keyActivityListDefault); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, wrapStorage("drain activity list", err)
		}
	} else if err := b.kv.Delete(ctx, keyActivityListDefault, jetstream.LastRevision(rev)); err != nil {
		return nil, wrapConcurrency("drain activity list", err)
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
	for _, ref := range refs {
		if err := b.kv.Delete(ctx, activityItemKey(ref.Part, ref.ID)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
			return wrapStorage("delete activity", err)
		}
	}
	return nil
}

func (b *Backend) loadActivityRefs(ctx context.Context) ([]activityRef, uint64, error) {
	entry, err := b.kv.Get(ctx, keyActivityListDefault)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, wrapStorage("load activity list", err)
	}
	if len(entry.Value()) == 0 {
		return nil, entry.Revision(), nil
	}
	var refs []activityRef
	if err := json.Unmarshal(entry.Value(), &refs); err != nil {
		return nil, 0, wrapSerialization("unmarshal activity list", err)
	}
	return refs, entry.Revision(), nil
}

func (b *Backend) appendDefaultRef(ctx context.Context, ref activityRef) error {
	b.activityListMu.Lock()
	defer b.activityListMu.Unlock()

	listCap := b.cfg.Activity.DefaultListCap

	for attempt := 0; attempt < maxOptimisticRetries; attempt++ {
		refs, rev, err := b.loadActivityRefs(ctx)
		if err != nil {
			return err
		}

		refs = append(refs, ref)
		if listCap > 0 && len(refs) > listCap {
			refs = refs[len(refs)-listCap:]
		}

		data, err := json.Marshal(refs)
		if err != nil {
			return wrapSerialization("marshal activity list", err)
		}

		var putErr error
		if rev == 0 {
			_, putErr = b.kv.Create(ctx, keyActivityListDefault, data)
		} else {
			_, putErr = b.kv.Update(ctx, keyActivityListDefault, data, rev)
		}
		if putErr == nil {
			return nil
		}
		if !errors.Is(putErr, jetstream.ErrKeyExists) && !isWrongLastSequence(putErr) {
			return wrapStorage("append default activity ref", putErr)
		}
	}
	return wrapConcurrency("append default activity ref", errors.New("retry budget exhausted"))
}
