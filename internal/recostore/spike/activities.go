// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package spike

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recostore"
)

// activityRef is the on-the-wire shape of one entry in the default
// activity list.
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
// Expired activities rely on Aerospike's own TTL eviction rather than
// an application-level expiry check.
func (b *Backend) Load(ctx context.Context, part, id string) (recommend.Activity, bool, error) {
	data, _, ok, err := b.getRecord(activityItemKey(part, id))
	if err != nil {
		return recommend.Activity{}, false, err
	}
	if !ok {
		return recommend.Activity{}, false, nil
	}
	var activity recommend.Activity
	if err := json.Unmarshal(data, &activity); err != nil {
		return recommend.Activity{}, false, wrapSerialization("unmarshal activity", err)
	}
	return activity, true, nil
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
	if ttl <= 0 {
		return b.putRecord(activityItemKey(activity.Part, activity.ID), data)
	}
	ttlSeconds := uint32(ttl / time.Second)
	if ttlSeconds == 0 {
		ttlSeconds = 1
	}
	return b.putRecordTTL(activityItemKey(activity.Part, activity.ID), data, ttlSeconds)
}

// PluckAll atomically drains the default activity list and returns
// every activity it referenced.
func (b *Backend) PluckAll(ctx context.Context) ([]recommend.Activity, error) {
	b.activityListMu.Lock()
	defer b.activityListMu.Unlock()

	refs, gen, err := b.loadActivityRefs()
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}

	if err := b.deleteRecordGen(keyActivityListDefault, gen); err != nil {
		if isGenerationError(err) {
			return nil, wrapConcurrency("drain activity list", err)
		}
		return nil, err
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
		if err := b.deleteRecord(activityItemKey(ref.Part, ref.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) loadActivityRefs() ([]activityRef, uint32, error) {
	data, gen, ok, err := b.getRecord(keyActivityListDefault)
	if err != nil {
		return nil, 0, err
	}
	if !ok || len(data) == 0 {
		return nil, gen, nil
	}
	var refs []activityRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, 0, wrapSerialization("unmarshal activity list", err)
	}
	return refs, gen, nil
}

func (b *Backend) appendDefaultRef(ref activityRef) error {
	b.activityListMu.Lock()
	defer b.activityListMu.Unlock()

	listCap := b.cfg.Activity.DefaultListCap

	for attempt := 0; attempt < maxOptimisticRetries; attempt++ {
		refs, gen, err := b.loadActivityRefs()
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

		putErr := b.putRecordGen(keyActivityListDefault, data, gen)
		if putErr == nil {
			return nil
		}
		if !isGenerationError(putErr) {
			return wrapStorage("append default activity ref", putErr)
		}
	}
	return wrapConcurrency("append default activity ref", errors.New("retry budget exhausted"))
}
