// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package natskv

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/cartographus/internal/recommend"
)

// FindUser returns the user, with an empty history on a clean miss.
func (b *Backend) FindUser(ctx context.Context, part, id string) (recommend.User, error) {
	user := recommend.User{ID: id, Part: part}

	entry, err := b.kv.Get(ctx, userDataKey(part, id))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return user, nil
	}
	if err != nil {
		return recommend.User{}, wrapStorage("find user", err)
	}
	if len(entry.Value()) == 0 {
		return user, nil
	}
	if err := json.Unmarshal(entry.Value(), &user); err != nil {
		return recommend.User{}, wrapSerialization("unmarshal user", err)
	}
	return user, nil
}

// PushHistory prepends itemID to the user's history, truncating to maxLen.
func (b *Backend) PushHistory(ctx context.Context, part, id, itemID string, maxLen int) error {
	user, err := b.FindUser(ctx, part, id)
	if err != nil {
		return err
	}
	user.PushHistory(itemID, maxLen)

	data, err := json.Marshal(user)
	if err != nil {
		return wrapSerialization("marshal user", err)
	}
	if _, err := b.kv.Put(ctx, userDataKey(part, id), data); err != nil {
		return wrapStorage("push user history", err)
	}
	return nil
}
