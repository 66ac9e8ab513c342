// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package badger

import (
	"context"
	"errors"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cartographus/internal/recommend"
)

// FindUser returns the user, with an empty history on a clean miss.
func (b *Backend) FindUser(ctx context.Context, part, id string) (recommend.User, error) {
	user := recommend.User{ID: id, Part: part}

	err := b.db.View(func(txn *badgerdb.Txn) error {
		kv, err := txn.Get(userDataKey(part, id))
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
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return recommend.User{}, wrapStorage("find user", err)
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

	err = b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(userDataKey(part, id), data)
	})
	if err != nil {
		return wrapStorage("push user history", err)
	}
	return nil
}
