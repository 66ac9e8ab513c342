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
	"github.com/tomtom215/cartographus/internal/recommend/vector"
)

// SetDefaultModel persists the global model.
func (b *Backend) SetDefaultModel(ctx context.Context, model recommend.Model) error {
	return b.setModel([]byte(keyModelDefault), model)
}

// FindDefaultModel always succeeds, returning an empty model on a miss.
func (b *Backend) FindDefaultModel(ctx context.Context) (recommend.Model, error) {
	model, ok, err := b.getModel([]byte(keyModelDefault))
	if err != nil {
		return recommend.Model{}, err
	}
	if !ok {
		return recommend.Model{Weights: vector.FeatureMap{}}, nil
	}
	return model, nil
}

// FindModel returns the partition override, or (zero, false, nil) on a miss.
func (b *Backend) FindModel(ctx context.Context, part string) (recommend.Model, bool, error) {
	return b.getModel(modelScopeKey(part))
}

func (b *Backend) setModel(key []byte, model recommend.Model) error {
	data, err := json.Marshal(model)
	if err != nil {
		return wrapSerialization("marshal model", err)
	}
	err = b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return wrapStorage("set model", err)
	}
	return nil
}

func (b *Backend) getModel(key []byte) (recommend.Model, bool, error) {
	var model recommend.Model
	found := false

	err := b.db.View(func(txn *badgerdb.Txn) error {
		kv, err := txn.Get(key)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return kv.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &model); err != nil {
				return err
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return recommend.Model{}, false, wrapStorage("find model", err)
	}
	return model, found, nil
}
