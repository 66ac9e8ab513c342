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
	"github.com/tomtom215/cartographus/internal/recommend/vector"
)

// SetDefaultModel persists the global model.
func (b *Backend) SetDefaultModel(ctx context.Context, model recommend.Model) error {
	return b.setModel(ctx, keyModelDefault, model)
}

// FindDefaultModel always succeeds, returning an empty model on a miss.
func (b *Backend) FindDefaultModel(ctx context.Context) (recommend.Model, error) {
	model, ok, err := b.getModel(ctx, keyModelDefault)
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
	return b.getModel(ctx, modelScopeKey(part))
}

func (b *Backend) setModel(ctx context.Context, key string, model recommend.Model) error {
	data, err := json.Marshal(model)
	if err != nil {
		return wrapSerialization("marshal model", err)
	}
	if _, err := b.kv.Put(ctx, key, data); err != nil {
		return wrapStorage("set model", err)
	}
	return nil
}

func (b *Backend) getModel(ctx context.Context, key string) (recommend.Model, bool, error) {
	entry, err := b.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return recommend.Model{}, false, nil
	}
	if err != nil {
		return recommend.Model{}, false, wrapStorage("find model", err)
	}
	var model recommend.Model
	if err := json.Unmarshal(entry.Value(), &model); err != nil {
		return recommend.Model{}, false, wrapSerialization("unmarshal model", err)
	}
	return model, true, nil
}
