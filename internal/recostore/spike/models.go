// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package spike

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recommend/vector"
)

// SetDefaultModel persists the global model.
func (b *Backend) SetDefaultModel(ctx context.Context, model recommend.Model) error {
	return b.setModel(keyModelDefault, model)
}

// FindDefaultModel always succeeds, returning an empty model on a miss.
func (b *Backend) FindDefaultModel(ctx context.Context) (recommend.Model, error) {
	model, ok, err := b.getModel(keyModelDefault)
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

func (b *Backend) setModel(key string, model recommend.Model) error {
	data, err := json.Marshal(model)
	if err != nil {
		return wrapSerialization("marshal model", err)
	}
	return b.putRecord(key, data)
}

func (b *Backend) getModel(key string) (recommend.Model, bool, error) {
	data, _, ok, err := b.getRecord(key)
	if err != nil {
		return recommend.Model{}, false, err
	}
	if !ok {
		return recommend.Model{}, false, nil
	}
	var model recommend.Model
	if err := json.Unmarshal(data, &model); err != nil {
		return recommend.Model{}, false, wrapSerialization("unmarshal model", err)
	}
	return model, true, nil
}
