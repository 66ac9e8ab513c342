// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartographus/internal/config"
	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recostore"
	"github.com/tomtom215/cartographus/internal/recostore/badger"
	"github.com/tomtom215/cartographus/internal/recostore/natskv"
	"github.com/tomtom215/cartographus/internal/recostore/spike"
	"github.com/tomtom215/cartographus/internal/supervisor/services"
)

// RecommendComponents bundles the storage backend, engine, and
// Suture-supervised training service built by initRecommend. Store is
// exposed separately from Engine because the HTTP handler layer reads
// and writes it directly (item and activity administration) alongside
// driving Engine.Recommend/View.
type RecommendComponents struct {
	Store   recostore.Store
	Engine  *recommend.Engine
	Service *services.RecommendService

	closer func() error
}

// Close releases the underlying storage backend.
func (c *RecommendComponents) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// initRecommend opens the configured recostore.Store backend and wires
// it into a recommend.Engine plus a periodic training RecommendService.
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	engineCfg := cfg.EngineConfig()

	store, closer, err := openStore(ctx, cfg, engineCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open recostore backend: %w", err)
	}

	engine := recommend.NewEngine(store, engineCfg, logger)

	svc := services.NewRecommendService(engine, services.RecommendServiceConfig{
		TrainOnStartup:  true,
		TrainInterval:   cfg.Recommend.TrainInterval,
		MinInteractions: cfg.Recommend.MinLabeledFeatures,
	}, logger)

	return &RecommendComponents{
		Store:   store,
		Engine:  engine,
		Service: svc,
		closer:  closer,
	}, nil
}

// openStore opens the recostore.Store backend selected by
// cfg.Storage.Backend, returning a func that releases it.
func openStore(ctx context.Context, cfg *config.Config, engineCfg *recommend.Config, logger zerolog.Logger) (recostore.Store, func() error, error) {
	switch cfg.Storage.Backend {
	case "nats":
		backend, err := natskv.Open(ctx, natskv.Options{
			URL:      cfg.Storage.NATSURL,
			Embedded: cfg.Storage.NATSEmbedded,
			StoreDir: cfg.Storage.BadgerDir,
			Bucket:   cfg.Storage.NATSBucket,
		}, engineCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend.Close, nil

	case "aerospike":
		backend, err := spike.Open(spike.Options{
			Host:      cfg.Storage.AerospikeHost,
			Port:      cfg.Storage.AerospikePort,
			Namespace: cfg.Storage.AerospikeNamespace,
			Set:       cfg.Storage.AerospikeSet,
		}, engineCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend.Close, nil

	default:
		backend, err := badger.Open(cfg.Storage.BadgerDir, engineCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend.Close, nil
	}
}
