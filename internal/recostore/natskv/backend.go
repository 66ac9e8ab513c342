// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package natskv implements the recommendation storage trait over a
// NATS JetStream KV bucket, the networked key-value store analogous to
// internal/eventprocessor's embedded-or-external NATS deployment model.
// Where internal/recostore/badger gives each process its own file, this
// backend lets many API instances share one logical store.
package natskv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recommend/decay"
	"github.com/tomtom215/cartographus/internal/recommend/ranklist"
	"github.com/tomtom215/cartographus/internal/recostore"
)

var _ recostore.Store = (*Backend)(nil)

// Key prefixes mirror internal/recostore/badger's backend-agnostic
// logical layout; NATS KV keys cannot contain ":" so "." is used as the
// segment separator instead.
const (
	prefixItemDefinition   = "item.definition."
	prefixItemListNear     = "item.list.near."
	prefixItemListTop      = "item.list.top."
	prefixItemListPop      = "item.list.pop."
	prefixItemListRecent   = "item.list.recent."
	prefixUserData         = "user.data."
	prefixModelScope       = "model.scope."
	keyModelDefault        = "model.default"
	prefixActivityItem     = "activity.item."
	keyActivityListDefault = "activity.list.default"
)

// maxOptimisticRetries bounds how many times a revision-guarded update
// retries against a concurrent writer before giving up with
// recostore.ErrConcurrencyExhausted.
const maxOptimisticRetries = 8

// Options configures how Open reaches a JetStream KV bucket: either an
// external NATS_URL, or an in-process server for single-instance
// deployments without external dependencies.
type Options struct {
	// URL is the external NATS server to connect to. Ignored if Embedded.
	URL string
	// Embedded starts an in-process NATS server with JetStream enabled.
	Embedded bool
	// StoreDir is the embedded server's JetStream file storage directory.
	StoreDir string
	// Bucket is the JetStream KV bucket name backing this store.
	Bucket string
}

// Backend implements recostore.Store over a JetStream KV bucket.
type Backend struct {
	embedded *server.Server
	nc       *nats.Conn
	kv       jetstream.KeyValue
	cfg      *recommend.Config
	logger   zerolog.Logger

	listsMu sync.Mutex
	lists   map[string]*ranklist.List
	listRev map[string]uint64

	activityListMu sync.Mutex
}

// Open connects to (or starts) a NATS JetStream KV bucket per opts.
func Open(ctx context.Context, opts Options, cfg *recommend.Config, logger zerolog.Logger) (*Backend, error) {
	logger = logger.With().Str("component", "recostore_natskv").Logger()

	var embedded *server.Server
	url := opts.URL

	if opts.Embedded {
		ns, err := startEmbedded(opts.StoreDir)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		embedded = ns
		url = ns.ClientURL()
	}

	nc, err := nats.Connect(url)
	if err != nil {
		if embedded != nil {
			embedded.Shutdown()
		}
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		if embedded != nil {
			embedded.Shutdown()
		}
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	bucket := opts.Bucket
	if bucket == "" {
		bucket = "recommend"
	}

	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "recommendation service item/user/model/activity state",
		})
		if err != nil {
			nc.Close()
			if embedded != nil {
				embedded.Shutdown()
			}
			return nil, fmt.Errorf("create KV bucket %s: %w", bucket, err)
		}
	}

	return &Backend{
		embedded: embedded,
		nc:       nc,
		kv:       newBreakerKV(kv, DefaultCircuitBreakerConfig("recostore_natskv_"+bucket)),
		cfg:      cfg,
		logger:   logger,
		lists:    make(map[string]*ranklist.List),
		listRev:  make(map[string]uint64),
	}, nil
}

func startEmbedded(storeDir string) (*server.Server, error) {
	opts := &server.Options{
		ServerName: "recommend-kv",
		Host:       "127.0.0.1",
		Port:       -1, // random free port, single-instance embedded use only
		JetStream:  true,
		StoreDir:   storeDir,
		DontListen: false,
		Debug:      false,
		Trace:      false,
		NoLog:      true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}

	return ns, nil
}

// Close closes the NATS connection and, if this backend started an
// embedded server, shuts it down.
func (b *Backend) Close() error {
	b.nc.Close()
	if b.embedded != nil {
		b.embedded.Shutdown()
		b.embedded.WaitForShutdown()
	}
	return nil
}

func itemDefinitionKey(part, id string) string { return prefixItemDefinition + part + "." + id }
func itemNearKey(part, id string) string       { return prefixItemListNear + part + "." + id }
func itemTopKey(part string, scope decay.HalfLife) string {
	return prefixItemListTop + part + "." + scope.String()
}
func itemPopKey(part string, scope decay.HalfLife) string {
	return prefixItemListPop + part + "." + scope.String()
}
func itemRecentKey(part string) string       { return prefixItemListRecent + part }
func userDataKey(part, id string) string     { return prefixUserData + part + "." + id }
func modelScopeKey(part string) string       { return prefixModelScope + part }
func activityItemKey(part, id string) string { return prefixActivityItem + part + "." + id }
