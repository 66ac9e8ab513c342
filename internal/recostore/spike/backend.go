// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package spike implements the recommendation storage trait over
// Aerospike, the in-network data grid category of spec.md §1 ("embedded
// memory-mapped store, external key-value store, in-network data
// grid"). It is the idiomatic Go analogue of original_source's
// storage/spike (an aerospike-rs client wrapper that, per
// storage/mod.rs, was the original's DefaultStorage): records are
// partitioned across cluster nodes by key digest rather than held in
// one process's file or one external server's memory, giving the
// recommendation core horizontal scale-out the other two backends
// don't offer.
package spike

import (
	"fmt"
	"sync"

	as "github.com/aerospike/aerospike-client-go/v7"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recommend/decay"
	"github.com/tomtom215/cartographus/internal/recommend/ranklist"
	"github.com/tomtom215/cartographus/internal/recostore"
)

var _ recostore.Store = (*Backend)(nil)

// bin names. Every logical record (item, list, user, model, activity)
// is stored as a single opaque JSON blob in binData; WritePolicy.SendKey
// is set so the cluster also retains the logical key alongside the
// record, letting scanKeysWithPrefix recover it without a second bin.
const binData = "data"

// Key prefixes mirror internal/recostore/badger and
// internal/recostore/natskv's backend-agnostic logical layout: each
// partition/id pair maps to one Aerospike record key within the
// configured namespace/set.
const (
	prefixItemDefinition   = "item:definition:"
	prefixItemListNear     = "item:list:near:"
	prefixItemListTop      = "item:list:top:"
	prefixItemListPop      = "item:list:pop:"
	prefixItemListRecent   = "item:list:recent:"
	prefixUserData         = "user:data:"
	prefixModelScope       = "model:scope:"
	keyModelDefault        = "model:default"
	prefixActivityItem     = "activity:item:"
	keyActivityListDefault = "activity:list:default"
)

// maxOptimisticRetries bounds how many times a generation-guarded
// update retries against a concurrent writer before giving up with
// recostore.ErrConcurrencyExhausted, mirroring natskv's revision-guard
// retry budget.
const maxOptimisticRetries = 8

// Options configures how Open reaches an Aerospike cluster.
type Options struct {
	// Host is the seed node hostname or IP.
	Host string
	// Port is the seed node's service port. Default: 3000.
	Port int
	// Namespace is the Aerospike namespace backing this store.
	Namespace string
	// Set is the Aerospike set name within Namespace. Default: "recommend".
	Set string
}

// Backend implements recostore.Store over an Aerospike cluster.
type Backend struct {
	client    *as.Client
	namespace string
	set       string
	cfg       *recommend.Config
	logger    zerolog.Logger

	listsMu sync.Mutex
	lists   map[string]*ranklist.List
	listGen map[string]uint32

	activityListMu sync.Mutex
}

// Open connects to the Aerospike cluster described by opts.
func Open(opts Options, cfg *recommend.Config, logger zerolog.Logger) (*Backend, error) {
	port := opts.Port
	if port == 0 {
		port = 3000
	}
	set := opts.Set
	if set == "" {
		set = "recommend"
	}

	client, err := as.NewClient(opts.Host, port)
	if err != nil {
		return nil, fmt.Errorf("connect to aerospike at %s:%d: %w", opts.Host, port, err)
	}

	return &Backend{
		client:    client,
		namespace: opts.Namespace,
		set:       set,
		cfg:       cfg,
		logger:    logger.With().Str("component", "recostore_spike").Logger(),
		lists:     make(map[string]*ranklist.List),
		listGen:   make(map[string]uint32),
	}, nil
}

// Close releases the underlying Aerospike client and its node pool.
func (b *Backend) Close() error {
	b.client.Close()
	return nil
}

// key builds the Aerospike key for a logical record name within this
// backend's namespace/set.
func (b *Backend) key(logical string) (*as.Key, error) {
	k, err := as.NewKey(b.namespace, b.set, logical)
	if err != nil {
		return nil, fmt.Errorf("build aerospike key %q: %w", logical, err)
	}
	return k, nil
}

// writePolicy returns a policy that never expires the record and asks
// the cluster to retain the logical key alongside it (SendKey), so
// scanKeysWithPrefix can recover it later without a duplicate bin.
func (b *Backend) writePolicy() *as.WritePolicy {
	wp := as.NewWritePolicy(0, as.TTLDontExpire)
	wp.SendKey = true
	return wp
}

// ttlWritePolicy is writePolicy with an expiration, used for records
// spec.md gives a finite lifetime (activities).
func (b *Backend) ttlWritePolicy(ttlSeconds uint32) *as.WritePolicy {
	wp := as.NewWritePolicy(0, ttlSeconds)
	wp.SendKey = true
	return wp
}

// genWritePolicy guards a write with an expected generation, failing
// with GENERATION_ERROR if another writer has raced ahead. Used by the
// ranked-list and default-activity-list compare-and-swap paths, the
// Aerospike analogue of natskv's JetStream revision guard.
func (b *Backend) genWritePolicy(gen uint32) *as.WritePolicy {
	wp := b.writePolicy()
	if gen > 0 {
		wp.GenerationPolicy = as.EXPECT_GEN_EQUAL
		wp.Generation = gen
	}
	return wp
}

func itemDefinitionKey(part, id string) string { return prefixItemDefinition + part + ":" + id }
func itemNearKey(part, id string) string       { return prefixItemListNear + part + ":" + id }
func itemTopKey(part string, scope decay.HalfLife) string {
	return prefixItemListTop + part + ":" + scope.String()
}
func itemPopKey(part string, scope decay.HalfLife) string {
	return prefixItemListPop + part + ":" + scope.String()
}
func itemRecentKey(part string) string       { return prefixItemListRecent + part }
func userDataKey(part, id string) string     { return prefixUserData + part + ":" + id }
func modelScopeKey(part string) string       { return prefixModelScope + part }
func activityItemKey(part, id string) string { return prefixActivityItem + part + ":" + id }
