// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package badger implements the recommendation storage trait over an
// embedded BadgerDB instance, the memory-mapped file-backed KV store
// analogous to internal/auth's BadgerSessionStore.
package badger

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recommend/decay"
	"github.com/tomtom215/cartographus/internal/recommend/ranklist"
	"github.com/tomtom215/cartographus/internal/recostore"
)

var _ recostore.Store = (*Backend)(nil)

// Key prefixes mirror the backend-agnostic logical layout: each
// partition/id pair maps to one BadgerDB key.
const (
	prefixItemDefinition = "item:definition:"
	prefixItemListNear   = "item:list:near:"
	prefixItemListTop    = "item:list:top:"
	prefixItemListPop    = "item:list:pop:"
	prefixItemListRecent = "item:list:recent:"
	prefixUserData       = "user:data:"
	prefixModelScope     = "model:scope:"
	keyModelDefault      = "model:default"
	prefixActivityItem   = "activity:item:"
	keyActivityListDefault = "activity:list:default"
)

// Backend implements recostore.Store over BadgerDB.
type Backend struct {
	db     *badger.DB
	cfg    *recommend.Config
	logger zerolog.Logger

	listsMu sync.Mutex
	lists   map[string]*ranklist.List

	activityListMu sync.Mutex
}

// Open creates or opens a BadgerDB instance rooted at dir.
func Open(dir string, cfg *recommend.Config, logger zerolog.Logger) (*Backend, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}

	return &Backend{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "recostore_badger").Logger(),
		lists:  make(map[string]*ranklist.List),
	}, nil
}

// Close releases the underlying BadgerDB handle.
func (b *Backend) Close() error {
	return b.db.Close()
}

func itemDefinitionKey(part, id string) []byte {
	return []byte(prefixItemDefinition + part + ":" + id)
}

func itemNearKey(part, id string) []byte {
	return []byte(prefixItemListNear + part + ":" + id)
}

func itemTopKey(part string, scope decay.HalfLife) []byte {
	return []byte(prefixItemListTop + part + ":" + scope.String())
}

func itemPopKey(part string, scope decay.HalfLife) []byte {
	return []byte(prefixItemListPop + part + ":" + scope.String())
}

func itemRecentKey(part string) []byte {
	return []byte(prefixItemListRecent + part)
}

func userDataKey(part, id string) []byte {
	return []byte(prefixUserData + part + ":" + id)
}

func modelScopeKey(part string) []byte {
	return []byte(prefixModelScope + part)
}

func activityItemKey(part, id string) []byte {
	return []byte(prefixActivityItem + part + ":" + id)
}
