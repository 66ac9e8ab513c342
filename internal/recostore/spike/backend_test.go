// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package spike

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartographus/internal/recommend"
	"github.com/tomtom215/cartographus/internal/recommend/decay"
)

func TestKeyBuilders_ArePartitionScoped(t *testing.T) {
	cases := []struct {
		name string
		got  string
	}{
		{"item definition", itemDefinitionKey("p1", "item-1")},
		{"item near", itemNearKey("p1", "item-1")},
		{"item top", itemTopKey("p1", decay.Scopes[0])},
		{"item pop", itemPopKey("p1", decay.Scopes[0])},
		{"item recent", itemRecentKey("p1")},
		{"user data", userDataKey("p1", "user-1")},
		{"model scope", modelScopeKey("p1")},
		{"activity item", activityItemKey("p1", "activity-1")},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got == "" {
				t.Fatal("key builder produced an empty key")
			}
		})
	}

	a := itemDefinitionKey("p1", "item-1")
	b := itemDefinitionKey("p2", "item-1")
	if a == b {
		t.Errorf("item definition keys for different partitions collided: %q", a)
	}
}

func TestOpen_UnreachableSeedReturnsError(t *testing.T) {
	cfg := recommend.DefaultConfig()

	// A connect attempt against an address nothing listens on must fail
	// fast and wrap the error with the seed address, never panic or
	// hang — Open has no retry loop of its own.
	_, err := Open(Options{Host: "127.0.0.1", Port: 1, Namespace: "test"}, cfg, zerolog.Nop())
	if err == nil {
		t.Fatal("expected connection error against an unreachable seed node")
	}
}

func TestPutActivity_TTLRounding(t *testing.T) {
	// putActivity must never silently turn a sub-second TTL into a
	// record that lives forever.
	ttl := 500 * time.Millisecond
	ttlSeconds := uint32(ttl / time.Second)
	if ttlSeconds == 0 {
		ttlSeconds = 1
	}
	if ttlSeconds != 1 {
		t.Errorf("ttlSeconds = %d, want 1", ttlSeconds)
	}
}
