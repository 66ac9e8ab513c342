// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package natskv

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	gobreaker "github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig configures the breaker wrapping every call into the
// JetStream KV bucket. Mirrors internal/eventprocessor's own
// CircuitBreakerConfig shape for its NATS resilience wrapping.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Failures before opening
}

// DefaultCircuitBreakerConfig returns production defaults for a single
// KV bucket's breaker.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// breakerKV wraps a jetstream.KeyValue so a degraded external NATS
// deployment trips a circuit instead of letting every recostore call
// block or fail slowly against it. Key-not-found and key-exists are
// expected, routine outcomes and never count as failures; only
// transport/server errors do.
type breakerKV struct {
	jetstream.KeyValue
	cb *gobreaker.CircuitBreaker[interface{}]
}

func newBreakerKV(kv jetstream.KeyValue, cfg CircuitBreakerConfig) *breakerKV {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, jetstream.ErrKeyNotFound) ||
				errors.Is(err, jetstream.ErrKeyExists) ||
				isWrongLastSequence(err)
		},
	}

	return &breakerKV{
		KeyValue: kv,
		cb:       gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

// state returns the breaker's current state for health reporting.
func (b *breakerKV) state() string {
	return b.cb.State().String()
}

func (b *breakerKV) Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.KeyValue.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(jetstream.KeyValueEntry), nil
}

func (b *breakerKV) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.KeyValue.Put(ctx, key, value)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

func (b *breakerKV) Create(ctx context.Context, key string, value []byte) (uint64, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.KeyValue.Create(ctx, key, value)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

func (b *breakerKV) Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.KeyValue.Update(ctx, key, value, revision)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

func (b *breakerKV) Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.KeyValue.Delete(ctx, key, opts...)
	})
	return err
}

func (b *breakerKV) ListKeys(ctx context.Context, opts ...jetstream.WatchOpt) (jetstream.KeyLister, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.KeyValue.ListKeys(ctx, opts...)
	})
	if err != nil {
		return nil, err
	}
	return v.(jetstream.KeyLister), nil
}
