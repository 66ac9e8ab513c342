// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultAerospikeImage is the official single-node Aerospike
	// Community Edition image used for internal/recostore/spike's
	// integration tests.
	DefaultAerospikeImage = "aerospike/aerospike-server:latest"

	// DefaultAerospikePort is Aerospike's default client service port.
	DefaultAerospikePort = "3000"

	// DefaultAerospikeNamespace is the namespace the stock image ships
	// with an in-memory storage engine for, suitable for throwaway
	// test clusters.
	DefaultAerospikeNamespace = "test"
)

// AerospikeContainer represents a running single-node Aerospike cluster
// for testing internal/recostore/spike.
type AerospikeContainer struct {
	testcontainers.Container
	Host      string
	Port      int
	Namespace string
}

// AerospikeOption configures the Aerospike container.
type AerospikeOption func(*aerospikeConfig)

type aerospikeConfig struct {
	image        string
	namespace    string
	startTimeout time.Duration
}

// WithAerospikeImage sets a custom Aerospike Docker image.
func WithAerospikeImage(image string) AerospikeOption {
	return func(c *aerospikeConfig) { c.image = image }
}

// WithAerospikeNamespace sets the namespace tests should address.
func WithAerospikeNamespace(namespace string) AerospikeOption {
	return func(c *aerospikeConfig) { c.namespace = namespace }
}

// NewAerospikeContainer creates and starts a new single-node Aerospike
// container for testing.
//
// Example:
//
//	ctx := context.Background()
//	aero, err := NewAerospikeContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer aero.Terminate(ctx)
//
//	backend, err := spike.Open(spike.Options{
//	    Host: aero.Host, Port: aero.Port, Namespace: aero.Namespace,
//	}, recommend.DefaultConfig(), zerolog.Nop())
func NewAerospikeContainer(ctx context.Context, opts ...AerospikeOption) (*AerospikeContainer, error) {
	cfg := &aerospikeConfig{
		image:        DefaultAerospikeImage,
		namespace:    DefaultAerospikeNamespace,
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultAerospikePort + "/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultAerospikePort+"/tcp"),
			wait.ForLog("migrations: complete"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create aerospike container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, DefaultAerospikePort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("parse mapped port %q: %w", mapped.Port(), err)
	}

	return &AerospikeContainer{
		Container: container,
		Host:      host,
		Port:      port,
		Namespace: cfg.namespace,
	}, nil
}

// Terminate stops and removes the Aerospike container.
func (c *AerospikeContainer) Terminate(ctx context.Context) error {
	return c.Container.Terminate(ctx)
}
