// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package testinfra provides test infrastructure for integration
// testing with containers.
//
// This package uses testcontainers-go to manage Docker containers for
// integration tests, providing realistic testing environments that
// closely match production.
//
// # Aerospike Container
//
// The AerospikeContainer provides a real single-node Aerospike cluster
// for testing internal/recostore/spike against an actual server rather
// than a mock:
//
//	func TestSpikeBackend(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    aero, err := testinfra.NewAerospikeContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer aero.Terminate(ctx)
//
//	    backend, err := spike.Open(spike.Options{
//	        Host:      aero.Host,
//	        Port:      aero.Port,
//	        Namespace: aero.Namespace,
//	    }, recommend.DefaultConfig(), zerolog.Nop())
//	    // ...
//	}
//
// # CI Considerations
//
// These tests require Docker and network access. They are built behind
// the "integration" build tag so `go test ./...` skips them by default;
// run with `go test -tags=integration ./...` where Docker is available.
package testinfra
