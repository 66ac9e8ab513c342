// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package recommend implements an online item-recommendation core built
// around decaying ranked lists and a single linear classifier per
// partition.
//
// # Architecture
//
// A recommendation request flows through four stages: candidate
// selection (near/top/popular ranked lists merged by an importance
// prior), per-candidate feature extraction, linear scoring against the
// partition's model (or the global default), and an exploratory swap
// that occasionally promotes a tail candidate into the visible prefix
// to keep the model from stagnating. Every served response is persisted
// as an activity; once the caller reports which item (if any) was
// chosen, the activity becomes a labeled training example.
//
// # Storage
//
// The core runs against the recostore.Store capability set rather than
// a concrete backend, so an embedded Badger instance, an external NATS
// JetStream KV store, and an Aerospike in-network data grid cluster are
// interchangeable at startup.
//
// # Training
//
// A training tick plucks recently-completed activities, builds labeled
// examples, and fits a logistic-regression model with a
// Barzilai-Borwein step size. The new model is promoted only if its
// held-out ROC-AUC improves on the prior model's; otherwise the tick is
// a no-op, never a failure.
//
// # Thread Safety
//
// Ranked-list mutation is serialized per list under a single mutex;
// reads are non-blocking snapshots. The package is safe for concurrent
// use by request handlers and the background training loop alike.
package recommend
