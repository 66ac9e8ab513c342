// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recostore

import "errors"

// Sentinel error kinds the core distinguishes, per the storage trait
// contract. Backends wrap these with fmt.Errorf("...: %w", ErrX) so
// callers can match with errors.Is.
var (
	// ErrInput indicates malformed or missing caller input.
	ErrInput = errors.New("input error")

	// ErrStorage indicates a backend I/O failure.
	ErrStorage = errors.New("storage error")

	// ErrSerialization indicates corrupt persisted bytes. The core does
	// not attempt to repair data that fails to decode.
	ErrSerialization = errors.New("serialization error")

	// ErrConcurrencyExhausted indicates an optimistic write failed after
	// exhausting its retry budget.
	ErrConcurrencyExhausted = errors.New("concurrency retry exhausted")
)

// TrainingSkipped reports that a training tick made no update. It is
// deliberately not one of the sentinel errors above: the training
// controller treats it as a successful no-op, never as a failure.
type TrainingSkipped struct {
	Reason string
}

func (e *TrainingSkipped) Error() string {
	return "training skipped: " + e.Reason
}
