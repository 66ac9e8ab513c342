// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package natskv

import (
	"fmt"

	"github.com/tomtom215/cartographus/internal/recostore"
)

// wrapStorage wraps a JetStream I/O failure with recostore.ErrStorage so
// callers can match it with errors.Is.
func wrapStorage(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, recostore.ErrStorage, err)
}

// wrapSerialization wraps a decode/encode failure with
// recostore.ErrSerialization.
func wrapSerialization(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, recostore.ErrSerialization, err)
}

// wrapConcurrency wraps an exhausted optimistic-update retry budget
// with recostore.ErrConcurrencyExhausted.
func wrapConcurrency(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, recostore.ErrConcurrencyExhausted, err)
}
