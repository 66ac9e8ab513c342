// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package spike

import (
	"errors"
	"fmt"

	as "github.com/aerospike/aerospike-client-go/v7"
	"github.com/aerospike/aerospike-client-go/v7/types"

	"github.com/tomtom215/cartographus/internal/recostore"
)

// wrapStorage wraps an Aerospike client failure with recostore.ErrStorage
// so callers can match it with errors.Is.
func wrapStorage(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, recostore.ErrStorage, err)
}

// wrapSerialization wraps a decode/encode failure with
// recostore.ErrSerialization.
func wrapSerialization(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, recostore.ErrSerialization, err)
}

// wrapConcurrency wraps an exhausted generation-guarded retry budget
// with recostore.ErrConcurrencyExhausted.
func wrapConcurrency(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, recostore.ErrConcurrencyExhausted, err)
}

// isNotFound reports whether err is the cluster's KEY_NOT_FOUND_ERROR,
// the one outcome every read path here treats as a clean miss rather
// than a storage failure. Mirrors original_source's
// storage/spike.rs ResultExt::optional(), which maps the same
// ResultCode to None instead of propagating it as an error.
func isNotFound(err error) bool {
	var aeroErr as.Error
	if errors.As(err, &aeroErr) {
		return aeroErr.Matches(types.KEY_NOT_FOUND_ERROR)
	}
	return false
}

// isGenerationError reports whether err is the cluster rejecting a
// generation-guarded write because another writer raced ahead.
func isGenerationError(err error) bool {
	var aeroErr as.Error
	if errors.As(err, &aeroErr) {
		return aeroErr.Matches(types.GENERATION_ERROR)
	}
	return false
}
