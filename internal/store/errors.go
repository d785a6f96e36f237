// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package store

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrStoreClosed is returned by operations on a closed Store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrUnsupportedDriver is returned for an unknown driver name.
	ErrUnsupportedDriver = errors.New("unsupported store driver")

	// ErrMalformedRow is returned when a review row has a NULL id or score.
	ErrMalformedRow = errors.New("malformed review row")

	// ErrNotFound is returned when a store file does not exist.
	ErrNotFound = errors.New("store not found")

	// ErrDestinationExists is returned by Split when the destination already exists.
	ErrDestinationExists = errors.New("destination store already exists")
)

// Error describes a failed store operation.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// closeQuietly closes a resource on an error path where the close error is not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
