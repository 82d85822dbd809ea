// Copyright (c) 2020 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

package oneshot

import "errors"

// ErrTimeout is returned by SetTimeout for a non-positive interval.
var ErrTimeout = errors.New("non-positive interval for SetTimeout")

// Mode is the readiness reported for a descriptor.
type Mode int

const (
	// READ means the descriptor is readable, or the listener has pending connections.
	READ Mode = 1 << iota
	// WRITE means the descriptor is writable.
	WRITE
)

// Event is a readiness event returned by Wait.
type Event struct {
	Fd   int
	Mode Mode
}
