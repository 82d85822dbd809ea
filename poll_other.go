// Copyright (c) 2020 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd
// +build !linux,!darwin,!dragonfly,!freebsd,!netbsd,!openbsd

package oneshot

import (
	"time"
)

// Tag is the poll type.
var Tag = "none"

// Poll is not available on this platform.
type Poll struct {
}

// Create creates a new poll.
func Create() (*Poll, error) {
	return nil, ErrNotSupported
}

// SetTimeout sets the wait timeout.
func (p *Poll) SetTimeout(d time.Duration) (err error) {
	return ErrNotSupported
}

// Register registers a file descriptor.
func (p *Poll) Register(fd int) (err error) {
	return ErrNotSupported
}

// Write switches a file descriptor to write events.
func (p *Poll) Write(fd int) (err error) {
	return ErrNotSupported
}

// Unregister unregisters a file descriptor.
func (p *Poll) Unregister(fd int) (err error) {
	return ErrNotSupported
}

// Wait waits events.
func (p *Poll) Wait(events []Event) (n int, err error) {
	return 0, ErrNotSupported
}

// Close closes the poll fd.
func (p *Poll) Close() error {
	return nil
}
