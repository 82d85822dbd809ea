// Copyright (c) 2020 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

//go:build darwin || dragonfly || freebsd || netbsd || openbsd
// +build darwin dragonfly freebsd netbsd openbsd

package oneshot

import (
	"time"

	"golang.org/x/sys/unix"
)

// Tag is the poll type.
var Tag = "kqueue"

// Poll is a level-triggered readiness multiplexer. A descriptor is watched
// either for reading or for writing, never both.
type Poll struct {
	fd      int
	events  []unix.Kevent_t
	timeout *unix.Timespec
}

// Create creates a new poll.
func Create() (*Poll, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(fd)
	p := &Poll{
		fd:     fd,
		events: make([]unix.Kevent_t, maxEvents),
	}
	p.SetTimeout(pollTimeout)
	return p, nil
}

// SetTimeout sets the wait timeout. A negative d blocks until an event is ready.
func (p *Poll) SetTimeout(d time.Duration) (err error) {
	if d < 0 {
		p.timeout = nil
		return nil
	}
	if d < time.Millisecond {
		return ErrTimeout
	}
	ts := unix.NsecToTimespec(int64(d))
	p.timeout = &ts
	return nil
}

func (p *Poll) change(fd int, filter int16, flags uint16) error {
	var changes [1]unix.Kevent_t
	unix.SetKevent(&changes[0], fd, int(filter), int(flags))
	_, err := unix.Kevent(p.fd, changes[:], nil, nil)
	return err
}

// Register registers a file descriptor for read events.
func (p *Poll) Register(fd int) (err error) {
	return p.change(fd, unix.EVFILT_READ, unix.EV_ADD)
}

// Write switches a registered file descriptor from read events to write events.
func (p *Poll) Write(fd int) (err error) {
	if err = p.change(fd, unix.EVFILT_READ, unix.EV_DELETE); err != nil {
		return err
	}
	return p.change(fd, unix.EVFILT_WRITE, unix.EV_ADD)
}

// Unregister unregisters a file descriptor.
func (p *Poll) Unregister(fd int) (err error) {
	rerr := p.change(fd, unix.EVFILT_READ, unix.EV_DELETE)
	werr := p.change(fd, unix.EVFILT_WRITE, unix.EV_DELETE)
	if rerr != nil && werr != nil {
		return rerr
	}
	return nil
}

// Wait waits events. An interrupted wait returns no events and no error.
func (p *Poll) Wait(events []Event) (n int, err error) {
	if cap(p.events) >= len(events) {
		p.events = p.events[:len(events)]
	} else {
		p.events = make([]unix.Kevent_t, len(events))
	}
	n, err = unix.Kevent(p.fd, nil, p.events, p.timeout)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		ev := p.events[i]
		events[i].Fd = int(ev.Ident)
		switch ev.Filter {
		case unix.EVFILT_READ:
			events[i].Mode = READ
		case unix.EVFILT_WRITE:
			events[i].Mode = WRITE
		}
	}
	return
}

// Close closes the poll fd.
func (p *Poll) Close() error {
	return unix.Close(p.fd)
}
