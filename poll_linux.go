// Copyright (c) 2020 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

//go:build linux
// +build linux

package oneshot

import (
	"time"

	"golang.org/x/sys/unix"
)

// Tag is the poll type.
var Tag = "epoll"

// Poll is a level-triggered readiness multiplexer. A descriptor is watched
// either for reading or for writing, never both.
type Poll struct {
	fd      int
	events  []unix.EpollEvent
	timeout int
}

// Create creates a new poll.
func Create() (*Poll, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Poll{
		fd:      fd,
		events:  make([]unix.EpollEvent, maxEvents),
		timeout: int(pollTimeout / time.Millisecond),
	}, nil
}

// SetTimeout sets the wait timeout. A negative d blocks until an event is ready.
func (p *Poll) SetTimeout(d time.Duration) (err error) {
	if d < 0 {
		p.timeout = -1
		return nil
	}
	if d < time.Millisecond {
		return ErrTimeout
	}
	p.timeout = int(d / time.Millisecond)
	return nil
}

// Register registers a file descriptor for read events.
func (p *Poll) Register(fd int) (err error) {
	event := unix.EpollEvent{Fd: int32(fd), Events: unix.EPOLLIN}
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &event)
}

// Write switches a registered file descriptor from read events to write events.
func (p *Poll) Write(fd int) (err error) {
	event := unix.EpollEvent{Fd: int32(fd), Events: unix.EPOLLOUT}
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &event)
}

// Unregister unregisters a file descriptor.
func (p *Poll) Unregister(fd int) (err error) {
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait waits events. An interrupted wait returns no events and no error.
func (p *Poll) Wait(events []Event) (n int, err error) {
	if cap(p.events) >= len(events) {
		p.events = p.events[:len(events)]
	} else {
		p.events = make([]unix.EpollEvent, len(events))
	}
	n, err = unix.EpollWait(p.fd, p.events, p.timeout)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		ev := p.events[i]
		events[i].Fd = int(ev.Fd)
		events[i].Mode = 0
		if ev.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
			events[i].Mode |= READ
		}
		if ev.Events&(unix.EPOLLOUT|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
			events[i].Mode |= WRITE
		}
	}
	return
}

// Close closes the poll fd.
func (p *Poll) Close() error {
	return unix.Close(p.fd)
}
