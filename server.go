// Copyright (c) 2020 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

package oneshot

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// server holds the state shared by BlockingServer and ReactorServer.
type server struct {
	opts    Options
	log     logrus.FieldLogger
	mu      sync.Mutex
	handler Handler
	fd      int
	addr    net.Addr
	closed  int32
	delay   time.Duration
	sleep   func(time.Duration)
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

func (s *server) init(opts *Options, readBufferSize int) {
	s.opts = opts.withDefaults(readBufferSize)
	s.log = s.opts.Logger
	s.fd = -1
	s.sleep = time.Sleep
}

// Handle installs the Handler h. Replacing it is not supported.
func (s *server) Handle(h Handler) error {
	if h == nil {
		return ErrHandler
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handler != nil {
		return ErrHandlerRegistered
	}
	s.handler = h
	return nil
}

// Addr returns the listening address, or nil if the server is not listening.
func (s *server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *server) serving() (Handler, error) {
	if atomic.LoadInt32(&s.closed) != 0 {
		return nil, ErrServerClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handler == nil {
		return nil, ErrHandler
	}
	return s.handler, nil
}

// listening records the listening socket. It reports false if the server
// was closed in the meantime.
func (s *server) listening(fd int, addr net.Addr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if atomic.LoadInt32(&s.closed) != 0 {
		return false
	}
	s.fd, s.addr = fd, addr
	return true
}

// stopListening calls release with the listening socket, if any, under the
// server lock.
func (s *server) stopListening(release func(fd int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd >= 0 {
		release(s.fd)
	}
	s.fd, s.addr = -1, nil
}

func (s *server) isClosed() bool {
	return atomic.LoadInt32(&s.closed) != 0
}

// close marks the server closed. It reports false if it was already closed.
func (s *server) close() bool {
	return atomic.CompareAndSwapInt32(&s.closed, 0, 1)
}

// acceptFailed logs an accept error that is not transient, such as running
// out of descriptors, and waits before the next attempt. The delay doubles
// on each consecutive failure up to maxAcceptDelay.
func (s *server) acceptFailed(err error) {
	if s.delay == 0 {
		s.delay = minAcceptDelay
	} else if s.delay *= 2; s.delay > maxAcceptDelay {
		s.delay = maxAcceptDelay
	}
	check(s.log.WithFields(logrus.Fields{"op": "accept", "retry": s.delay}), -1, err, nil)
	s.sleep(s.delay)
}

// accepted resets the accept backoff.
func (s *server) accepted() {
	s.delay = 0
}
