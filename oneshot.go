// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

// Package oneshot implements one request, one response TCP servers.
//
// A connection is accepted, its bytes are accumulated and handed to a single
// Handler until the Handler supplies a response with Conn.SetResponse. The
// response is written in full and the connection is closed.
//
// Two servers implement the Server interface. BlockingServer services exactly
// one connection at a time with blocking system calls. ReactorServer services
// many connections on one goroutine with nonblocking sockets and a
// level-triggered readiness multiplexer (epoll or kqueue).
package oneshot

import (
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// Backlog is the number of pending connections queued by the listening socket.
	Backlog = 10

	blockingBufferSize = 1024
	reactorBufferSize  = 4096
	pollTimeout        = time.Millisecond * 100
	maxEvents          = 1024
)

// ErrServerClosed is returned by Run after a call to Close.
var ErrServerClosed = errors.New("Server closed")

// ErrHandler is the error when the Handler is nil.
var ErrHandler = errors.New("Handler must be not nil")

// ErrHandlerRegistered is returned by Handle when a Handler is already installed.
var ErrHandlerRegistered = errors.New("Handler already registered")

// ErrAddress is returned by Run when the address is not an IPv4 address.
var ErrAddress = errors.New("address must be an IPv4 address")

// ErrResponded is returned by SetResponse when the connection already has a response.
var ErrResponded = errors.New("response already set")

// ErrNotServing is returned by SetResponse when called outside of the Handler
// invocation for that connection.
var ErrNotServing = errors.New("SetResponse called outside of the Handler")

// ErrNotSupported is returned on platforms without BSD sockets.
var ErrNotSupported = errors.New("system not supported")

// Handler is invoked after every non-empty read with all the bytes received
// on c so far. The Handler decides the message framing and calls
// c.SetResponse once the request is complete.
//
// data is owned by the server and is only valid during the call.
// Under ReactorServer a Handler must never block.
type Handler func(c Conn, data []byte)

// Conn is the handle of the connection a Handler is serving.
type Conn interface {
	// SetResponse stages payload as the full response and ends the read phase.
	SetResponse(payload []byte) error
	// Responded reports whether a response has been staged.
	Responded() bool
	// RemoteAddr returns the address of the peer.
	RemoteAddr() net.Addr
}

// Server is a one request, one response TCP server.
type Server interface {
	// Run binds and listens on the IPv4 address and port, then services
	// connections until Close. It returns a non-nil error.
	Run(address string, port uint16) error
	// Handle installs the Handler. It must be called once, before Run.
	Handle(h Handler) error
	// Addr returns the listening address, or nil before listening.
	Addr() net.Addr
	// Close stops the server.
	Close() error
}

// Options configures a server. The zero value is usable.
type Options struct {
	// ReadBufferSize is the size of the chunk read by a single read call.
	ReadBufferSize int
	// PollTimeout bounds a single multiplexer wait of the ReactorServer.
	// A negative value blocks until an event is ready.
	PollTimeout time.Duration
	// ReusePort sets SO_REUSEADDR and SO_REUSEPORT on the listening socket.
	ReusePort bool
	// Logger defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

func (o *Options) withDefaults(readBufferSize int) Options {
	var opts Options
	if o != nil {
		opts = *o
	}
	if opts.ReadBufferSize < 1 {
		opts.ReadBufferSize = readBufferSize
	}
	if opts.PollTimeout == 0 {
		opts.PollTimeout = pollTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return opts
}
