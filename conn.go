// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

//go:build darwin || dragonfly || freebsd || netbsd || openbsd || linux
// +build darwin dragonfly freebsd netbsd openbsd linux

package oneshot

import (
	"io"
	"net"

	"github.com/hslam/buffer"
	"golang.org/x/sys/unix"
)

var buffers = buffer.NewBuffers(1024)

// conn is the state of an accepted connection. It is owned by the server
// goroutine that accepted it.
type conn struct {
	fd    int
	raddr net.Addr
	// rbuf accumulates every byte read since accept.
	rbuf []byte
	// wbuf holds the response, woff the number of bytes already sent.
	wbuf []byte
	woff int
	// ready is set by SetResponse and never reset.
	ready   bool
	serving bool
}

func newConn(fd int, raddr net.Addr) *conn {
	return &conn{fd: fd, raddr: raddr}
}

func (c *conn) SetResponse(payload []byte) error {
	if c.ready {
		return ErrResponded
	}
	if !c.serving {
		return ErrNotServing
	}
	if len(payload) > 0 {
		c.wbuf = buffers.GetBuffer(len(payload))[:len(payload)]
		copy(c.wbuf, payload)
	}
	c.woff = 0
	c.ready = true
	return nil
}

func (c *conn) Responded() bool {
	return c.ready
}

func (c *conn) RemoteAddr() net.Addr {
	return c.raddr
}

// handle appends p to the read buffer and invokes h with everything read so far.
func (c *conn) handle(h Handler, p []byte) {
	c.rbuf = append(c.rbuf, p...)
	c.serving = true
	h(c, c.rbuf)
	c.serving = false
}

// flush writes the unsent part of the response, resuming at woff. It stops
// at the first error; retain is the number of bytes left to send.
func (c *conn) flush() (retain int, err error) {
	for c.woff < len(c.wbuf) {
		n, err := unix.Write(c.fd, c.wbuf[c.woff:])
		if n > 0 {
			c.woff += n
		}
		if err == unix.EINTR {
			continue
		} else if err != nil {
			return len(c.wbuf) - c.woff, err
		} else if n == 0 {
			return len(c.wbuf) - c.woff, io.ErrShortWrite
		}
	}
	return 0, nil
}

// release returns the buffers and closes the descriptor.
func (c *conn) release() error {
	if c.wbuf != nil {
		buffers.PutBuffer(c.wbuf[:cap(c.wbuf)])
		c.wbuf = nil
	}
	c.rbuf = nil
	return unix.Close(c.fd)
}
