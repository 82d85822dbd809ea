// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

//go:build darwin || dragonfly || freebsd || netbsd || openbsd || linux
// +build darwin dragonfly freebsd netbsd openbsd linux

package oneshot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func socketpair(t *testing.T) (int, int) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	return fds[0], fds[1]
}

func TestConnSetResponse(t *testing.T) {
	a, b := socketpair(t)
	defer unix.Close(b)
	c := newConn(a, nil)
	assert.Equal(t, ErrNotServing, c.SetResponse([]byte("early")))
	assert.False(t, c.Responded())

	var results []error
	c.handle(func(conn Conn, data []byte) {
		results = append(results, conn.SetResponse([]byte("pong")))
		results = append(results, conn.SetResponse([]byte("again")))
	}, []byte("ping"))
	assert.Equal(t, []error{nil, ErrResponded}, results)
	assert.True(t, c.Responded())
	assert.Equal(t, "pong", string(c.wbuf))
	assert.Equal(t, 0, c.woff)
	assert.NoError(t, c.release())
}

func TestConnPayloadIsCopied(t *testing.T) {
	a, b := socketpair(t)
	defer unix.Close(b)
	c := newConn(a, nil)
	payload := []byte("pong")
	c.handle(func(conn Conn, data []byte) {
		require.NoError(t, conn.SetResponse(payload))
	}, []byte("ping"))
	payload[0] = 'x'
	assert.Equal(t, "pong", string(c.wbuf))
	assert.NoError(t, c.release())
}

func TestConnHandleAccumulates(t *testing.T) {
	a, b := socketpair(t)
	defer unix.Close(b)
	c := newConn(a, nil)
	var seen []string
	h := func(conn Conn, data []byte) {
		seen = append(seen, string(data))
	}
	c.handle(h, []byte("ab"))
	c.handle(h, []byte("cd"))
	c.handle(h, []byte("ef"))
	assert.Equal(t, []string{"ab", "abcd", "abcdef"}, seen)
	assert.NoError(t, c.release())
}

func TestConnEmptyResponse(t *testing.T) {
	a, b := socketpair(t)
	defer unix.Close(b)
	c := newConn(a, nil)
	c.handle(func(conn Conn, data []byte) {
		require.NoError(t, conn.SetResponse(nil))
	}, []byte("x"))
	retain, err := c.flush()
	assert.NoError(t, err)
	assert.Equal(t, 0, retain)
	assert.NoError(t, c.release())
}

func TestConnFlushResumesAfterPartialWrite(t *testing.T) {
	a, b := socketpair(t)
	defer unix.Close(b)
	require.NoError(t, unix.SetNonblock(a, true))
	require.NoError(t, unix.SetNonblock(b, true))
	unix.SetsockoptInt(a, unix.SOL_SOCKET, unix.SO_SNDBUF, 4096)

	payload := bytes.Repeat([]byte("0123456789abcdef"), 1<<16)
	c := newConn(a, nil)
	c.handle(func(conn Conn, data []byte) {
		require.NoError(t, conn.SetResponse(payload))
	}, []byte("req"))

	var received []byte
	buf := make([]byte, 8192)
	drain := func() {
		for {
			n, err := unix.Read(b, buf)
			if n > 0 {
				received = append(received, buf[:n]...)
			}
			if err != nil || n <= 0 {
				return
			}
		}
	}
	partial := 0
	for {
		before := c.woff
		retain, err := c.flush()
		if err == nil {
			assert.Equal(t, 0, retain)
			break
		}
		require.Equal(t, unix.EAGAIN, err)
		partial++
		assert.Equal(t, len(payload)-c.woff, retain)
		assert.GreaterOrEqual(t, c.woff, before)
		drain()
	}
	drain()
	assert.Greater(t, partial, 0)
	assert.Equal(t, len(payload), c.woff)
	assert.True(t, bytes.Equal(payload, received))
	assert.NoError(t, c.release())
}
