// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

package main

import (
	"net"
	"testing"

	"github.com/hslam/oneshot"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	response []byte
	ready    bool
}

func (c *fakeConn) SetResponse(payload []byte) error {
	if c.ready {
		return oneshot.ErrResponded
	}
	c.response = append([]byte(nil), payload...)
	c.ready = true
	return nil
}

func (c *fakeConn) Responded() bool { return c.ready }

func (c *fakeConn) RemoteAddr() net.Addr { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4242} }

func TestEchoWithoutDelimiter(t *testing.T) {
	log, _ := test.NewNullLogger()
	h := echo(log, nil)
	c := &fakeConn{}
	h(c, []byte("hello"))
	assert.True(t, c.Responded())
	assert.Equal(t, "hello", string(c.response))
}

func TestEchoWithDelimiter(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := echo(log, []byte("\r\n"))
	c := &fakeConn{}
	h(c, []byte("hel"))
	assert.False(t, c.Responded())
	h(c, []byte("hello\r"))
	assert.False(t, c.Responded())
	h(c, []byte("hello\r\nextra"))
	assert.True(t, c.Responded())
	assert.Equal(t, "hello\r\n", string(c.response))

	h(c, []byte("hello\r\nextra"))
	assert.Equal(t, "hello\r\n", string(c.response))
	assert.Equal(t, "set response", hook.LastEntry().Message)
}
