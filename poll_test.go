// Copyright (c) 2020 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

//go:build darwin || dragonfly || freebsd || netbsd || openbsd || linux
// +build darwin dragonfly freebsd netbsd openbsd linux

package oneshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPollTimeout(t *testing.T) {
	p, err := Create()
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, ErrTimeout, p.SetTimeout(0))
	assert.Equal(t, ErrTimeout, p.SetTimeout(time.Microsecond))
	assert.NoError(t, p.SetTimeout(-1))
	assert.NoError(t, p.SetTimeout(time.Millisecond))

	n, err := p.Wait(make([]Event, maxEvents+1))
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPollReadThenWrite(t *testing.T) {
	p, err := Create()
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.SetTimeout(time.Millisecond*10))

	a, b := socketpair(t)
	defer unix.Close(a)
	defer unix.Close(b)
	require.NoError(t, p.Register(a))

	events := make([]Event, 16)
	n, err := p.Wait(events)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "nothing to read yet")

	_, err = unix.Write(b, []byte("x"))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		n, err = p.Wait(events)
		require.NoError(t, err)
		require.Equal(t, 1, n, "level-triggered readiness fires until drained")
		assert.Equal(t, a, events[0].Fd)
		assert.Equal(t, READ, events[0].Mode&READ)
	}

	require.NoError(t, p.Write(a))
	n, err = p.Wait(events)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, a, events[0].Fd)
	assert.Equal(t, WRITE, events[0].Mode)

	require.NoError(t, p.Unregister(a))
	n, err = p.Wait(events)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
