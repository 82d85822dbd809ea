// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

//go:build darwin || dragonfly || freebsd || netbsd || openbsd || linux
// +build darwin dragonfly freebsd netbsd openbsd linux

package oneshot

import (
	"net"
	"strconv"

	"github.com/hslam/reuse"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// listen creates an IPv4 listening socket. Failures are raised as setup
// faults and must be recovered by the caller's Run.
func listen(log logrus.FieldLogger, address string, port uint16, nonblock, reusePort bool) (fd int, addr net.Addr) {
	ip := net.ParseIP(address).To4()
	if ip == nil {
		panic(fault{ErrAddress})
	}
	var err error
	fd, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	check(log, fd, err, raise("socket"))
	ok := false
	defer func() {
		if !ok {
			unix.Close(fd)
		}
	}()
	unix.CloseOnExec(fd)
	if reusePort {
		err = reuse.Control("tcp4", net.JoinHostPort(address, strconv.Itoa(int(port))), rawConn(fd))
		check(log, 0, err, raise("setsockopt"))
	}
	sa := &unix.SockaddrInet4{Port: int(port)}
	copy(sa.Addr[:], ip)
	check(log, 0, unix.Bind(fd, sa), raise("bind"))
	check(log, 0, unix.Listen(fd, Backlog), raise("listen"))
	if nonblock {
		check(log, 0, unix.SetNonblock(fd, true), raise("setnonblock"))
	}
	bound, err := unix.Getsockname(fd)
	check(log, 0, err, raise("getsockname"))
	ok = true
	return fd, sockaddrToAddr(bound)
}

// Close stops the server. The listening socket is shut down so that a
// blocked accept or wait returns. A connection being serviced by a
// BlockingServer is completed first.
func (s *server) Close() error {
	if !s.close() {
		return nil
	}
	var err error
	s.mu.Lock()
	if s.fd >= 0 {
		err = unix.Shutdown(s.fd, unix.SHUT_RDWR)
	}
	s.mu.Unlock()
	return err
}

func sockaddrToAddr(sa unix.Sockaddr) net.Addr {
	switch sockaddr := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{
			IP:   append(net.IP{}, sockaddr.Addr[:]...),
			Port: sockaddr.Port,
		}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{
			IP:   append(net.IP{}, sockaddr.Addr[:]...),
			Port: sockaddr.Port,
		}
	case *unix.SockaddrUnix:
		return &net.UnixAddr{Net: "unix", Name: sockaddr.Name}
	}
	return nil
}

// rawConn exposes a raw descriptor as a syscall.RawConn for socket option
// helpers.
type rawConn int

func (fd rawConn) Control(f func(fd uintptr)) error {
	f(uintptr(fd))
	return nil
}

func (fd rawConn) Read(f func(fd uintptr) (done bool)) error {
	return ErrNotSupported
}

func (fd rawConn) Write(f func(fd uintptr) (done bool)) error {
	return ErrNotSupported
}
