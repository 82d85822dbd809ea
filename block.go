// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

//go:build darwin || dragonfly || freebsd || netbsd || openbsd || linux
// +build darwin dragonfly freebsd netbsd openbsd linux

package oneshot

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// BlockingServer services one connection at a time with blocking system
// calls: accept, read until the Handler responds, write the response, close,
// then accept the next connection.
type BlockingServer struct {
	server
}

// NewBlockingServer returns a new BlockingServer. opts may be nil.
func NewBlockingServer(opts *Options) *BlockingServer {
	s := &BlockingServer{}
	s.init(opts, blockingBufferSize)
	return s
}

// Run binds and listens on address:port and services connections until Close.
func (s *BlockingServer) Run(address string, port uint16) (err error) {
	handler, err := s.serving()
	if err != nil {
		return err
	}
	defer recoverFault(&err)
	fd, addr := listen(s.log, address, port, false, s.opts.ReusePort)
	if !s.listening(fd, addr) {
		unix.Close(fd)
		return ErrServerClosed
	}
	defer s.stopListening(func(fd int) { unix.Close(fd) })
	s.log.WithField("addr", addr.String()).Info("listening")

	pool := buffers.AssignPool(s.opts.ReadBufferSize)
	buf := pool.GetBuffer(s.opts.ReadBufferSize)
	defer pool.PutBuffer(buf)
	buf = buf[:s.opts.ReadBufferSize]
	for {
		nfd, sa, err := unix.Accept(fd)
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			if err == unix.EINTR || err == unix.ECONNABORTED {
				continue
			}
			s.acceptFailed(err)
			continue
		}
		s.accepted()
		unix.CloseOnExec(nfd)
		s.serve(newConn(nfd, sockaddrToAddr(sa)), handler, buf)
	}
}

func (s *BlockingServer) serve(c *conn, handler Handler, buf []byte) {
	log := s.log.WithFields(logrus.Fields{"fd": c.fd, "remote": c.raddr})
	log.Debug("accepted")
	defer c.release()
	for !c.ready {
		n, err := unix.Read(c.fd, buf)
		if err == unix.EINTR {
			continue
		}
		if check(log.WithField("op", "read"), n, err, nil) < 0 {
			return
		}
		if n == 0 {
			log.Debug("socket closed from other side")
			return
		}
		c.handle(handler, buf[:n])
	}
	if _, err := c.flush(); check(log.WithField("op", "write"), 0, err, nil) < 0 {
		return
	}
	log.WithField("bytes", c.woff).Debug("socket closed by server")
}
