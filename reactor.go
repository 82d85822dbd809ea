// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

//go:build darwin || dragonfly || freebsd || netbsd || openbsd || linux
// +build darwin dragonfly freebsd netbsd openbsd linux

package oneshot

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// ReactorServer services many connections on a single goroutine with
// nonblocking sockets and one level-triggered Poll.
//
// A connection is watched for reading until the Handler responds, then for
// writing until the response is sent, then closed. All handling runs on the
// goroutine calling Run, so a Handler must never block.
type ReactorServer struct {
	server
	poll   *Poll
	lfd    int
	conns  map[int]*conn
	handle Handler
	buf    []byte
}

// NewReactorServer returns a new ReactorServer. opts may be nil.
func NewReactorServer(opts *Options) *ReactorServer {
	s := &ReactorServer{}
	s.init(opts, reactorBufferSize)
	return s
}

// Run binds and listens on address:port and services connections until Close.
func (s *ReactorServer) Run(address string, port uint16) (err error) {
	handler, err := s.serving()
	if err != nil {
		return err
	}
	defer recoverFault(&err)
	fd, addr := listen(s.log, address, port, true, s.opts.ReusePort)
	if !s.listening(fd, addr) {
		unix.Close(fd)
		return ErrServerClosed
	}
	defer s.stopListening(func(fd int) { unix.Close(fd) })

	p, err := Create()
	check(s.log, 0, err, raise(Tag+"_create"))
	defer p.Close()
	if err = p.SetTimeout(s.opts.PollTimeout); err != nil {
		return err
	}
	check(s.log, 0, p.Register(fd), raise(Tag+"_ctl"))
	s.log.WithFields(logrus.Fields{"addr": addr.String(), "poll": Tag}).Info("listening")

	pool := buffers.AssignPool(s.opts.ReadBufferSize)
	buf := pool.GetBuffer(s.opts.ReadBufferSize)
	defer pool.PutBuffer(buf)
	s.poll, s.lfd, s.handle = p, fd, handler
	s.buf = buf[:s.opts.ReadBufferSize]
	s.conns = make(map[int]*conn)
	defer s.releaseAll()

	events := make([]Event, maxEvents)
	for {
		n, err := p.Wait(events)
		if s.isClosed() {
			return ErrServerClosed
		}
		check(s.log, n, err, raise(Tag+"_wait"))
		for i := 0; i < n; i++ {
			s.serve(events[i])
		}
	}
}

func (s *ReactorServer) serve(ev Event) {
	if ev.Fd == s.lfd {
		s.accept()
		return
	}
	c, ok := s.conns[ev.Fd]
	if !ok {
		return
	}
	if c.ready {
		if ev.Mode&WRITE != 0 {
			s.write(c)
		}
	} else if ev.Mode&READ != 0 {
		s.read(c)
	}
}

// accept accepts until the listener would block.
func (s *ReactorServer) accept() {
	for {
		nfd, sa, err := unix.Accept(s.lfd)
		if err != nil {
			switch err {
			case unix.EAGAIN:
				return
			case unix.EINTR, unix.ECONNABORTED:
				continue
			}
			s.acceptFailed(err)
			return
		}
		s.accepted()
		unix.CloseOnExec(nfd)
		c := newConn(nfd, sockaddrToAddr(sa))
		log := s.connLog(c)
		if check(log.WithField("op", "setnonblock"), 0, unix.SetNonblock(nfd, true), nil) < 0 ||
			check(log.WithField("op", Tag+"_ctl"), 0, s.poll.Register(nfd), nil) < 0 {
			unix.Close(nfd)
			continue
		}
		s.conns[nfd] = c
		log.Debug("accepted")
	}
}

// read reads until the connection would block, the peer closes or the
// Handler responds.
func (s *ReactorServer) read(c *conn) {
	for {
		n, err := unix.Read(c.fd, s.buf)
		if n > 0 {
			c.handle(s.handle, s.buf[:n])
			if c.ready {
				if check(s.connLog(c).WithField("op", Tag+"_ctl"), 0, s.poll.Write(c.fd), nil) < 0 {
					s.release(c)
				}
				return
			}
			continue
		}
		switch err {
		case unix.EAGAIN:
			return
		case unix.EINTR:
			continue
		case nil:
			s.connLog(c).Debug("socket closed from other side")
		default:
			check(s.connLog(c).WithField("op", "read"), n, err, nil)
		}
		s.release(c)
		return
	}
}

// write sends the rest of the response and closes the connection once it
// is fully sent.
func (s *ReactorServer) write(c *conn) {
	_, err := c.flush()
	if err == unix.EAGAIN {
		return
	}
	if check(s.connLog(c).WithField("op", "write"), 0, err, nil) == 0 {
		s.connLog(c).WithField("bytes", c.woff).Debug("socket closed by server")
	}
	s.release(c)
}

func (s *ReactorServer) release(c *conn) {
	delete(s.conns, c.fd)
	s.poll.Unregister(c.fd)
	c.release()
}

func (s *ReactorServer) releaseAll() {
	for _, c := range s.conns {
		s.release(c)
	}
	s.conns = nil
}

func (s *ReactorServer) connLog(c *conn) logrus.FieldLogger {
	return s.log.WithFields(logrus.Fields{"fd": c.fd, "remote": c.raddr})
}
