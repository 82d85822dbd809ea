// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd
// +build !linux,!darwin,!dragonfly,!freebsd,!netbsd,!openbsd

package oneshot

// BlockingServer is not available on this platform.
type BlockingServer struct {
	server
}

// NewBlockingServer returns a new BlockingServer.
func NewBlockingServer(opts *Options) *BlockingServer {
	s := &BlockingServer{}
	s.init(opts, blockingBufferSize)
	return s
}

// Run returns ErrNotSupported.
func (s *BlockingServer) Run(address string, port uint16) error {
	return ErrNotSupported
}

// ReactorServer is not available on this platform.
type ReactorServer struct {
	server
}

// NewReactorServer returns a new ReactorServer.
func NewReactorServer(opts *Options) *ReactorServer {
	s := &ReactorServer{}
	s.init(opts, reactorBufferSize)
	return s
}

// Run returns ErrNotSupported.
func (s *ReactorServer) Run(address string, port uint16) error {
	return ErrNotSupported
}

// Close stops the server.
func (s *server) Close() error {
	s.close()
	return nil
}
