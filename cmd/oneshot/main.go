// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

// Command oneshot runs an echo server on the blocking or the reactor model.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/hslam/oneshot"
	"github.com/hslam/oneshot/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("oneshot", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to a YAML config file")
	config.RegisterFlags(flags)
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := newLogger(cfg.Logging)

	opts := &oneshot.Options{
		ReadBufferSize: cfg.ReadBufferSize,
		PollTimeout:    cfg.PollTimeout,
		ReusePort:      cfg.ReusePort,
		Logger:         log,
	}
	var server oneshot.Server
	switch cfg.Mode {
	case config.ModeBlocking:
		server = oneshot.NewBlockingServer(opts)
	default:
		server = oneshot.NewReactorServer(opts)
	}
	if err := server.Handle(echo(log, []byte(cfg.Delimiter))); err != nil {
		log.WithError(err).Fatal("failed to register handler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	log.WithFields(logrus.Fields{"mode": cfg.Mode, "address": cfg.Address, "port": cfg.Port}).Info("starting")
	if err := server.Run(cfg.Address, cfg.Port); !errors.Is(err, oneshot.ErrServerClosed) {
		log.WithError(err).Fatal("server failed")
	}
	log.Info("server closed")
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
