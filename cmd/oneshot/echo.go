// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

package main

import (
	"bytes"

	"github.com/hslam/oneshot"
	"github.com/sirupsen/logrus"
)

// echo replies with the request. A request ends with the first delimiter;
// with an empty delimiter every read completes the request.
func echo(log logrus.FieldLogger, delimiter []byte) oneshot.Handler {
	return func(c oneshot.Conn, data []byte) {
		log.WithFields(logrus.Fields{"remote": c.RemoteAddr(), "bytes": len(data)}).Debug("server recv")
		msg := data
		if len(delimiter) > 0 {
			i := bytes.Index(data, delimiter)
			if i < 0 {
				return
			}
			msg = data[:i+len(delimiter)]
		}
		if err := c.SetResponse(msg); err != nil {
			log.WithError(err).Warn("set response")
		}
	}
}
