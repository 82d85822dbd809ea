// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

package oneshot

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
)

var errUnknown = errors.New("unknown error")

// Check checks the result n and error err of a system call.
//
// If the call failed, Check logs the error description, invokes fail when it
// is not nil and returns a negative value. Otherwise it returns 0; the
// result n itself is never returned, callers keep their own copy.
func Check(n int, err error, fail func(error)) int {
	return check(logrus.StandardLogger(), n, err, fail)
}

func check(log logrus.FieldLogger, n int, err error, fail func(error)) int {
	if n >= 0 && err == nil {
		return 0
	}
	if err == nil {
		err = errUnknown
	}
	log.WithError(err).Errorf("[ERROR]: %s", err.Error())
	if fail != nil {
		fail(err)
	}
	if n >= 0 {
		n = -1
	}
	return n
}

// fault carries a setup failure from raise to recoverFault.
type fault struct {
	err error
}

// raise returns a Check callback escalating the failure of op to the
// enclosing Run.
func raise(op string) func(error) {
	return func(err error) {
		panic(fault{os.NewSyscallError(op, err)})
	}
}

// recoverFault must be deferred by Run. Panics other than a fault are
// propagated.
func recoverFault(err *error) {
	if e := recover(); e != nil {
		f, ok := e.(fault)
		if !ok {
			panic(e)
		}
		*err = f.err
	}
}
