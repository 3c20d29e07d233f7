//go:build darwin || linux
// +build darwin linux

package bench

import (
	"errors"
	"syscall"
)

// isBrokenPipeErr reports whether err is EPIPE, i.e. the Master closed its
// read end before the worker finished writing.
func isBrokenPipeErr(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}
