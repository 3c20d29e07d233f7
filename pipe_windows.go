//go:build windows
// +build windows

package bench

import (
	"errors"
	"syscall"
)

// errBrokenPipe is ERROR_BROKEN_PIPE, Windows' equivalent of POSIX EPIPE.
const errBrokenPipe = syscall.Errno(109)

// isBrokenPipeErr reports whether err is ERROR_BROKEN_PIPE, i.e. the Master
// closed its read end before the worker finished writing.
func isBrokenPipeErr(err error) bool {
	return errors.Is(err, errBrokenPipe)
}
