package tfa

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrResourceUnavailable is returned by Open when the mixer or the control node cannot be opened.
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrDeviceNotFound is returned when the MI2S mixer switch does not exist on the card.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrNoClock is returned by PowerOn when the chip never reports a stable clock.
	ErrNoClock = errors.New("no clock")
)

// IOError reports a failed transfer on the control channel. The underlying error is
// kept as is, so errors.Is matches the errno returned by the driver.
type IOError struct {
	Op  string // "get" or "set"
	Reg uint8
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("tfa: %s register 0x%02x: %v", e.Op, e.Reg, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Code returns the negative errno of the failed call, -EIO when the cause carries no errno.
func (e *IOError) Code() int {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return -int(errno)
	}

	return -int(syscall.EIO)
}
