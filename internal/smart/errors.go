// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package smart

import (
	"errors"
	"fmt"
	"syscall"
)

// Op names the acquisition step that failed.
type Op string

const (
	OpOpen     Op = "open"
	OpQuery    Op = "query property"
	OpRetrieve Op = "retrieve smart data"
)

var (
	ErrOpenFailed     = errors.New("open failed")
	ErrQueryFailed    = errors.New("query failed")
	ErrRetrieveFailed = errors.New("retrieve failed")

	ErrShortResponse       = errors.New("short response")
	ErrInvalidDriveNumber  = errors.New("invalid drive number")
	ErrDriverError         = errors.New("driver reported an error")
	ErrUnsupportedPlatform = errors.New("smart pass-through is not supported on this platform")
)

// Error is returned by Reader.Read. It matches ErrOpenFailed, ErrQueryFailed or
// ErrRetrieveFailed depending on Op.
type Error struct {
	Op     Op
	Device string
	// Code is the OS error number, or the driver error byte for ErrDriverError. Zero when
	// the failure did not originate from the OS.
	Code uint32
	Err  error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s %s: %v (code %d)", e.Op, e.Device, e.Err, e.Code)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Device, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrOpenFailed:
		return e.Op == OpOpen
	case ErrQueryFailed:
		return e.Op == OpQuery
	case ErrRetrieveFailed:
		return e.Op == OpRetrieve
	}
	return false
}

func newError(op Op, device string, err error) *Error {
	e := &Error{Op: op, Device: device, Err: err}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e.Code = uint32(errno)
	}
	return e
}
