/*
   Copyright The containerd Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package kernelerrors defines the closed error taxonomy shared by every
// Orion core subsystem (the HAL dispatch core and the capability/security
// kernel). Codes are stable within a build; the numeric values themselves
// are not part of the contract, only their identity.
//
// Categories that already have a containerd/errdefs sentinel are layered on
// top of it via Unwrap, so callers anywhere in the module can use
// errors.Is(err, errdefs.ErrInvalidArgument). Every non-success code has its own
// package-level sentinel; those with no errdefs analogue wrap nothing.
package kernelerrors

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

// Code is the closed numeric enum from the external interface contract.
type Code int

const (
	Success Code = iota
	InvalidArgument
	NotImplemented
	OutOfMemory
	DeviceError
	Timeout
	Busy
	NotFound
	AlreadyExists
	PermissionDenied
	InvalidState
	Unsupported
	UnsupportedArch
	NoArch
	Hardware
	Security
)

func (c Code) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case NotImplemented:
		return "NOT_IMPLEMENTED"
	case OutOfMemory:
		return "OUT_OF_MEMORY"
	case DeviceError:
		return "DEVICE_ERROR"
	case Timeout:
		return "TIMEOUT"
	case Busy:
		return "BUSY"
	case NotFound:
		return "NOT_FOUND"
	case AlreadyExists:
		return "ALREADY_EXISTS"
	case PermissionDenied:
		return "PERMISSION_DENIED"
	case InvalidState:
		return "INVALID_STATE"
	case Unsupported:
		return "UNSUPPORTED"
	case UnsupportedArch:
		return "UNSUPPORTED_ARCH"
	case NoArch:
		return "NO_ARCH"
	case Hardware:
		return "HARDWARE"
	case Security:
		return "SECURITY"
	default:
		return "UNKNOWN"
	}
}

// KernelError carries a Code plus a message and wraps the nearest matching
// errdefs sentinel, so both errors.Is(err, kernelerrors.ErrX) and
// errors.Is(err, errdefs.ErrY) work against the same value.
type KernelError struct {
	code Code
	msg  string
	wrap error
}

func (e *KernelError) Error() string {
	if e.msg == "" {
		return e.code.String()
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *KernelError) Unwrap() error { return e.wrap }

// CodeOf returns the Code carried by err, or Success if err is nil, or
// InvalidState if err does not originate from this package.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var ke *KernelError
	if errors.As(err, &ke) {
		return ke.code
	}
	return InvalidState
}

func newSentinel(code Code, wrap error) *KernelError {
	return &KernelError{code: code, wrap: wrap}
}

// Sentinel values. Compare with errors.Is, never with ==, since callers may
// receive a wrapped *KernelError built by New/Newf.
var (
	ErrInvalidArgument  = newSentinel(InvalidArgument, errdefs.ErrInvalidArgument)
	ErrNotImplemented   = newSentinel(NotImplemented, errdefs.ErrNotImplemented)
	ErrOutOfMemory      = newSentinel(OutOfMemory, errdefs.ErrResourceExhausted)
	ErrDeviceError      = newSentinel(DeviceError, nil)
	ErrTimeout          = newSentinel(Timeout, errdefs.ErrDeadlineExceeded)
	ErrBusy             = newSentinel(Busy, errdefs.ErrUnavailable)
	ErrNotFound         = newSentinel(NotFound, errdefs.ErrNotFound)
	ErrAlreadyExists    = newSentinel(AlreadyExists, errdefs.ErrAlreadyExists)
	ErrPermissionDenied = newSentinel(PermissionDenied, errdefs.ErrPermissionDenied)
	ErrInvalidState     = newSentinel(InvalidState, errdefs.ErrFailedPrecondition)
	ErrUnsupported      = newSentinel(Unsupported, errdefs.ErrNotImplemented)
	ErrUnsupportedArch  = newSentinel(UnsupportedArch, nil)
	ErrNoArch           = newSentinel(NoArch, nil)
	ErrHardware         = newSentinel(Hardware, nil)
	ErrSecurity         = newSentinel(Security, errdefs.ErrPermissionDenied)
)

// New builds a new error of the given code carrying msg, still matched by
// errors.Is against the package sentinel for that code.
func New(code Code, msg string) error {
	return &KernelError{code: code, msg: msg, wrap: sentinelFor(code)}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(code Code, format string, args ...interface{}) error {
	return New(code, fmt.Sprintf(format, args...))
}

func sentinelFor(code Code) error {
	switch code {
	case InvalidArgument:
		return ErrInvalidArgument
	case NotImplemented:
		return ErrNotImplemented
	case OutOfMemory:
		return ErrOutOfMemory
	case DeviceError:
		return ErrDeviceError
	case Timeout:
		return ErrTimeout
	case Busy:
		return ErrBusy
	case NotFound:
		return ErrNotFound
	case AlreadyExists:
		return ErrAlreadyExists
	case PermissionDenied:
		return ErrPermissionDenied
	case InvalidState:
		return ErrInvalidState
	case Unsupported:
		return ErrUnsupported
	case UnsupportedArch:
		return ErrUnsupportedArch
	case NoArch:
		return ErrNoArch
	case Hardware:
		return ErrHardware
	case Security:
		return ErrSecurity
	default:
		return nil
	}
}
