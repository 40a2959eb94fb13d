// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package blunder provides error-handling wrappers
//
// These wrappers allow callers to provide additional information in Go errors
// while still conforming to the Go error interface.
//
// This package provides APIs to add errno information to regular Go errors.
//
// This package is currently implemented on top of the ansel1/merry package:
//   https://github.com/ansel1/merry
//
//   merry comes with built-in support for adding information to errors:
//    - stacktraces
//    - overriding the error message
//    - end user error messages
//    - your own additional information
//
//   From merry godoc:
//     You can add any context information to an error with `e = merry.WithValue(e, "code", 12345)`
//     You can retrieve that value with `v, _ := merry.Value(e, "code").(int)`
//
package blunder

import (
	"fmt"

	"github.com/ansel1/merry"
	"golang.org/x/sys/unix"

	"github.com/NVIDIA/efidiag/logger"
)

// Error constants to be used in the efidiag namespace.
//
// There are two groups of constants:
//  - constants that correspond to linux/POSIX errnos as defined in errno.h
//  - efidiag-specific constants for guest-buffer validation failures not
//    covered in the errno space
//
// The linux/POSIX-related constants should be used in cases where there is a
// clear mapping to these errors (file and socket plumbing in the daemon). The
// diagnostics constants carry the exact failure mode so callers and tests can
// select on it.
//
// NOTE: unix.Errno is used here because they are errno constants that exist in Go-land.
//       This type consists of an unsigned number describing an error condition. It implements
//       the error interface; we need to cast it to an int to get the errno value.
//
type DiagError int

const (
	// Errors that map to linux/POSIX errnos as defined in errno.h
	//
	NotPermError      DiagError = DiagError(int(unix.EPERM))     // Operation not permitted
	NotFoundError     DiagError = DiagError(int(unix.ENOENT))    // No such file or directory
	IOError           DiagError = DiagError(int(unix.EIO))       // I/O error
	TryAgainError     DiagError = DiagError(int(unix.EAGAIN))    // Try again
	OutOfMemoryError  DiagError = DiagError(int(unix.ENOMEM))    // Out of memory
	PermDeniedError   DiagError = DiagError(int(unix.EACCES))    // Permission denied
	BadAddressError   DiagError = DiagError(int(unix.EFAULT))    // Bad address
	DevBusyError      DiagError = DiagError(int(unix.EBUSY))     // Device or resource busy
	InvalidArgError   DiagError = DiagError(int(unix.EINVAL))    // Invalid argument
	FileTooLargeError DiagError = DiagError(int(unix.EFBIG))     // File too large
	OutOfRangeError   DiagError = DiagError(int(unix.ERANGE))    // Math result not representable
	TimedOut          DiagError = DiagError(int(unix.ETIMEDOUT)) // Connection Timed Out
)

// Success error (sounds odd, no? - perhaps this could be renamed "NotAnError"?)
const SuccessError DiagError = 0

const ( // reset iota to 0
	// Errors that are specific to guest diagnostics-buffer processing.
	// One constant per distinct validation failure so that callers never
	// have to parse error strings.

	// InvalidAddressError - a guest physical address failed validation (zero or all-ones)
	InvalidAddressError DiagError = 1000 + iota
	// NoAddressError - no buffer address has been registered with the device
	NoAddressError
	// GuestMemoryReadError - a read from guest memory failed or ran out of range
	GuestMemoryReadError
	// HeaderSignatureError - the buffer header signature was not "ALOG"
	HeaderSignatureError
	// BufferSizeExceededError - the declared buffer capacity exceeds the hard cap
	BufferSizeExceededError
	// InvalidUsedSizeError - the write cursor precedes the payload start
	InvalidUsedSizeError
	// OverflowError - checked arithmetic on guest-supplied integers overflowed
	OverflowError
	// SliceReadError - an entry prefix or message ran past the end of its window
	SliceReadError
	// EntrySignatureError - an entry signature was not "ALM2"
	EntrySignatureError
	// MessageLengthError - an entry declared a message longer than the per-message cap
	MessageLengthError
	// BadMessageEndError - an entry's message end exceeds the entry window
	BadMessageEndError
	// UTF8Error - an entry's message bytes are not valid UTF-8
	UTF8Error
	// MessageTooLongError - an accumulated message exceeded the per-message cap
	MessageTooLongError
)

// Default errno values for success and failure
const successErrno = 0
const failureErrno = -1

// Value returns the int value for the specified DiagError constant
func (err DiagError) Value() int {
	return int(err)
}

// NewError creates a new merry/blunder.DiagError-annotated error using the
// given format string and arguments.
func NewError(errValue DiagError, format string, a ...interface{}) error {
	return merry.WrapSkipping(fmt.Errorf(format, a...), 1).WithValue("errno", int(errValue))
}

// AddError is used to add error detail to a Go error.
//
// NOTE: Checks whether the error value has already been set
//       Note that by default merry will replace the old with the new.
//
func AddError(e error, errValue DiagError) error {
	if e == nil {
		// Error hasn't been allocated yet; need to create one
		//
		// Usually we wouldn't want to mess with a nil error, but the caller of
		// this function obviously intends to make this a non-nil error.
		//
		// It's recommended that the caller create an error with some context
		// in the error string first, but we don't want to silently not work
		// if they forget to do that.
		//
		return merry.New("regular error").WithValue("errno", int(errValue))
	}

	// Make the error "merry", adding stack trace as well as errno value.
	// This is done all in one line because the merry APIs create a new error each time.

	// For now, check and log if an errno has already been added to
	// this error, to help debugging in the cases where this was not intentional.
	prevValue := Errno(e)
	if prevValue != successErrno && prevValue != failureErrno {
		logger.Warnf("replacing error value %v with value %v for error %v.\n", prevValue, int(errValue), e)
	}

	return merry.WrapSkipping(e, 1).WithValue("errno", int(errValue))
}

func hasErrnoValue(e error) bool {
	// If the "errno" key/value was not present, merry.Value returns nil.
	tmp := merry.Value(e, "errno")
	if tmp != nil {
		return true
	}

	return false
}

// Errno extracts errno from the error, if it was previously wrapped.
// Otherwise a default value is returned.
//
func Errno(e error) int {
	if e == nil {
		// nil error = success
		return successErrno
	}

	// If the "errno" key/value was not present, merry.Value returns nil.
	var errno = failureErrno
	tmp := merry.Value(e, "errno")
	if tmp != nil {
		errno = tmp.(int)
	}

	return errno
}

func ErrorString(e error) string {
	if e == nil {
		return ""
	}

	// Get the regular error string
	errPlusVal := e.Error()

	// Add the error value to it, if set
	tmp := merry.Value(e, "errno")
	if tmp != nil {
		errPlusVal = fmt.Sprintf("%s. Error Value: %v\n", errPlusVal, tmp.(int))
	}

	return errPlusVal
}

// Check if an error matches a particular DiagError
//
// NOTE: Because the value of the underlying errno is used to do this check, one cannot
//       use this API to distinguish between DiagErrors that use the same errno value.
//
func Is(e error, theError DiagError) bool {
	return Errno(e) == theError.Value()
}

// Check if an error is NOT a particular DiagError
func IsNot(e error, theError DiagError) bool {
	return Errno(e) != theError.Value()
}

// Check if an error is the success DiagError
func IsSuccess(e error) bool {
	return Errno(e) == successErrno
}

// Check if an error is NOT the success DiagError
func IsNotSuccess(e error) bool {
	return Errno(e) != successErrno
}

// Location returns the file and line number of the code that generated the error.
// Returns zero values if e has no stacktrace.
func Location(e error) (file string, line int) {
	file, line = merry.Location(e)
	return
}

// SourceLine returns the string representation of Location's result
// Returns empty string if e has no stacktrace.
func SourceLine(e error) string {
	return merry.SourceLine(e)
}

// Details wraps merry.Details, which returns all error details including stacktrace in a string.
func Details(e error) string {
	return merry.Details(e)
}

// Stacktrace wraps merry.Stacktrace, which returns error stacktrace (if set) in a string.
func Stacktrace(e error) string {
	return merry.Stacktrace(e)
}
