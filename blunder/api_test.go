// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package blunder

import (
	"fmt"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/efidiag/conf"
	"github.com/NVIDIA/efidiag/logger"
)

var testConfMap conf.ConfMap

func testSetup(t *testing.T) {
	var (
		err             error
		testConfStrings []string
	)

	testConfStrings = []string{
		"Logging.LogFilePath=/dev/null",
		"Logging.LogToConsole=false",
	}

	testConfMap, err = conf.MakeConfMapFromStrings(testConfStrings)
	if nil != err {
		t.Fatalf("conf.MakeConfMapFromStrings() failed: %v", err)
	}

	err = logger.Up(testConfMap)
	if nil != err {
		t.Fatalf("logger.Up() failed: %v", err)
	}
}

func testTeardown(t *testing.T) {
	var (
		err error
	)

	err = logger.Down()
	if nil != err {
		t.Fatalf("logger.Down() failed: %v", err)
	}
}

func TestValues(t *testing.T) {
	errConstant := NotPermError
	expectedValue := int(unix.EPERM)
	if errConstant.Value() != expectedValue {
		t.Fatalf("Error, NotPermError != %d", expectedValue)
	}

	// The diagnostics error codes must stay distinct from each other
	diagErrors := []DiagError{
		InvalidAddressError,
		NoAddressError,
		GuestMemoryReadError,
		HeaderSignatureError,
		BufferSizeExceededError,
		InvalidUsedSizeError,
		OverflowError,
		SliceReadError,
		EntrySignatureError,
		MessageLengthError,
		BadMessageEndError,
		UTF8Error,
		MessageTooLongError,
	}
	seen := make(map[int]bool)
	for _, diagError := range diagErrors {
		if seen[diagError.Value()] {
			t.Fatalf("Error, duplicate error value %d", diagError.Value())
		}
		seen[diagError.Value()] = true
		if diagError.Value() < 1000 {
			t.Fatalf("Error, diagnostics error value %d collides with the errno space", diagError.Value())
		}
	}
}

func checkValue(t *testing.T, testInfo string, actualVal int, expectedVal int) {
	if actualVal != expectedVal {
		t.Fatalf("Error, %s value was %d, expected %d", testInfo, actualVal, expectedVal)
	}
}

func TestDefaultErrno(t *testing.T) {
	testSetup(t)

	// Nil error test
	var err error

	// Now try to get error val out of err. We should get a default value, since error value hasn't been set.
	errno := Errno(err)

	// Since err is nil, the default value should be successErrno
	checkValue(t, "nil error", errno, successErrno)

	// IsSuccess should return true and IsNotSuccess should return false
	if !IsSuccess(err) {
		t.Fatalf("Error, IsSuccess() returned false for error %v (errno %v)", ErrorString(err), Errno(err))
	}
	if IsNotSuccess(err) {
		t.Fatalf("Error, IsNotSuccess() returned true for error %v", ErrorString(err))
	}

	// Non-nil error test
	err = fmt.Errorf("This is an ordinary error")

	// Since err is non-nil, the default value should be failureErrno (-1)
	errno = Errno(err)
	checkValue(t, "non-nil error", errno, failureErrno)

	// IsSuccess should return false and IsNotSuccess should return true
	if IsSuccess(err) {
		t.Fatalf("Error, IsSuccess() returned true for error %v (errno %v)", ErrorString(err), Errno(err))
	}
	if !IsNotSuccess(err) {
		t.Fatalf("Error, IsNotSuccess() returned false for error %v", ErrorString(err))
	}

	// Specific error test
	err = AddError(err, InvalidArgError)
	errno = Errno(err)
	checkValue(t, "specific error", errno, InvalidArgError.Value())

	testTeardown(t)
}

func TestAddValue(t *testing.T) {
	testSetup(t)

	// Add value to a nil error (not recommended as a strategy, but it needs to work anyway)
	var err error
	err = AddError(err, HeaderSignatureError)
	errno := Errno(err)
	checkValue(t, "specific error", errno, HeaderSignatureError.Value())
	if !hasErrnoValue(err) {
		t.Fatalf("Error, hasErrnoValue returned false for error %v", ErrorString(err))
	}
	// Validate the Is* APIs on what started as a nil error
	if !Is(err, HeaderSignatureError) {
		t.Fatalf("Error, Is() returned false for error %v is HeaderSignatureError", ErrorString(err))
	}
	if Is(err, NotFoundError) {
		t.Fatalf("Error, Is() returned true for error %v is NotFoundError", ErrorString(err))
	}
	if !IsNot(err, InvalidArgError) {
		t.Fatalf("Error, IsNot() returned false for error %v is InvalidArgError", ErrorString(err))
	}
	if IsSuccess(err) {
		t.Fatalf("Error, IsSuccess() returned true for error %v", ErrorString(err))
	}
	if !IsNotSuccess(err) {
		t.Fatalf("Error, IsNotSuccess() returned false for error %v", ErrorString(err))
	}

	// Add value to a non-nil error
	err = fmt.Errorf("This is an ordinary error")
	err = AddError(err, OverflowError)
	errno = Errno(err)
	checkValue(t, "specific error", errno, OverflowError.Value())
	if !hasErrnoValue(err) {
		t.Fatalf("Error, hasErrnoValue returned false for error %v", ErrorString(err))
	}
	// Validate the Is* APIs on what started as a non-nil error
	if !Is(err, OverflowError) {
		t.Fatalf("Error, Is() returned false for error %v is OverflowError", ErrorString(err))
	}
	if Is(err, UTF8Error) {
		t.Fatalf("Error, Is() returned true for error %v is UTF8Error", ErrorString(err))
	}
	if !IsNot(err, UTF8Error) {
		t.Fatalf("Error, IsNot() returned false for error %v is UTF8Error", ErrorString(err))
	}

	// Add a different value to a non-nil error
	err = AddError(err, MessageTooLongError)
	errno = Errno(err)
	checkValue(t, "specific error", errno, MessageTooLongError.Value())
	if !Is(err, MessageTooLongError) {
		t.Fatalf("Error, Is() returned false for error %v is MessageTooLongError", ErrorString(err))
	}

	testTeardown(t)
}

func TestNewError(t *testing.T) {
	err := NewError(EntrySignatureError, "bad signature 0x%08X", uint32(0xDEADBEEF))
	if !Is(err, EntrySignatureError) {
		t.Fatalf("Error, Is() returned false for error %v is EntrySignatureError", ErrorString(err))
	}

	file, line := Location(err)
	if ("" == file) || (0 == line) {
		t.Fatalf("Error, Location() returned (%q, %v)", file, line)
	}
}
