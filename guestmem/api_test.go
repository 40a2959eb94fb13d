// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package guestmem

import (
	"bytes"
	"io/ioutil"
	"math"
	"os"
	"testing"

	"github.com/NVIDIA/efidiag/blunder"
)

func TestBufferGuestMemory(t *testing.T) {
	var (
		backing = []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
		buf     []byte
		err     error
		gm      GuestMemory
	)

	gm = MakeBufferGuestMemory(backing)

	if 8 != gm.Length() {
		t.Fatalf("Length() returned %v expected 8", gm.Length())
	}

	buf = make([]byte, 4)
	err = gm.ReadAt(2, buf)
	if nil != err {
		t.Fatalf("ReadAt(2, buf) failed: %v", err)
	}
	if !bytes.Equal([]byte{0x02, 0x03, 0x04, 0x05}, buf) {
		t.Fatalf("ReadAt(2, buf) returned % X", buf)
	}

	// Zero-length read at the very end is in range
	err = gm.ReadAt(8, []byte{})
	if nil != err {
		t.Fatalf("ReadAt(8, []byte{}) failed: %v", err)
	}

	// Reads reaching past the end must fail with GuestMemoryReadError
	err = gm.ReadAt(6, buf)
	if nil == err {
		t.Fatalf("ReadAt(6, buf) should have failed")
	}
	if !blunder.Is(err, blunder.GuestMemoryReadError) {
		t.Fatalf("ReadAt(6, buf) returned wrong error: %v", blunder.ErrorString(err))
	}

	err = gm.ReadAt(9, buf)
	if !blunder.Is(err, blunder.GuestMemoryReadError) {
		t.Fatalf("ReadAt(9, buf) returned wrong error: %v", blunder.ErrorString(err))
	}

	// An offset near the top of the uint64 space must not wrap
	err = gm.ReadAt(math.MaxUint64-1, buf)
	if !blunder.Is(err, blunder.GuestMemoryReadError) {
		t.Fatalf("ReadAt(MaxUint64-1, buf) returned wrong error: %v", blunder.ErrorString(err))
	}

	err = gm.Close()
	if nil != err {
		t.Fatalf("Close() failed: %v", err)
	}
}

func TestFileGuestMemory(t *testing.T) {
	var (
		backing  []byte
		buf      []byte
		err      error
		gm       GuestMemory
		tempFile *os.File
	)

	backing = make([]byte, 4096)
	for i := range backing {
		backing[i] = byte(i)
	}

	tempFile, err = ioutil.TempFile("", "efidiag_guestmem_test")
	if nil != err {
		t.Fatalf("ioutil.TempFile() failed: %v", err)
	}
	defer os.Remove(tempFile.Name())

	_, err = tempFile.Write(backing)
	if nil != err {
		t.Fatalf("tempFile.Write() failed: %v", err)
	}
	err = tempFile.Close()
	if nil != err {
		t.Fatalf("tempFile.Close() failed: %v", err)
	}

	// Zero length maps the whole file
	gm, err = MakeFileGuestMemory(tempFile.Name(), 0)
	if nil != err {
		t.Fatalf("MakeFileGuestMemory() failed: %v", err)
	}

	if 4096 != gm.Length() {
		t.Fatalf("Length() returned %v expected 4096", gm.Length())
	}

	buf = make([]byte, 16)
	err = gm.ReadAt(256, buf)
	if nil != err {
		t.Fatalf("ReadAt(256, buf) failed: %v", err)
	}
	if !bytes.Equal(backing[256:272], buf) {
		t.Fatalf("ReadAt(256, buf) returned % X expected % X", buf, backing[256:272])
	}

	err = gm.ReadAt(4095, buf)
	if !blunder.Is(err, blunder.GuestMemoryReadError) {
		t.Fatalf("ReadAt(4095, buf) returned wrong error: %v", blunder.ErrorString(err))
	}

	err = gm.Close()
	if nil != err {
		t.Fatalf("Close() failed: %v", err)
	}

	_, err = MakeFileGuestMemory("/nonexistent/efidiag", 0)
	if nil == err {
		t.Fatalf("MakeFileGuestMemory(\"/nonexistent/efidiag\", 0) should have failed")
	}
}
