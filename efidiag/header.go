// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package efidiag

import (
	"github.com/NVIDIA/efidiag/alayout"
	"github.com/NVIDIA/efidiag/blunder"
	"github.com/NVIDIA/efidiag/gpa"
	"github.com/NVIDIA/efidiag/guestmem"
)

// logBufferHeaderStruct is the trusted result of validating a buffer
// header read from guest memory. Construct only via readLogBufferHeader.
type logBufferHeaderStruct struct {
	baseGPA      gpa.GPA
	bufferOffset uint32 // offset from baseGPA to the first entry
	usedSize     uint32 // bytes of entry data currently in the buffer
}

// readLogBufferHeader reads and validates the buffer header at the
// registered address. Every field of the raw header is guest-controlled;
// nothing is trusted until it has passed the checks here.
func readLogBufferHeader(bufferGPA *gpa.GPA, gm guestmem.GuestMemory) (header *logBufferHeaderStruct, err error) {
	var (
		headerBuf []byte
		rawHeader *alayout.HeaderV1Struct
		usedSize  uint32
	)

	if nil == bufferGPA {
		err = blunder.NewError(blunder.NoAddressError, "no diagnostics buffer address registered")
		return
	}

	headerBuf = make([]byte, alayout.HeaderV1StructSize)
	err = gm.ReadAt(bufferGPA.Uint64(), headerBuf)
	if nil != err {
		// guestmem has already coded the error
		return
	}

	rawHeader, err = alayout.UnmarshalHeaderV1(headerBuf)
	if nil != err {
		err = blunder.AddError(err, blunder.GuestMemoryReadError)
		return
	}

	if alayout.HeaderSignature != rawHeader.Signature {
		err = blunder.NewError(blunder.HeaderSignatureError, "expected header signature 0x%08X, got 0x%08X", alayout.HeaderSignature, rawHeader.Signature)
		return
	}

	if rawHeader.DeclaredCapacity > alayout.MaxBufferSize {
		err = blunder.NewError(blunder.BufferSizeExceededError, "log buffer size 0x%X exceeds maximum 0x%X", rawHeader.DeclaredCapacity, alayout.MaxBufferSize)
		return
	}

	if rawHeader.WriteCursor < rawHeader.PayloadOffset {
		err = blunder.NewError(blunder.OverflowError, "arithmetic overflow in used size (write cursor 0x%X precedes payload offset 0x%X)", rawHeader.WriteCursor, rawHeader.PayloadOffset)
		return
	}
	usedSize = rawHeader.WriteCursor - rawHeader.PayloadOffset

	if (usedSize > rawHeader.DeclaredCapacity) || (usedSize > alayout.MaxBufferSize) {
		err = blunder.NewError(blunder.InvalidUsedSizeError, "used buffer size 0x%X is invalid (max 0x%X)", usedSize, alayout.MaxBufferSize)
		return
	}

	header = &logBufferHeaderStruct{
		baseGPA:      *bufferGPA,
		bufferOffset: rawHeader.PayloadOffset,
		usedSize:     usedSize,
	}
	err = nil
	return
}

func (header *logBufferHeaderStruct) isEmpty() (isEmpty bool) {
	isEmpty = (0 == header.usedSize)
	return
}

// bufferStartGPA computes the validated address of the first entry. The
// addition is checked in the 32-bit space the guest works in, and the
// result passes through gpa.MakeGPA again.
func (header *logBufferHeaderStruct) bufferStartGPA() (start gpa.GPA, err error) {
	var (
		base uint32
	)

	base = header.baseGPA.Value()
	if header.bufferOffset > (0xFFFFFFFF - base) {
		err = blunder.NewError(blunder.OverflowError, "arithmetic overflow in buffer start address (base 0x%08X + offset 0x%X)", base, header.bufferOffset)
		return
	}

	start, err = gpa.MakeGPA(base + header.bufferOffset)
	if nil != err {
		err = blunder.NewError(blunder.OverflowError, "buffer start address 0x%08X failed validation", base+header.bufferOffset)
		return
	}

	err = nil
	return
}
