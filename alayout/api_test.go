// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package alayout

import (
	"bytes"
	"testing"
)

func TestStructSizes(t *testing.T) {
	if 16 != HeaderV1StructSize {
		t.Fatalf("HeaderV1StructSize is %v expected 16", HeaderV1StructSize)
	}
	if 24 != EntryV2StructSize {
		t.Fatalf("EntryV2StructSize is %v expected 24", EntryV2StructSize)
	}
}

func TestSignatures(t *testing.T) {
	// The signatures are the ASCII tags "ALOG" and "ALM2" read little-endian
	headerSig := HeaderSignature
	headerSigBytes := []byte{byte(headerSig), byte(headerSig >> 8), byte(headerSig >> 16), byte(headerSig >> 24)}
	if !bytes.Equal([]byte("ALOG"), headerSigBytes) {
		t.Fatalf("HeaderSignature bytes are %q expected \"ALOG\"", headerSigBytes)
	}

	entrySig := EntrySignatureV2
	entrySigBytes := []byte{byte(entrySig), byte(entrySig >> 8), byte(entrySig >> 16), byte(entrySig >> 24)}
	if !bytes.Equal([]byte("ALM2"), entrySigBytes) {
		t.Fatalf("EntrySignatureV2 bytes are %q expected \"ALM2\"", entrySigBytes)
	}
}

func TestHeaderV1Marshaling(t *testing.T) {
	var (
		err           error
		headerV1      *HeaderV1Struct
		headerV1After *HeaderV1Struct
		headerV1Buf   []byte
	)

	headerV1 = &HeaderV1Struct{
		Signature:        HeaderSignature,
		PayloadOffset:    0x40,
		WriteCursor:      0x60,
		DeclaredCapacity: 0x1000,
	}

	headerV1Buf, err = headerV1.MarshalHeaderV1()
	if nil != err {
		t.Fatalf("MarshalHeaderV1() failed: %v", err)
	}

	expectedBuf := []byte{
		0x41, 0x4C, 0x4F, 0x47, // "ALOG"
		0x40, 0x00, 0x00, 0x00,
		0x60, 0x00, 0x00, 0x00,
		0x00, 0x10, 0x00, 0x00,
	}
	if !bytes.Equal(expectedBuf, headerV1Buf) {
		t.Fatalf("MarshalHeaderV1() returned % X expected % X", headerV1Buf, expectedBuf)
	}

	headerV1After, err = UnmarshalHeaderV1(headerV1Buf)
	if nil != err {
		t.Fatalf("UnmarshalHeaderV1() failed: %v", err)
	}
	if *headerV1 != *headerV1After {
		t.Fatalf("UnmarshalHeaderV1() returned %+v expected %+v", headerV1After, headerV1)
	}

	_, err = UnmarshalHeaderV1(headerV1Buf[:15])
	if nil == err {
		t.Fatalf("UnmarshalHeaderV1() on short buf should have failed")
	}
}

func TestEntryV2Marshaling(t *testing.T) {
	var (
		entryV2      *EntryV2Struct
		entryV2After *EntryV2Struct
		entryV2Buf   []byte
		err          error
	)

	entryV2 = &EntryV2Struct{
		Signature:     EntrySignatureV2,
		MajorVersion:  2,
		MinorVersion:  0,
		DebugLevel:    DebugError,
		TimeStamp:     0x0102030405060708,
		Phase:         PhasePEI,
		MessageLength: 8,
		MessageOffset: 24,
	}

	entryV2Buf, err = entryV2.MarshalEntryV2()
	if nil != err {
		t.Fatalf("MarshalEntryV2() failed: %v", err)
	}
	if uint64(len(entryV2Buf)) != EntryV2StructSize {
		t.Fatalf("MarshalEntryV2() returned %v bytes expected %v", len(entryV2Buf), EntryV2StructSize)
	}

	expectedBuf := []byte{
		0x41, 0x4C, 0x4D, 0x32, // "ALM2"
		0x02, 0x00, // versions
		0x00, 0x00, 0x00, 0x80, // DebugError
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // timestamp
		0x02, 0x00, // PhasePEI
		0x08, 0x00, // message length
		0x18, 0x00, // message offset
	}
	if !bytes.Equal(expectedBuf, entryV2Buf) {
		t.Fatalf("MarshalEntryV2() returned % X expected % X", entryV2Buf, expectedBuf)
	}

	entryV2After, err = UnmarshalEntryV2(entryV2Buf)
	if nil != err {
		t.Fatalf("UnmarshalEntryV2() failed: %v", err)
	}
	if *entryV2 != *entryV2After {
		t.Fatalf("UnmarshalEntryV2() returned %+v expected %+v", entryV2After, entryV2)
	}
}

func TestDebugFlagTable(t *testing.T) {
	var (
		combined uint32
		prev     uint32
	)

	for _, debugFlag := range DebugFlagTable {
		if 0 != (combined & debugFlag.Mask) {
			t.Fatalf("flag %v mask 0x%08X overlaps an earlier flag", debugFlag.Name, debugFlag.Mask)
		}
		if debugFlag.Mask <= prev {
			t.Fatalf("flag %v mask 0x%08X out of ascending order", debugFlag.Name, debugFlag.Mask)
		}
		combined |= debugFlag.Mask
		prev = debugFlag.Mask
	}
}

func TestPhaseName(t *testing.T) {
	phaseCases := []struct {
		phase uint16
		name  string
	}{
		{PhaseUnspecified, "UNSPECIFIED"},
		{PhaseSEC, "SEC"},
		{PhasePEI, "PEI"},
		{PhasePEI64, "PEI64"},
		{PhaseDXE, "DXE"},
		{PhaseRuntime, "RUNTIME"},
		{PhaseMMCore, "MM_CORE"},
		{PhaseMM, "MM"},
		{PhaseSMMCore, "SMM_CORE"},
		{PhaseSMM, "SMM"},
		{PhaseTFA, "TFA"},
		{PhaseCNT, "CNT"},
	}

	for _, phaseCase := range phaseCases {
		name, ok := PhaseName(phaseCase.phase)
		if !ok || (name != phaseCase.name) {
			t.Fatalf("PhaseName(%v) returned (%q, %v) expected (%q, true)", phaseCase.phase, name, ok, phaseCase.name)
		}
	}

	_, ok := PhaseName(12)
	if ok {
		t.Fatalf("PhaseName(12) should have returned ok == false")
	}
}
