// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package alayout

import (
	"fmt"

	"github.com/NVIDIA/cstruct"
)

// All layout cstruct's are serialized in LittleEndian form
var LittleEndian = cstruct.LittleEndian

var phaseNameTable = []string{
	PhaseUnspecified: "UNSPECIFIED",
	PhaseSEC:         "SEC",
	PhasePEI:         "PEI",
	PhasePEI64:       "PEI64",
	PhaseDXE:         "DXE",
	PhaseRuntime:     "RUNTIME",
	PhaseMMCore:      "MM_CORE",
	PhaseMM:          "MM",
	PhaseSMMCore:     "SMM_CORE",
	PhaseSMM:         "SMM",
	PhaseTFA:         "TFA",
	PhaseCNT:         "CNT",
}

func init() {
	var (
		err error
	)

	HeaderV1StructSize, _, err = cstruct.Examine(HeaderV1Struct{})
	if nil != err {
		panic(fmt.Errorf("cstruct.Examine(HeaderV1Struct{}) failed: %v", err))
	}

	EntryV2StructSize, _, err = cstruct.Examine(EntryV2Struct{})
	if nil != err {
		panic(fmt.Errorf("cstruct.Examine(EntryV2Struct{}) failed: %v", err))
	}
}

func phaseName(phase uint16) (name string, ok bool) {
	if uint16(len(phaseNameTable)) <= phase {
		name = ""
		ok = false
		return
	}

	name = phaseNameTable[phase]
	ok = true
	return
}

func (headerV1 *HeaderV1Struct) marshalHeaderV1() (headerV1Buf []byte, err error) {
	headerV1Buf, err = cstruct.Pack(headerV1, LittleEndian)
	return
}

func unmarshalHeaderV1(headerV1Buf []byte) (headerV1 *HeaderV1Struct, err error) {
	headerV1 = &HeaderV1Struct{}

	_, err = cstruct.Unpack(headerV1Buf, headerV1, LittleEndian)
	if nil != err {
		headerV1 = nil
		return
	}

	err = nil
	return
}

func (entryV2 *EntryV2Struct) marshalEntryV2() (entryV2Buf []byte, err error) {
	entryV2Buf, err = cstruct.Pack(entryV2, LittleEndian)
	return
}

func unmarshalEntryV2(entryV2Buf []byte) (entryV2 *EntryV2Struct, err error) {
	entryV2 = &EntryV2Struct{}

	_, err = cstruct.Unpack(entryV2Buf, entryV2, LittleEndian)
	if nil != err {
		entryV2 = nil
		return
	}

	err = nil
	return
}
