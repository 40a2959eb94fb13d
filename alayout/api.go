// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package alayout specifies the on-wire layout of an Advanced Logger buffer
// as written by guest UEFI firmware, along with the EDK2 debug-level flag
// and boot-phase name tables used to render its entries.
//
// All multi-byte fields are little-endian. The structs here describe only
// the fields this host consumes; every byte of them is guest-controlled and
// must be treated as hostile until validated.
package alayout

const (
	// HeaderSignature is the expected buffer header signature ("ALOG")
	HeaderSignature uint32 = 0x474F4C41

	// EntrySignatureV2 is the expected per-entry signature ("ALM2")
	EntrySignatureV2 uint32 = 0x324D4C41

	// MaxBufferSize is the hard cap on a buffer's declared capacity (4 MiB)
	MaxBufferSize uint32 = 0x400000

	// MaxMessageLength is the hard cap on a single message (4 KiB)
	MaxMessageLength uint16 = 0x1000

	// EntryAlignment is the boundary entries are zero-padded to
	EntryAlignment uint32 = 8
)

// HeaderV1Struct is the prefix of the shared buffer. The firmware writes
// more header fields than these; this host consumes exactly the first
// 16 bytes.
//
//   Signature        - must be HeaderSignature
//   PayloadOffset    - offset from the buffer base to the first entry
//   WriteCursor      - offset from the buffer base one past the last written byte
//   DeclaredCapacity - the buffer capacity the firmware claims
//
type HeaderV1Struct struct {
	Signature        uint32
	PayloadOffset    uint32
	WriteCursor      uint32
	DeclaredCapacity uint32
}

// EntryV2Struct is the fixed prefix of a single log entry, followed by
// MessageLength message bytes and zero padding up to the next
// EntryAlignment boundary.
//
//   Signature     - must be EntrySignatureV2
//   MajorVersion  - entry format major version (carried, not validated)
//   MinorVersion  - entry format minor version (carried, not validated)
//   DebugLevel    - EDK2 debug-level bitmask
//   TimeStamp     - firmware performance-counter timestamp
//   Phase         - boot phase code (see PhaseName)
//   MessageLength - number of message bytes following the prefix
//   MessageOffset - offset from the entry base to the message bytes
//
type EntryV2Struct struct {
	Signature     uint32
	MajorVersion  uint8
	MinorVersion  uint8
	DebugLevel    uint32
	TimeStamp     uint64
	Phase         uint16
	MessageLength uint16
	MessageOffset uint16
}

// Sizes of the above structs as marshaled (computed at package init)
var (
	HeaderV1StructSize uint64
	EntryV2StructSize  uint64
)

// EDK2 debug-level flags
const (
	DebugInit          uint32 = 0x00000001
	DebugWarn          uint32 = 0x00000002
	DebugLoad          uint32 = 0x00000004
	DebugFS            uint32 = 0x00000008
	DebugPool          uint32 = 0x00000010
	DebugPage          uint32 = 0x00000020
	DebugInfo          uint32 = 0x00000040
	DebugDispatch      uint32 = 0x00000080
	DebugVariable      uint32 = 0x00000100
	DebugBM            uint32 = 0x00000400
	DebugBlkIO         uint32 = 0x00001000
	DebugNet           uint32 = 0x00004000
	DebugUNDI          uint32 = 0x00010000
	DebugLoadFile      uint32 = 0x00020000
	DebugEvent         uint32 = 0x00080000
	DebugGCD           uint32 = 0x00100000
	DebugCache         uint32 = 0x00200000
	DebugVerbose       uint32 = 0x00400000
	DebugManageability uint32 = 0x00800000
	DebugError         uint32 = 0x80000000
)

// DebugFlagStruct names a single debug-level flag
type DebugFlagStruct struct {
	Mask uint32
	Name string
}

// DebugFlagTable lists the known debug-level flags in ascending mask order
var DebugFlagTable = []DebugFlagStruct{
	{DebugInit, "INIT"},
	{DebugWarn, "WARN"},
	{DebugLoad, "LOAD"},
	{DebugFS, "FS"},
	{DebugPool, "POOL"},
	{DebugPage, "PAGE"},
	{DebugInfo, "INFO"},
	{DebugDispatch, "DISPATCH"},
	{DebugVariable, "VARIABLE"},
	{DebugBM, "BM"},
	{DebugBlkIO, "BLKIO"},
	{DebugNet, "NET"},
	{DebugUNDI, "UNDI"},
	{DebugLoadFile, "LOADFILE"},
	{DebugEvent, "EVENT"},
	{DebugGCD, "GCD"},
	{DebugCache, "CACHE"},
	{DebugVerbose, "VERBOSE"},
	{DebugManageability, "MANAGEABILITY"},
	{DebugError, "ERROR"},
}

// Boot phase codes
const (
	PhaseUnspecified uint16 = iota
	PhaseSEC
	PhasePEI
	PhasePEI64
	PhaseDXE
	PhaseRuntime
	PhaseMMCore
	PhaseMM
	PhaseSMMCore
	PhaseSMM
	PhaseTFA
	PhaseCNT
)

// PhaseName returns the name of the supplied boot phase code. ok is false
// for codes beyond the table.
func PhaseName(phase uint16) (name string, ok bool) {
	name, ok = phaseName(phase)
	return
}

// MarshalHeaderV1 packs the header prefix into its on-wire form
func (headerV1 *HeaderV1Struct) MarshalHeaderV1() (headerV1Buf []byte, err error) {
	headerV1Buf, err = headerV1.marshalHeaderV1()
	return
}

// UnmarshalHeaderV1 unpacks a header prefix from headerV1Buf, which must
// hold at least HeaderV1StructSize bytes
func UnmarshalHeaderV1(headerV1Buf []byte) (headerV1 *HeaderV1Struct, err error) {
	headerV1, err = unmarshalHeaderV1(headerV1Buf)
	return
}

// MarshalEntryV2 packs the entry prefix into its on-wire form
func (entryV2 *EntryV2Struct) MarshalEntryV2() (entryV2Buf []byte, err error) {
	entryV2Buf, err = entryV2.marshalEntryV2()
	return
}

// UnmarshalEntryV2 unpacks an entry prefix from entryV2Buf, which must hold
// at least EntryV2StructSize bytes
func UnmarshalEntryV2(entryV2Buf []byte) (entryV2 *EntryV2Struct, err error) {
	entryV2, err = unmarshalEntryV2(entryV2Buf)
	return
}
