// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package guestmem is the capability boundary between the diagnostics core
// and guest RAM. The core never touches guest memory directly; it reads
// through a GuestMemory, so the reach of any parsing bug is bounded by the
// reads this package allows.
//
// Two implementations are provided: one over a caller-supplied byte slice
// (tests and in-process embedding) and one over an mmap(2)'d file (a guest
// RAM image or shared segment exported by the VMM).
package guestmem

// GuestMemory is a bounded, read-only view of guest physical memory.
//
// ReadAt fills buf with the bytes at [offset, offset+len(buf)); it returns
// blunder.GuestMemoryReadError if any part of that range is outside the
// view. Implementations must never panic on out-of-range requests.
type GuestMemory interface {
	ReadAt(offset uint64, buf []byte) (err error)
	Length() (length uint64)
	Close() (err error)
}

// MakeBufferGuestMemory returns a GuestMemory backed by the supplied slice.
// The caller must not mutate buf's length for the life of the view.
func MakeBufferGuestMemory(buf []byte) (gm GuestMemory) {
	gm = makeBufferGuestMemory(buf)
	return
}

// MakeFileGuestMemory returns a GuestMemory backed by an mmap(2) of the
// file at path. A zero length maps the whole file. Close() unmaps and
// closes the file.
func MakeFileGuestMemory(path string, length uint64) (gm GuestMemory, err error) {
	gm, err = makeFileGuestMemory(path, length)
	return
}
