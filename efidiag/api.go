// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package efidiag drains UEFI Advanced Logger diagnostics buffers out of
// guest memory and routes their entries to the host log.
//
// The guest registers a buffer address (via SetBufferGPA or the .conf),
// the host attaches a guestmem.GuestMemory view of the guest's physical
// address space, and Poll()/Dump() drain the buffer. No guest byte is
// trusted: the header, every entry prefix, and every message are
// validated before use, and the drain aborts at the first malformed
// entry.
package efidiag

import (
	"github.com/NVIDIA/efidiag/conf"
	"github.com/NVIDIA/efidiag/gpa"
	"github.com/NVIDIA/efidiag/guestmem"
	"github.com/NVIDIA/efidiag/logger"
	"github.com/NVIDIA/efidiag/stats"
)

// Up starts the package per confMap's [EFIDiag] section
func Up(confMap conf.ConfMap) (err error) {
	err = up(confMap)
	return
}

// Down stops the package, closing any attached guest memory
func Down() (err error) {
	err = down()
	return
}

// AttachGuestMemory supplies the view of guest physical memory that
// subsequent drains read from. An earlier attachment is closed first.
func AttachGuestMemory(gm guestmem.GuestMemory) (err error) {
	globals.Lock()
	defer globals.Unlock()

	if nil != globals.guestMemory {
		err = globals.guestMemory.Close()
		if nil != err {
			logger.WarnfWithError(err, "AttachGuestMemory(): closing prior guest memory failed")
		}
	}

	globals.guestMemory = gm

	err = nil
	return
}

// SetBufferGPA registers the guest physical address of the diagnostics
// buffer. Zero clears the registration; any other invalid address is
// rejected.
func SetBufferGPA(rawGPA uint32) (err error) {
	var (
		registered gpa.GPA
	)

	globals.Lock()
	defer globals.Unlock()

	if 0 == rawGPA {
		globals.bufferGPA = nil
		logger.Infof("SetBufferGPA(): diagnostics buffer address cleared")
		err = nil
		return
	}

	registered, err = gpa.MakeGPA(rawGPA)
	if nil != err {
		return
	}

	globals.bufferGPA = &registered
	logger.Infof("SetBufferGPA(): diagnostics buffer registered at %v", registered)

	err = nil
	return
}

// Reset returns the package to its pre-boot state: the registered buffer
// address is cleared and a subsequent Poll() will process again. Called
// on guest reboot.
func Reset() {
	globals.Lock()
	defer globals.Unlock()

	globals.bufferGPA = nil
	globals.hasGuestProcessedBefore = false
}

// Poll drains the registered buffer through the rate-limited dispatch
// path. Unless allowReprocess is set, a buffer that has already been
// drained is skipped.
func Poll(allowReprocess bool) (err error) {
	globals.Lock()
	defer globals.Unlock()

	err = processDiagnostics(allowReprocess, true)
	if nil == err {
		stats.IncrementOperations(&stats.BufferPollOps)
	}
	return
}

// Dump drains the registered buffer with no rate limiting, reprocessing
// even if a drain already happened. Intended for operator-requested
// dumps (SIGUSR1 in the daemon).
func Dump() (err error) {
	globals.Lock()
	defer globals.Unlock()

	err = processDiagnostics(true, false)
	if nil == err {
		stats.IncrementOperations(&stats.BufferDumpOps)
	}
	return
}
