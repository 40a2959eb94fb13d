// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package efidiag

import (
	"fmt"
	"strings"

	"github.com/NVIDIA/sortedmap"

	"github.com/NVIDIA/efidiag/blunder"
	"github.com/NVIDIA/efidiag/gpa"
	"github.com/NVIDIA/efidiag/logger"
	"github.com/NVIDIA/efidiag/stats"
)

// suppressedPatterns lists message substrings known to flood the buffer
// with noise during boot. Matching messages are counted rather than
// dispatched, and the counts are reported once per drain.
var suppressedPatterns = []string{
	"WARNING: There is mismatch of supported HashMask (0x2 - 0x7) between modules",
	"that are linking different HashInstanceLib instances!",
	"ConvertPages: failed to find range",
	"ConvertPages: Incompatible memory types",
	"ConvertPages: range",
}

type suppressTreeCallbacksStruct struct{}

func (*suppressTreeCallbacksStruct) DumpKey(key sortedmap.Key) (keyAsString string, err error) {
	keyAsString = key.(string)
	err = nil
	return
}

func (*suppressTreeCallbacksStruct) DumpValue(value sortedmap.Value) (valueAsString string, err error) {
	valueAsString = fmt.Sprintf("%v", value.(uint64))
	err = nil
	return
}

// processDiagnostics drains the registered diagnostics buffer and routes
// every complete message to the host log. Callers hold globals.Mutex.
//
// allowReprocess permits draining a buffer that has already been drained
// once; rateLimited selects the limiter-gated dispatch path.
func processDiagnostics(allowReprocess bool, rateLimited bool) (err error) {
	var (
		accumulator      logAccumulatorStruct
		bytesRead        uint64
		consumed         uint64
		entriesProcessed uint64
		entry            *logEntryStruct
		header           *logBufferHeaderStruct
		offset           uint64
		parseErr         error
		startGPA         gpa.GPA
		suppressTree     sortedmap.LLRBTree
		window           []byte
	)

	if globals.hasGuestProcessedBefore && !allowReprocess {
		logger.Tracef("skipping diagnostics drain: buffer already processed")
		err = nil
		return
	}

	if nil == globals.guestMemory {
		err = blunder.NewError(blunder.NoAddressError, "no guest memory attached")
		return
	}

	header, err = readLogBufferHeader(globals.bufferGPA, globals.guestMemory)
	if nil != err {
		return
	}

	globals.hasGuestProcessedBefore = true

	if header.isEmpty() {
		logger.Infof("diagnostics buffer at %v is empty", header.baseGPA)
		err = nil
		return
	}

	startGPA, err = header.bufferStartGPA()
	if nil != err {
		return
	}

	window = make([]byte, header.usedSize)
	err = globals.guestMemory.ReadAt(startGPA.Uint64(), window)
	if nil != err {
		return
	}

	suppressTree = sortedmap.NewLLRBTree(sortedmap.CompareString, &suppressTreeCallbacksStruct{})

	for offset < uint64(len(window)) {
		entry, consumed, parseErr = parseLogEntry(window[offset:])
		if nil != parseErr {
			logger.WarnfWithError(parseErr, "aborting diagnostics parse at offset 0x%X", offset)
			stats.IncrementOperations(&stats.ParseAborts)
			break
		}

		offset += consumed
		bytesRead += consumed
		entriesProcessed++

		err = accumulator.feed(entry)
		if nil != err {
			return
		}

		entry = accumulator.take()
		if nil != entry {
			emitOrSuppress(entry, suppressTree, rateLimited)
		}
	}

	// An unterminated tail still gets reported
	entry = accumulator.clear()
	if nil != entry {
		emitOrSuppress(entry, suppressTree, rateLimited)
	}

	logSuppressedSummary(suppressTree)

	logger.Infof("drained diagnostics buffer at %v: %v entries, %v bytes", header.baseGPA, entriesProcessed, bytesRead)

	stats.IncrementOperationsEntriesAndBytes(stats.BufferDrain, entriesProcessed, bytesRead)

	err = nil
	return
}

// emitOrSuppress dispatches entry unless its message matches a suppressed
// pattern, in which case the per-drain count for that pattern is bumped
func emitOrSuppress(entry *logEntryStruct, suppressTree sortedmap.LLRBTree, rateLimited bool) {
	var (
		count   sortedmap.Value
		err     error
		matched bool
		ok      bool
		pattern string
	)

	for _, pattern = range suppressedPatterns {
		if strings.Contains(entry.message, pattern) {
			matched = true
			break
		}
	}

	if !matched {
		if rateLimited {
			dispatchRateLimited(entry)
		} else {
			dispatchUnrestricted(entry)
		}
		return
	}

	count, ok, err = suppressTree.GetByKey(pattern)
	if nil != err {
		logger.PanicfWithError(err, "suppressTree.GetByKey(%q) failed", pattern)
	}
	if ok {
		_, err = suppressTree.PatchByKey(pattern, count.(uint64)+1)
		if nil != err {
			logger.PanicfWithError(err, "suppressTree.PatchByKey(%q) failed", pattern)
		}
	} else {
		_, err = suppressTree.Put(pattern, uint64(1))
		if nil != err {
			logger.PanicfWithError(err, "suppressTree.Put(%q) failed", pattern)
		}
	}
}

// logSuppressedSummary reports, in pattern order, how many messages each
// suppressed pattern matched during the drain just finished
func logSuppressedSummary(suppressTree sortedmap.LLRBTree) {
	var (
		count           sortedmap.Value
		err             error
		index           int
		numPatterns     int
		ok              bool
		pattern         sortedmap.Key
		totalSuppressed uint64
	)

	numPatterns, err = suppressTree.Len()
	if nil != err {
		logger.PanicfWithError(err, "suppressTree.Len() failed")
	}

	for index = 0; index < numPatterns; index++ {
		pattern, count, ok, err = suppressTree.GetByIndex(index)
		if (nil != err) || !ok {
			logger.PanicfWithError(err, "suppressTree.GetByIndex(%v) failed", index)
		}
		logger.Warnf("suppressed %v diagnostics messages matching %q", count.(uint64), pattern.(string))
		totalSuppressed += count.(uint64)
	}

	if 0 != totalSuppressed {
		stats.IncrementOperationsBy(&stats.MessagesSuppressed, totalSuppressed)
	}
}
