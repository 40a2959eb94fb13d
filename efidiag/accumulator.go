// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package efidiag

import (
	"github.com/NVIDIA/efidiag/alayout"
	"github.com/NVIDIA/efidiag/blunder"
)

// logAccumulatorStruct joins the message fragments the firmware splits a
// long line into. The first fragment's metadata (debug level, timestamp,
// phase) is kept for the whole joined message.
type logAccumulatorStruct struct {
	current *logEntryStruct
}

// feed folds entry into the accumulator, enforcing the message length cap
// on the joined result. On overflow the accumulator is emptied and the
// partial message is discarded.
func (accumulator *logAccumulatorStruct) feed(entry *logEntryStruct) (err error) {
	if nil == accumulator.current {
		accumulator.current = entry
	} else {
		accumulator.current.message += entry.message
	}

	if uint64(len(accumulator.current.message)) > uint64(alayout.MaxMessageLength) {
		accumulator.current = nil
		err = blunder.NewError(blunder.MessageTooLongError, "accumulated message exceeds maximum length 0x%X", alayout.MaxMessageLength)
		return
	}

	err = nil
	return
}

// take returns the accumulated entry if its message is complete (newline
// terminated), leaving the accumulator empty. Otherwise nil.
func (accumulator *logAccumulatorStruct) take() (entry *logEntryStruct) {
	if (nil == accumulator.current) || !accumulator.current.isComplete() {
		entry = nil
		return
	}

	entry = accumulator.current
	accumulator.current = nil
	return
}

// clear returns whatever has accumulated, complete or not, leaving the
// accumulator empty. Used to flush an unterminated tail at end of drain.
func (accumulator *logAccumulatorStruct) clear() (entry *logEntryStruct) {
	entry = accumulator.current
	accumulator.current = nil
	return
}
