// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package efidiag

import (
	"strings"
	"unicode/utf8"

	"github.com/NVIDIA/efidiag/alayout"
	"github.com/NVIDIA/efidiag/blunder"
)

// logEntryStruct is one decoded diagnostics record. The message has
// already been validated as UTF-8 and copied out of the raw window.
type logEntryStruct struct {
	debugLevel uint32
	timeStamp  uint64
	phase      uint16
	message    string
}

// parseLogEntry decodes the entry at the front of window, returning the
// decoded entry and the number of bytes it consumed including the pad
// up to the next 8-byte boundary.
func parseLogEntry(window []byte) (entry *logEntryStruct, consumed uint64, err error) {
	var (
		messageEnd uint64
		messageRaw []byte
		rawEntry   *alayout.EntryV2Struct
	)

	if uint64(len(window)) < alayout.EntryV2StructSize {
		err = blunder.NewError(blunder.SliceReadError, "entry prefix needs 0x%X bytes, only 0x%X remain", alayout.EntryV2StructSize, len(window))
		return
	}

	rawEntry, err = alayout.UnmarshalEntryV2(window[:alayout.EntryV2StructSize])
	if nil != err {
		err = blunder.AddError(err, blunder.SliceReadError)
		return
	}

	if alayout.EntrySignatureV2 != rawEntry.Signature {
		err = blunder.NewError(blunder.EntrySignatureError, "expected entry signature 0x%08X, got 0x%08X", alayout.EntrySignatureV2, rawEntry.Signature)
		return
	}

	if rawEntry.MessageLength > alayout.MaxMessageLength {
		err = blunder.NewError(blunder.MessageLengthError, "message length 0x%X exceeds maximum 0x%X", rawEntry.MessageLength, alayout.MaxMessageLength)
		return
	}

	messageEnd = uint64(rawEntry.MessageOffset) + uint64(rawEntry.MessageLength)
	if messageEnd > uint64(len(window)) {
		err = blunder.NewError(blunder.BadMessageEndError, "message end 0x%X beyond remaining buffer 0x%X", messageEnd, len(window))
		return
	}

	messageRaw = window[uint64(rawEntry.MessageOffset):messageEnd]
	if !utf8.Valid(messageRaw) {
		err = blunder.NewError(blunder.UTF8Error, "message is not valid UTF-8")
		return
	}

	entry = &logEntryStruct{
		debugLevel: rawEntry.DebugLevel,
		timeStamp:  rawEntry.TimeStamp,
		phase:      rawEntry.Phase,
		message:    string(messageRaw),
	}

	consumed = (alayout.EntryV2StructSize + uint64(rawEntry.MessageLength) + uint64(alayout.EntryAlignment) - 1) &^ (uint64(alayout.EntryAlignment) - 1)

	err = nil
	return
}

// isComplete reports whether the entry carries the final fragment of a
// message (firmware terminates every full message with a newline)
func (entry *logEntryStruct) isComplete() (isComplete bool) {
	isComplete = strings.HasSuffix(entry.message, "\n")
	return
}

func (entry *logEntryStruct) messageTrimmed() (trimmed string) {
	trimmed = strings.TrimRight(entry.message, "\r\n")
	return
}
