// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package efidiag

import (
	"strings"

	"github.com/NVIDIA/efidiag/alayout"
	"github.com/NVIDIA/efidiag/logger"
	"github.com/NVIDIA/efidiag/stats"
)

// debugLevelText renders an EDK2 debug-level bitmask. A mask matching a
// single known flag borrows that flag's name; multiple known flags are
// joined with "+"; a mask with no known flag renders as "UNKNOWN".
func debugLevelText(debugLevel uint32) (text string) {
	var (
		names []string
	)

	for _, flag := range alayout.DebugFlagTable {
		if flag.Mask == debugLevel {
			text = flag.Name
			return
		}
		if 0 != (debugLevel & flag.Mask) {
			names = append(names, flag.Name)
		}
	}

	if 0 == len(names) {
		text = "UNKNOWN"
		return
	}

	text = strings.Join(names, "+")
	return
}

func phaseText(phase uint16) (text string) {
	var (
		ok bool
	)

	text, ok = alayout.PhaseName(phase)
	if !ok {
		text = "UNKNOWN"
	}
	return
}

// dispatchRateLimited routes entry to the host log sink for its severity
// class, dropping it (counted) if that class's limiter disallows it.
func dispatchRateLimited(entry *logEntryStruct) {
	if 0 != (entry.debugLevel & alayout.DebugError) {
		if !globals.errorLimiter.Allow() {
			stats.IncrementOperations(&stats.MessagesRateLimited)
			return
		}
		emitError(entry)
		return
	}

	if 0 != (entry.debugLevel & alayout.DebugWarn) {
		if !globals.warnLimiter.Allow() {
			stats.IncrementOperations(&stats.MessagesRateLimited)
			return
		}
		emitWarn(entry)
		return
	}

	if !globals.infoLimiter.Allow() {
		stats.IncrementOperations(&stats.MessagesRateLimited)
		return
	}
	emitInfo(entry)
}

// dispatchUnrestricted routes entry to its severity class sink with no
// rate limiting. Used for operator-requested dumps.
func dispatchUnrestricted(entry *logEntryStruct) {
	if 0 != (entry.debugLevel & alayout.DebugError) {
		emitError(entry)
		return
	}

	if 0 != (entry.debugLevel & alayout.DebugWarn) {
		emitWarn(entry)
		return
	}

	emitInfo(entry)
}

func emitError(entry *logEntryStruct) {
	logger.Errorf("UEFI[%s:%s] ticks=%d %s", phaseText(entry.phase), debugLevelText(entry.debugLevel), entry.timeStamp, entry.messageTrimmed())
	stats.IncrementOperations(&stats.MessagesError)
}

func emitWarn(entry *logEntryStruct) {
	logger.Warnf("UEFI[%s:%s] ticks=%d %s", phaseText(entry.phase), debugLevelText(entry.debugLevel), entry.timeStamp, entry.messageTrimmed())
	stats.IncrementOperations(&stats.MessagesWarn)
}

func emitInfo(entry *logEntryStruct) {
	logger.Infof("UEFI[%s:%s] ticks=%d %s", phaseText(entry.phase), debugLevelText(entry.debugLevel), entry.timeStamp, entry.messageTrimmed())
	stats.IncrementOperations(&stats.MessagesInfo)
}
