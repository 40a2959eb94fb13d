// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"sync"
)

func (ms MultipleStat) findStatStrings(numBytes uint64) (ops *string, bytes *string, entries *string, bbytes *string) {
	switch ms {
	case BufferDrain:
		// buffer drain uses operations, entries and bytes stats
		ops = &BufferPollOps
		bytes = &BufferPollBytes
		entries = &BufferPollEntries
	case GuestMemRead:
		// guest memory read uses operations, op bucketed bytes, and bytes stats
		ops = &GuestMemReadOps
		bytes = &GuestMemReadBytes
		if numBytes <= 4096 {
			bbytes = &GuestMemReadOps4K
		} else if numBytes <= 8192 {
			bbytes = &GuestMemReadOps8K
		} else if numBytes <= 16384 {
			bbytes = &GuestMemReadOps16K
		} else if numBytes <= 32768 {
			bbytes = &GuestMemReadOps32K
		} else if numBytes <= 65536 {
			bbytes = &GuestMemReadOps64K
		} else {
			bbytes = &GuestMemReadOpsOver64K
		}
	}
	return
}

func dump() (statMap map[string]uint64) {
	globals.Lock()
	numStats := len(globals.statFullMap)
	statMap = make(map[string]uint64, numStats)
	for statKey, statValue := range globals.statFullMap {
		statMap[statKey] = statValue
	}
	globals.Unlock()
	return
}

var statStructPool sync.Pool = sync.Pool{
	New: func() interface{} {
		return &statStruct{}
	},
}

func incrementSomething(statName *string, incBy uint64) {
	if incBy == 0 {
		// No point in incrementing by zero
		return
	}

	// if stats are not enabled yet, just ignore (reduce a window while
	// stats are shutting down by saving the channel to a local variable)
	statChan := globals.statChan
	if statChan == nil {
		return
	}

	stat := statStructPool.Get().(*statStruct)
	stat.name = statName
	stat.increment = incBy
	statChan <- stat
}

func incrementOperations(statName *string) {
	incrementSomething(statName, 1)
}

func incrementOperationsBy(statName *string, incBy uint64) {
	incrementSomething(statName, incBy)
}

func incrementOperationsEntriesAndBytes(stat MultipleStat, entries uint64, bytes uint64) {
	opsStat, bytesStat, entriesStat, _ := stat.findStatStrings(bytes)
	incrementSomething(opsStat, 1)
	incrementSomething(entriesStat, entries)
	incrementSomething(bytesStat, bytes)
}

func incrementOperationsAndBucketedBytes(stat MultipleStat, bytes uint64) {
	opsStat, bytesStat, _, bbytesStat := stat.findStatStrings(bytes)
	incrementSomething(opsStat, 1)
	incrementSomething(bytesStat, bytes)
	incrementSomething(bbytesStat, 1)
}
