// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package stats provides a simple statsd client API.
package stats

// Stat names to be used with IncrementOperations() et al
var (
	BufferPollOps     = "efidiag.buffer-poll.operations"
	BufferPollEntries = "efidiag.buffer-poll.entries"
	BufferPollBytes   = "efidiag.buffer-poll.bytes"

	BufferDumpOps = "efidiag.buffer-dump.operations"

	MessagesInfo        = "efidiag.messages.info"
	MessagesWarn        = "efidiag.messages.warn"
	MessagesError       = "efidiag.messages.error"
	MessagesSuppressed  = "efidiag.messages.suppressed"
	MessagesRateLimited = "efidiag.messages.rate-limited"

	ParseAborts = "efidiag.parse.aborts"

	GuestMemReadOps        = "efidiag.guestmem-read.operations"
	GuestMemReadBytes      = "efidiag.guestmem-read.bytes"
	GuestMemReadOps4K      = "efidiag.guestmem-read.operations.size-up-to-4KB"
	GuestMemReadOps8K      = "efidiag.guestmem-read.operations.size-4KB-to-8KB"
	GuestMemReadOps16K     = "efidiag.guestmem-read.operations.size-8KB-to-16KB"
	GuestMemReadOps32K     = "efidiag.guestmem-read.operations.size-16KB-to-32KB"
	GuestMemReadOps64K     = "efidiag.guestmem-read.operations.size-32KB-to-64KB"
	GuestMemReadOpsOver64K = "efidiag.guestmem-read.operations.size-over-64KB"
)

type MultipleStat int

const (
	BufferDrain  MultipleStat = iota // uses operations, entries and bytes stats
	GuestMemRead                     // uses operations, op bucketed bytes, and bytes stats
)

// Dump returns a map of all accumulated stats since process start.
//
//   Key   is a string containing the name of the stat
//   Value is the accumulation of all increments for the stat since process start
func Dump() (statMap map[string]uint64) {
	statMap = dump()
	return
}

// IncrementOperations sends an increment of .operations to statsd.
func IncrementOperations(statName *string) {
	// Do this in a goroutine since channel operations are suprisingly expensive due to locking underneath
	go incrementOperations(statName)
}

// IncrementOperationsBy sends an increment by <incBy> of .operations to statsd.
func IncrementOperationsBy(statName *string, incBy uint64) {
	// Do this in a goroutine since channel operations are suprisingly expensive due to locking underneath
	go incrementOperationsBy(statName, incBy)
}

// IncrementOperationsEntriesAndBytes sends an increment of .operations, .entries, and .bytes to statsd.
func IncrementOperationsEntriesAndBytes(stat MultipleStat, entries uint64, bytes uint64) {
	// Do this in a goroutine since channel operations are suprisingly expensive due to locking underneath
	go incrementOperationsEntriesAndBytes(stat, entries, bytes)
}

// IncrementOperationsAndBucketedBytes sends an increment of .operations, .bytes, and the appropriate .operations.size-* to statsd.
func IncrementOperationsAndBucketedBytes(stat MultipleStat, bytes uint64) {
	// Do this in a goroutine since channel operations are suprisingly expensive due to locking underneath
	go incrementOperationsAndBucketedBytes(stat, bytes)
}
