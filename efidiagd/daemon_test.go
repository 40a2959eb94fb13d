// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package efidiagd

import (
	"io/ioutil"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/efidiag/alayout"
)

func TestMain(m *testing.M) {
	mRunReturn := m.Run()
	os.Exit(mRunReturn)
}

// testPackEntry marshals one complete entry (prefix, message, pad) the way
// the firmware lays it out
func testPackEntry(t *testing.T, debugLevel uint32, timeStamp uint64, phase uint16, message string) (entryBuf []byte) {
	rawEntry := &alayout.EntryV2Struct{
		Signature:     alayout.EntrySignatureV2,
		MajorVersion:  2,
		MinorVersion:  0,
		DebugLevel:    debugLevel,
		TimeStamp:     timeStamp,
		Phase:         phase,
		MessageLength: uint16(len(message)),
		MessageOffset: uint16(alayout.EntryV2StructSize),
	}

	entryBuf, err := rawEntry.MarshalEntryV2()
	if nil != err {
		t.Fatalf("MarshalEntryV2() failed: %v", err)
	}

	entryBuf = append(entryBuf, []byte(message)...)
	for 0 != (uint64(len(entryBuf)) % uint64(alayout.EntryAlignment)) {
		entryBuf = append(entryBuf, 0x00)
	}

	return
}

func TestDaemon(t *testing.T) {
	var (
		err     error
		errChan chan error
		wg      sync.WaitGroup
	)

	// Lay out a guest memory image holding one diagnostics buffer

	payload := testPackEntry(t, alayout.DebugError, 42, alayout.PhaseDXE, "daemon saw this\n")

	rawHeader := &alayout.HeaderV1Struct{
		Signature:        alayout.HeaderSignature,
		PayloadOffset:    64,
		WriteCursor:      64 + uint32(len(payload)),
		DeclaredCapacity: 0x1000,
	}
	headerBuf, err := rawHeader.MarshalHeaderV1()
	if nil != err {
		t.Fatalf("MarshalHeaderV1() failed: %v", err)
	}

	backing := make([]byte, 0x10000)
	copy(backing[0x1000:], headerBuf)
	copy(backing[0x1000+64:], payload)

	memFile, err := ioutil.TempFile("", "efidiagd_guestmem")
	if nil != err {
		t.Fatalf("ioutil.TempFile() failed: %v", err)
	}
	defer os.Remove(memFile.Name())
	_, err = memFile.Write(backing)
	if nil != err {
		t.Fatalf("memFile.Write() failed: %v", err)
	}
	err = memFile.Close()
	if nil != err {
		t.Fatalf("memFile.Close() failed: %v", err)
	}

	logFile, err := ioutil.TempFile("", "efidiagd_log")
	if nil != err {
		t.Fatalf("ioutil.TempFile() failed: %v", err)
	}
	defer os.Remove(logFile.Name())
	err = logFile.Close()
	if nil != err {
		t.Fatalf("logFile.Close() failed: %v", err)
	}

	confFile, err := ioutil.TempFile("", "efidiagd_conf")
	if nil != err {
		t.Fatalf("ioutil.TempFile() failed: %v", err)
	}
	defer os.Remove(confFile.Name())
	_, err = confFile.WriteString("" +
		"[Logging]\n" +
		"LogFilePath: " + logFile.Name() + "\n" +
		"\n" +
		"[EFIDiag]\n" +
		"GuestMemoryPath: " + memFile.Name() + "\n" +
		"BufferGPA: 0x1000\n" +
		"DaemonPollDelay: 50ms\n")
	if nil != err {
		t.Fatalf("confFile.WriteString() failed: %v", err)
	}
	err = confFile.Close()
	if nil != err {
		t.Fatalf("confFile.Close() failed: %v", err)
	}

	errChan = make(chan error, 1) // Must be buffered to avoid race

	go Daemon(confFile.Name(), []string{}, errChan, &wg, []string{"efidiagd_test"},
		unix.SIGINT, unix.SIGTERM, unix.SIGUSR1)

	err = <-errChan
	if nil != err {
		t.Fatalf("Daemon() startup failed: %v", err)
	}

	// Let at least one poll fire, then request a dump and terminate

	time.Sleep(200 * time.Millisecond)

	err = unix.Kill(unix.Getpid(), unix.SIGUSR1)
	if nil != err {
		t.Fatalf("unix.Kill(SIGUSR1) failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	err = unix.Kill(unix.Getpid(), unix.SIGTERM)
	if nil != err {
		t.Fatalf("unix.Kill(SIGTERM) failed: %v", err)
	}

	err = <-errChan
	if nil != err {
		t.Fatalf("Daemon() shutdown failed: %v", err)
	}

	wg.Wait()

	// The drained message should be in the log at least twice (the gated
	// poll once plus the SIGUSR1 dump)

	logContents, err := ioutil.ReadFile(logFile.Name())
	if nil != err {
		t.Fatalf("ioutil.ReadFile() failed: %v", err)
	}
	if 2 > strings.Count(string(logContents), "daemon saw this") {
		t.Fatalf("drained message missing from the daemon log:\n%s", string(logContents))
	}
}
