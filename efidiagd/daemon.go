// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package efidiagd implements the standalone diagnostics-draining dæmon.
// It maps a guest memory image, registers the configured buffer address,
// and polls the buffer on a fixed cadence. SIGUSR1 forces an unrestricted
// dump; SIGHUP resets processing state (for a guest reboot).
package efidiagd

import (
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/efidiag/blunder"
	"github.com/NVIDIA/efidiag/conf"
	"github.com/NVIDIA/efidiag/efidiag"
	"github.com/NVIDIA/efidiag/guestmem"
	"github.com/NVIDIA/efidiag/logger"
	"github.com/NVIDIA/efidiag/stats"
)

// DefaultDaemonPollDelay is the poll cadence when the .conf doesn't say
const DefaultDaemonPollDelay = time.Second

// Daemon is launched as a GoRoutine. During startup, the parent should read
// errChan to await Daemon getting to the point where it is ready to handle
// the specified signal set. Any errors encountered before or after this
// point will be sent to errChan (and be non-nil of course).
func Daemon(confFile string, confStrings []string, errChan chan error, wg *sync.WaitGroup, execArgs []string, signals ...os.Signal) {
	var (
		bufferGPA       uint32
		confMap         conf.ConfMap
		err             error
		gm              guestmem.GuestMemory
		guestMemLength  uint64
		guestMemoryPath string
		pollDelay       time.Duration
		pollErr         error
		pollTicker      *time.Ticker
		signalChan      chan os.Signal
		signalReceived  os.Signal
	)

	// Compute confMap

	confMap, err = conf.MakeConfMapFromFile(confFile)
	if nil != err {
		errChan <- err
		return
	}

	err = confMap.UpdateFromStrings(confStrings)
	if nil != err {
		errChan <- err
		return
	}

	// Arm signal handler used to catch signals
	//
	// Note: signalChan must be buffered to avoid race with window between
	// arming handler and blocking on the chan read when signals might
	// otherwise be lost.
	signalChan = make(chan os.Signal, 16)

	signal.Notify(signalChan, signals...)

	// Start up dæmon packages

	err = logger.Up(confMap)
	if nil != err {
		errChan <- err
		return
	}

	err = stats.Up(confMap)
	if nil != err {
		_ = logger.Down()
		errChan <- err
		return
	}

	err = efidiag.Up(confMap)
	if nil != err {
		_ = stats.Down()
		_ = logger.Down()
		errChan <- err
		return
	}

	wg.Add(1)
	logger.Infof("efidiagd is starting up (PID %d); invoked as '%s'",
		os.Getpid(), strings.Join(execArgs, "' '"))
	defer func() {
		logger.Infof("efidiagd is shutting down (PID %d)", os.Getpid())
		err = efidiag.Down()
		if nil != err {
			logger.Errorf("efidiag.Down() failed: %v", err)
		}
		err = stats.Down()
		if nil != err {
			logger.Errorf("stats.Down() failed: %v", err)
		}
		err = logger.Down()
		errChan <- err
		wg.Done()
	}()

	// Attach the guest memory image and register the buffer address

	guestMemoryPath, err = confMap.FetchOptionValueString("EFIDiag", "GuestMemoryPath")
	if nil != err {
		errChan <- err
		return
	}

	guestMemLength, err = confMap.FetchOptionValueUint64("EFIDiag", "GuestMemoryLength")
	if nil != err {
		guestMemLength = 0 // map the whole file
	}

	gm, err = guestmem.MakeFileGuestMemory(guestMemoryPath, guestMemLength)
	if nil != err {
		errChan <- err
		return
	}

	err = efidiag.AttachGuestMemory(gm)
	if nil != err {
		errChan <- err
		return
	}

	bufferGPA, err = confMap.FetchOptionValueUint32("EFIDiag", "BufferGPA")
	if (nil == err) && (0 != bufferGPA) {
		err = efidiag.SetBufferGPA(bufferGPA)
		if nil != err {
			errChan <- err
			return
		}
	}

	pollDelay, err = confMap.FetchOptionValueDuration("EFIDiag", "DaemonPollDelay")
	if nil != err {
		pollDelay = DefaultDaemonPollDelay
	}

	pollTicker = time.NewTicker(pollDelay)
	defer pollTicker.Stop()

	// indicate daemon packages are up and signal handlers have been armed successfully
	errChan <- nil

	// Poll until signaled - SIGUSR1 dumps, SIGHUP resets, anything else exits
	for {
		select {
		case <-pollTicker.C:
			pollErr = efidiag.Poll(false)
			if nil != pollErr {
				if blunder.Is(pollErr, blunder.NoAddressError) {
					logger.Tracef("efidiagd poll skipped: %v", pollErr)
				} else {
					logger.WarnfWithError(pollErr, "efidiagd poll failed")
				}
			}
		case signalReceived = <-signalChan:
			logger.Infof("Received signal: '%v'", signalReceived)

			if unix.SIGUSR1 == signalReceived {
				pollErr = efidiag.Dump()
				if nil != pollErr {
					logger.WarnfWithError(pollErr, "efidiagd dump failed")
				}
				continue
			}

			if unix.SIGHUP == signalReceived {
				efidiag.Reset()
				if 0 != bufferGPA {
					pollErr = efidiag.SetBufferGPA(bufferGPA)
					if nil != pollErr {
						logger.WarnfWithError(pollErr, "efidiagd re-registration failed")
					}
				}
				continue
			}

			logger.Infof("signal catcher is shutting down efidiagd (PID %d)", os.Getpid())

			if (unix.SIGTERM != signalReceived) && (unix.SIGINT != signalReceived) {
				logger.Errorf("efidiagd received unexpected signal: %v", signalReceived)
			}

			return
		}
	}
}
