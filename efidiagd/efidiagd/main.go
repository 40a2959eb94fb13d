// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// The efidiagd program drains UEFI diagnostics buffers out of a guest
// memory image and is named accordingly.
package main

import (
	"fmt"
	"log"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/efidiag/efidiagd"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("no .conf file specified")
	}

	errChan := make(chan error, 1) // Must be buffered to avoid race
	var wg sync.WaitGroup

	go efidiagd.Daemon(os.Args[1], os.Args[2:], errChan, &wg, os.Args,
		unix.SIGHUP, unix.SIGINT, unix.SIGTERM, unix.SIGUSR1)

	err := <-errChan

	if nil == err {
		// Daemon() is up; await its exit
		err = <-errChan
	}

	wg.Wait() // wait for services to go Down()

	if nil != err {
		fmt.Fprintf(os.Stderr, "efidiagd: Daemon(): returned error: %v\n", err) // Can't use logger.*() as it's not currently "up"
		os.Exit(1)
	}
}
