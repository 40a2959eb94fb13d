// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package efidiag

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/efidiag/gpa"
	"github.com/NVIDIA/efidiag/guestmem"
)

type configStruct struct {
	bufferGPA       uint32 //        0 if no address is pre-registered via the .conf
	logsPerPeriod   uint64
	rateLimitPeriod time.Duration
}

type globalsStruct struct {
	sync.Mutex //                    Serializes device operations and state mutation
	active     bool

	config configStruct

	guestMemory guestmem.GuestMemory

	// bufferGPA is the registered diagnostics buffer address;
	// nil means the guest has not registered one (or it was cleared)
	bufferGPA *gpa.GPA

	// hasGuestProcessedBefore gates repeated guest-initiated drains;
	// reset by Reset()
	hasGuestProcessedBefore bool

	// Per-severity-class limiters for the rate-limited dispatch path
	errorLimiter *rate.Limiter
	warnLimiter  *rate.Limiter
	infoLimiter  *rate.Limiter
}

var globals globalsStruct
