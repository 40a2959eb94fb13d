// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package efidiag

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/efidiag/conf"
	"github.com/NVIDIA/efidiag/gpa"
	"github.com/NVIDIA/efidiag/logger"
)

// DefaultLogsPerPeriod is the default cap on dispatched messages per
// severity class per rate-limit period
const DefaultLogsPerPeriod = 150

// DefaultRateLimitPeriod is the default rate-limit period
const DefaultRateLimitPeriod = time.Second

func up(confMap conf.ConfMap) (err error) {
	var (
		bufferGPA  uint32
		limit      rate.Limit
		registered gpa.GPA
	)

	globals.Lock()
	defer globals.Unlock()

	if globals.active {
		err = fmt.Errorf("efidiag.Up() called while already active")
		return
	}

	globals.config.logsPerPeriod, err = confMap.FetchOptionValueUint64("EFIDiag", "LogsPerPeriod")
	if nil != err {
		globals.config.logsPerPeriod = DefaultLogsPerPeriod
	}
	if 0 == globals.config.logsPerPeriod {
		err = fmt.Errorf("[EFIDiag]LogsPerPeriod must be non-zero")
		return
	}

	globals.config.rateLimitPeriod, err = confMap.FetchOptionValueDuration("EFIDiag", "RateLimitPeriod")
	if nil != err {
		globals.config.rateLimitPeriod = DefaultRateLimitPeriod
	}
	if globals.config.rateLimitPeriod <= 0 {
		err = fmt.Errorf("[EFIDiag]RateLimitPeriod must be positive")
		return
	}

	bufferGPA, err = confMap.FetchOptionValueUint32("EFIDiag", "BufferGPA")
	if nil != err {
		bufferGPA = 0
	}
	globals.config.bufferGPA = bufferGPA

	if 0 != bufferGPA {
		registered, err = gpa.MakeGPA(bufferGPA)
		if nil != err {
			return
		}
		globals.bufferGPA = &registered
		logger.Infof("efidiag.Up(): registered diagnostics buffer at %v from config", registered)
	} else {
		globals.bufferGPA = nil
	}

	limit = rate.Every(globals.config.rateLimitPeriod / time.Duration(globals.config.logsPerPeriod))

	globals.errorLimiter = rate.NewLimiter(limit, int(globals.config.logsPerPeriod))
	globals.warnLimiter = rate.NewLimiter(limit, int(globals.config.logsPerPeriod))
	globals.infoLimiter = rate.NewLimiter(limit, int(globals.config.logsPerPeriod))

	globals.guestMemory = nil
	globals.hasGuestProcessedBefore = false

	globals.active = true

	err = nil
	return
}

func down() (err error) {
	globals.Lock()
	defer globals.Unlock()

	if !globals.active {
		err = fmt.Errorf("efidiag.Down() called while not active")
		return
	}

	if nil != globals.guestMemory {
		err = globals.guestMemory.Close()
		if nil != err {
			logger.WarnfWithError(err, "efidiag.Down(): guestMemory.Close() failed")
		}
		globals.guestMemory = nil
	}

	globals.bufferGPA = nil
	globals.hasGuestProcessedBefore = false
	globals.errorLimiter = nil
	globals.warnLimiter = nil
	globals.infoLimiter = nil

	globals.active = false

	err = nil
	return
}
