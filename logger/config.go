// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"io"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/NVIDIA/efidiag/conf"
)

var logFile *os.File = nil

// multiWriter fans each log entry out to the file and/or console plus any
// targets registered via AddLogTarget().
type multiWriter struct {
	sync.Mutex
	writers []io.Writer
}

func (mw *multiWriter) addWriter(writer io.Writer) {
	mw.Lock()
	defer mw.Unlock()

	mw.writers = append(mw.writers, writer)
}

func (mw *multiWriter) Write(p []byte) (n int, err error) {
	mw.Lock()
	defer mw.Unlock()

	for _, writer := range mw.writers {
		// Failure of an individual writer must not keep the entry from the rest
		_, _ = writer.Write(p)
	}

	n = len(p)
	err = nil
	return
}

var logTargets *multiWriter = nil

func addLogTarget(writer io.Writer) {
	logTargets.addWriter(writer)
}

func Up(confMap conf.ConfMap) (err error) {
	log.SetFormatter(&log.TextFormatter{DisableColors: true})

	logTargets = &multiWriter{}

	// Fetch log file info, if provided
	logFilePath, _ := confMap.FetchOptionValueString("Logging", "LogFilePath")
	if "" != logFilePath {
		logFile, err = os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if nil != err {
			log.Errorf("couldn't open log file: %v", err)
			return
		}
		logTargets.addWriter(logFile)
	}

	// Determine whether we should log to console. Default is the absence of a log file.
	logToConsole, confErr := confMap.FetchOptionValueBool("Logging", "LogToConsole")
	if nil != confErr {
		logToConsole = ("" == logFilePath)
	}
	if logToConsole {
		logTargets.addWriter(os.Stderr)
	}

	log.SetOutput(logTargets)

	// NOTE: We always enable max logging in logrus, and either decide in
	//       this package whether to log OR log everything and parse it out of
	//       the logs after the fact
	log.SetLevel(log.DebugLevel)

	// Fetch trace and debug log settings, if provided
	traceConfSlice, _ := confMap.FetchOptionValueStringSlice("Logging", "TraceLevelLogging")
	setTraceLoggingLevel(traceConfSlice)

	debugConfSlice, _ := confMap.FetchOptionValueStringSlice("Logging", "DebugLevelLogging")
	setDebugLoggingLevel(debugConfSlice)

	err = nil
	return
}

func Down() (err error) {
	// We open and close our own logfile
	if nil != logFile {
		logFile.Close()
		logFile = nil
	}
	err = nil
	return
}
