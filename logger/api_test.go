// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"fmt"
	"strings"
	"testing"

	"github.com/NVIDIA/efidiag/conf"
	"github.com/NVIDIA/efidiag/utils"
)

func testNestedFunc() {
	myint := 3
	TraceEnter("the prefix", 1, myint)
}

func TestAPI(t *testing.T) {
	confStrings := []string{
		"Logging.LogFilePath=",
		"Logging.LogToConsole=false",
		"Logging.TraceLevelLogging=logger",
	}

	confMap, err := conf.MakeConfMapFromStrings(confStrings)
	if err != nil {
		t.Fatalf("%v", err)
	}

	err = Up(confMap)
	if nil != err {
		t.Fatalf("logger.Up(confMap) failed: %v", err)
	}

	Tracef("hello there!")
	Tracef("hello again, %s!", "you")
	Tracef("%v: %v", utils.GetFnName(), err)
	Warnf("%v: %v", "IAmTheCaller", "this is the error")
	err = fmt.Errorf("this is the error")
	ErrorfWithError(err, "we had an error!")

	testNestedFunc()

	err = Down()
	if nil != err {
		t.Fatalf("logger.Down() failed: %v", err)
	}
}

func TestLogTarget(t *testing.T) {
	var (
		confMap conf.ConfMap
		err     error
		target  LogTarget
	)

	confMap, err = conf.MakeConfMapFromStrings([]string{
		"Logging.LogFilePath=",
		"Logging.LogToConsole=false",
	})
	if nil != err {
		t.Fatalf("%v", err)
	}

	err = Up(confMap)
	if nil != err {
		t.Fatalf("logger.Up(confMap) failed: %v", err)
	}
	defer Down()

	target.Init(10)
	AddLogTarget(target)

	Warnf("Hello %s", "World")
	if 1 != target.LogBuf.TotalEntries {
		t.Fatalf("TotalEntries is %v expected 1", target.LogBuf.TotalEntries)
	}
	if !strings.Contains(target.LogBuf.LogEntries[0], "Hello World") {
		t.Fatalf("log entry %q does not contain \"Hello World\"", target.LogBuf.LogEntries[0])
	}

	Infof("Second entry")
	if !strings.Contains(target.LogBuf.LogEntries[0], "Second entry") {
		t.Fatalf("most recent entry should be at [0]; got %q", target.LogBuf.LogEntries[0])
	}
	if !strings.Contains(target.LogBuf.LogEntries[1], "Hello World") {
		t.Fatalf("older entry should have shifted to [1]; got %q", target.LogBuf.LogEntries[1])
	}
}
