// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package gpa

import (
	"testing"

	"github.com/NVIDIA/efidiag/blunder"
)

func TestMakeGPA(t *testing.T) {
	var (
		err error
		g   GPA
	)

	g, err = MakeGPA(0x1000)
	if nil != err {
		t.Fatalf("MakeGPA(0x1000) failed: %v", err)
	}
	if 0x1000 != g.Value() {
		t.Fatalf("Value() returned 0x%08X", g.Value())
	}
	if 0x1000 != g.Uint64() {
		t.Fatalf("Uint64() returned 0x%016X", g.Uint64())
	}
	if "0x00001000" != g.String() {
		t.Fatalf("String() returned %q", g.String())
	}

	_, err = MakeGPA(0)
	if nil == err {
		t.Fatalf("MakeGPA(0) should have failed")
	}
	if !blunder.Is(err, blunder.InvalidAddressError) {
		t.Fatalf("MakeGPA(0) returned wrong error: %v", blunder.ErrorString(err))
	}

	_, err = MakeGPA(0xFFFFFFFF)
	if nil == err {
		t.Fatalf("MakeGPA(0xFFFFFFFF) should have failed")
	}
	if !blunder.Is(err, blunder.InvalidAddressError) {
		t.Fatalf("MakeGPA(0xFFFFFFFF) returned wrong error: %v", blunder.ErrorString(err))
	}

	// Boundary neighbors of the rejected addresses are fine
	_, err = MakeGPA(1)
	if nil != err {
		t.Fatalf("MakeGPA(1) failed: %v", err)
	}
	_, err = MakeGPA(0xFFFFFFFE)
	if nil != err {
		t.Fatalf("MakeGPA(0xFFFFFFFE) failed: %v", err)
	}
}
