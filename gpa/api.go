// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package gpa provides a validated guest physical address type.
//
// Guest firmware hands the host raw 32-bit addresses it is free to lie
// about. MakeGPA is the single gate through which such an address becomes
// usable: the zero address and the all-ones address are always rejected.
// Code holding a GPA may rely on it having passed that gate; code holding
// a raw uint32 may not.
package gpa

import (
	"fmt"

	"github.com/NVIDIA/efidiag/blunder"
)

// GPA is a validated guest physical address.
//
// The zero value of GPA is deliberately unusable; construct one only via MakeGPA.
type GPA struct {
	addr uint32
}

// MakeGPA validates the supplied raw address and returns it wrapped as a GPA.
// Returns blunder.InvalidAddressError if addr is 0 or 0xFFFFFFFF.
func MakeGPA(addr uint32) (g GPA, err error) {
	if (0 == addr) || (0xFFFFFFFF == addr) {
		err = blunder.NewError(blunder.InvalidAddressError, "invalid guest physical address 0x%08X", addr)
		return
	}

	g = GPA{addr: addr}
	err = nil
	return
}

// Value returns the raw 32-bit address.
func (g GPA) Value() (addr uint32) {
	addr = g.addr
	return
}

// Uint64 returns the address widened for 64-bit offset arithmetic.
func (g GPA) Uint64() (addr uint64) {
	addr = uint64(g.addr)
	return
}

func (g GPA) String() string {
	return fmt.Sprintf("0x%08X", g.addr)
}
