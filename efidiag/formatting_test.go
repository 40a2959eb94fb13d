// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package efidiag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/efidiag/alayout"
)

func TestDebugLevelText(t *testing.T) {
	assert := assert.New(t)

	testSetup(t)
	defer testTeardown(t)

	// A mask matching a single known flag borrows that flag's name
	assert.Equal("ERROR", debugLevelText(alayout.DebugError))
	assert.Equal("WARN", debugLevelText(alayout.DebugWarn))
	assert.Equal("INFO", debugLevelText(alayout.DebugInfo))
	assert.Equal("VERBOSE", debugLevelText(alayout.DebugVerbose))

	// Multiple known flags join with "+" in table order
	assert.Equal("WARN+INFO", debugLevelText(alayout.DebugWarn|alayout.DebugInfo))
	assert.Equal("INIT+INFO+ERROR", debugLevelText(alayout.DebugInit|alayout.DebugInfo|alayout.DebugError))

	// No known flag renders as UNKNOWN
	assert.Equal("UNKNOWN", debugLevelText(0))
	assert.Equal("UNKNOWN", debugLevelText(0x00000200))
}

func TestPhaseText(t *testing.T) {
	assert := assert.New(t)

	testSetup(t)
	defer testTeardown(t)

	assert.Equal("SEC", phaseText(alayout.PhaseSEC))
	assert.Equal("PEI", phaseText(alayout.PhasePEI))
	assert.Equal("DXE", phaseText(alayout.PhaseDXE))
	assert.Equal("TFA", phaseText(alayout.PhaseTFA))

	// Codes beyond the table render as UNKNOWN
	assert.Equal("UNKNOWN", phaseText(alayout.PhaseCNT+1))
	assert.Equal("UNKNOWN", phaseText(0xFFFF))
}
