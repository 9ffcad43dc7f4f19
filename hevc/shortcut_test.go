// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNulType(t *testing.T) {
	// nal_unit_type 33 (SPS): forbidden_zero_bit=0, type=33, layer_id high bit=0
	b := byte(33 << 1)
	assert.Equal(t, byte(33), NulType(b))
}

func TestIsParameterSet(t *testing.T) {
	assert.True(t, IsParameterSet(NalVps))
	assert.True(t, IsParameterSet(NalSps))
	assert.True(t, IsParameterSet(NalPps))
	assert.False(t, IsParameterSet(NalTrailR))
}

func TestIsSlice(t *testing.T) {
	assert.True(t, IsSlice(NalTrailN))
	assert.True(t, IsSlice(NalRsvVcl31))
	assert.False(t, IsSlice(NalVps))
}

func TestIsIRAP(t *testing.T) {
	assert.True(t, IsIRAP(NalBlaWLp))
	assert.True(t, IsIRAP(NalIdrWRadl))
	assert.True(t, IsIRAP(NalCraNut))
	assert.False(t, IsIRAP(NalTrailN))
}
