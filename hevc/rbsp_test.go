// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRBSP(t *testing.T) {
	ebsp := []byte{0x00, 0x00, 0x03, 0x01, 0x02, 0x00, 0x00, 0x03, 0x03, 0x00, 0x00, 0x03}
	want := []byte{0x00, 0x00, 0x01, 0x02, 0x00, 0x00, 0x03, 0x00, 0x00}

	got, err := ExtractRBSP(ebsp)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExtractRBSP_InvalidFormat(t *testing.T) {
	ebsp := []byte{0x00, 0x00, 0x03, 0x05, 0x01, 0x02}

	_, err := ExtractRBSP(ebsp)
	assert.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidFormat))
}

func TestExtractRBSP_NoEmulation(t *testing.T) {
	ebsp := []byte{0x01, 0x02, 0x03, 0x04}

	got, err := ExtractRBSP(ebsp)
	assert.NoError(t, err)
	assert.Equal(t, ebsp, got)
}
