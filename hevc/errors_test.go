// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "not found", KindNotFound.String())
	assert.Equal(t, "eof", KindEof.String())
	assert.Equal(t, "invalid format", KindInvalidFormat.String())
	assert.Equal(t, "not supported", KindNotSupported.String())
	assert.Equal(t, "out of memory", KindOutOfMemory.String())
}

func TestIsEofIsNotFound(t *testing.T) {
	assert.True(t, IsEof(ErrEof))
	assert.False(t, IsEof(ErrNotFound))

	assert.True(t, IsNotFound(ErrNotFound))
	assert.False(t, IsNotFound(ErrEof))

	assert.False(t, IsEof(nil))
	assert.False(t, IsNotFound(fmt.Errorf("plain error")))
}

func TestIsKind_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("reading slice header: %w", newError(KindInvalidFormat, "truncated"))
	assert.True(t, IsKind(wrapped, KindInvalidFormat))
	assert.False(t, IsKind(wrapped, KindEof))
}
