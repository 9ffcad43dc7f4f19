// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scan

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Predefined Pair scanners for the common key/value delimiters.
var (
	// EqualPair scans "K=V" pairs.
	EqualPair = NewPair('=',
		func(r rune) bool {
			return unicode.IsSpace(r) || r == '"'
		})

	// ColonPair scans "K:V" pairs.
	ColonPair = NewPair(':',
		func(r rune) bool {
			return unicode.IsSpace(r) || r == '"'
		})
)

// Pair scans a "key<delim>value" string into its two parts.
type Pair struct {
	delim    rune              // delimiter between key and value
	delimLen int               // byte length of delim
	trimFunc func(r rune) bool // trims each side before returning
}

// NewPair creates a Pair scanner for delim. A nil trimFunc trims nothing.
func NewPair(delim rune, trimFunc func(r rune) bool) Pair {
	pair := Pair{
		delim:    delim,
		trimFunc: trimFunc,
	}
	pair.delimLen = utf8.RuneLen(delim)
	if trimFunc == nil {
		pair.trimFunc = func(r rune) bool { return false }
	}
	return pair
}

// Scan splits s into key and value at the delimiter.
func (p Pair) Scan(s string) (key, value string, found bool) {
	if p.delim == 0 {
		return s, "", false
	}

	i := strings.IndexRune(s, p.delim)
	if i < 0 {
		return s, "", false
	}

	return strings.TrimFunc(s[:i], p.trimFunc),
		strings.TrimFunc(s[i+p.delimLen:], p.trimFunc), true
}
