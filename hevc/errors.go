// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import "errors"

// Kind classifies the errors a parsing operation can fail with.
type Kind int

const (
	// KindNotFound is returned when no further NAL unit can be located
	// in the supplied byte stream.
	KindNotFound Kind = iota
	// KindEof classifies the end of the byte stream. The NAL framer
	// reports its last NAL unit through FramerEof, and no operation in
	// this package returns an error of this kind.
	KindEof
	// KindInvalidFormat is returned when the bitstream violates a
	// structural rule (malformed emulation prevention, truncated RBSP,
	// an invalid syntax value) that makes further parsing meaningless.
	KindInvalidFormat
	// KindNotSupported classifies syntax that is recognised but not
	// implemented. No decoder in this package returns it: an SPS with a
	// range, multilayer, 3D or SCC extension flag set decodes without
	// error and the extension payload is not parsed.
	KindNotSupported
	// KindOutOfMemory classifies a failed allocation. The parameter-set
	// tables are fixed-size arrays, and no operation in this package
	// returns an error of this kind.
	KindOutOfMemory
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindEof:
		return "eof"
	case KindInvalidFormat:
		return "invalid format"
	case KindNotSupported:
		return "not supported"
	case KindOutOfMemory:
		return "out of memory"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every bitstream decoding operation
// in this package (DecodeString returns base64 errors unchanged). It carries a Kind so callers can decide whether a failure is
// fatal to the whole packet (framing/RBSP errors) or can be tolerated and
// the offending NAL unit merely skipped (sub-parser errors).
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Msg }

func newError(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// ErrNotFound is a sentinel for framing operations that exhausted the
// buffer without locating a start code.
var ErrNotFound = newError(KindNotFound, "start code not found")

// ErrEof is the KindEof sentinel. The NAL framer does not return it: it
// reports the last NAL unit of a buffer with FramerEof.
var ErrEof = newError(KindEof, "no more data")

// IsEof reports whether err is (or wraps) an Error of KindEof.
func IsEof(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindEof
	}
	return false
}

// IsNotFound reports whether err is (or wraps) a not-found condition.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindNotFound
	}
	return false
}

// IsKind reports whether err is (or wraps) an Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
