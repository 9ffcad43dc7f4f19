// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

// FramerState reports the outcome of a single NalFramer.Next call.
type FramerState int

const (
	// FramerNotFound means no start code could be located from the
	// current scan position; nal is nil.
	FramerNotFound FramerState = iota
	// FramerOk means a NAL unit was located and at least one further
	// start code follows it, so Next can be called again.
	FramerOk
	// FramerEof means a NAL unit was located and it runs to the end of
	// the buffer; there is nothing left to scan.
	FramerEof
)

// NalFramer scans an Annex-B byte stream (a sequence of NAL units each
// prefixed by a 00 00 01 start code, optionally preceded by an extra
// leading zero byte to form a 4-byte start code) and yields the byte
// range of each NAL unit in turn, start code excluded.
//
// A NalFramer is stateful across a single packet: create one with
// NewNalFramer for each packet passed to ParseVideoData and call Next
// until it reports FramerEof or FramerNotFound.
type NalFramer struct {
	buf   []byte
	start int // offset of the next byte to search from
}

// NewNalFramer returns a framer over buf, ready to locate the first NAL
// unit.
func NewNalFramer(buf []byte) *NalFramer {
	return &NalFramer{buf: buf}
}

// findStartCode returns the offset of the first 00 00 01 byte sequence
// at or after from, or -1 if none is present.
func findStartCode(buf []byte, from int) int {
	n := len(buf)
	for i := from; i+2 < n; i++ {
		if buf[i] == 0 && buf[i+1] == 0 && buf[i+2] == 1 {
			return i
		}
	}
	return -1
}

// Next locates the next NAL unit in the stream and returns its payload
// (the 00 00 01 start code is excluded; a trailing_zero_8bits byte left
// over from a 4-byte start code is excluded too since it belongs to no
// syntax element).
func (f *NalFramer) Next() (nal []byte, state FramerState) {
	currStart := findStartCode(f.buf, f.start)
	if currStart < 0 {
		return nil, FramerNotFound
	}
	currStart += 3

	nextStart := findStartCode(f.buf, currStart)
	if nextStart < 0 {
		nal = f.buf[currStart:]
		f.start = len(f.buf)
		return nal, FramerEof
	}

	end := nextStart
	// a 4-byte start code is "00 00 00 01"; the byte immediately before
	// the 00 00 01 we just matched then belongs to that start code, not
	// to this NAL unit's payload.
	if end > currStart && f.buf[end-1] == 0 {
		end--
	}

	nal = f.buf[currStart:end]
	f.start = nextStart
	return nal, FramerOk
}
