// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ingest adapts transport-level sources (RTP, SDP) into the
// Annex-B packets the hevc package's ParserCore consumes. It sits
// outside the parser CORE: a demuxer or RTSP/RTP client feeding
// ParserCore directly never needs it.
package ingest

// Frame is one reassembled access unit handed to a FrameWriter once an
// ingestion source (e.g. the RTP depacketizer) has collected every NAL
// unit that belongs together.
type Frame struct {
	Dts     int64  // decode timestamp, ns
	Pts     int64  // presentation timestamp, ns
	Payload []byte // Annex-B byte stream: one or more start-code-prefixed NAL units
}

// FrameWriter receives reassembled access units.
type FrameWriter interface {
	WriteFrame(frame *Frame) error
}
