// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"encoding/binary"
	"time"
)

const jan1970 = 0x83aa7e80

// SyncClock maps RTP timestamps to wall-clock time using the NTP/RTP
// timestamp pair carried in an RTCP sender report, so timestamps from
// different RTP streams (e.g. audio and video) can be lined up against
// a common absolute clock.
type SyncClock struct {
	// NTPTime is the sender report's NTP timestamp, converted to
	// nanoseconds since the Unix epoch. The wire format is a 32-bit
	// integer seconds part (since 1900-01-01) plus a 32-bit fractional
	// part; it records the absolute time the report was sent.
	NTPTime int64
	// RTPTime is the RTP timestamp paired with NTPTime: same units and
	// the same random initial value as the timestamps carried in this
	// stream's RTP packets.
	RTPTime     uint32
	RTPTimeUnit float64 // nanoseconds per RTP timestamp tick

	initOn time.Time // time this clock was initialized
}

// Init initializes the clock from the local wall clock, to be
// refined once a sender report arrives via Decode.
func (sc *SyncClock) Init(clockRate int) {
	sc.initOn = time.Now()
	sc.NTPTime = sc.initOn.UnixNano()
	sc.RTPTimeUnit = float64(time.Second) / float64(clockRate)
}

// LocalTime returns the clock's current NTPTime as local wall-clock time.
func (sc *SyncClock) LocalTime() time.Time {
	return time.Unix(0, sc.NTPTime).In(time.Local)
}

// Decode updates the clock from an RTCP packet, if it is a sender
// report (packet type 200). Reports false otherwise.
func (sc *SyncClock) Decode(data []byte) (ok bool) {
	if data[1] == 200 {
		msw := binary.BigEndian.Uint32(data[8:])
		lsw := binary.BigEndian.Uint32(data[12:])
		sc.RTPTime = binary.BigEndian.Uint32(data[16:])
		sc.NTPTime = int64(msw-jan1970)*int64(time.Second) + (int64(lsw)*1000_000_000)>>32
		ok = true
	}
	return
}

// RelativeNtpNow returns the time elapsed since Init, in nanoseconds.
func (sc *SyncClock) RelativeNtpNow() int64 {
	return int64(time.Now().Sub(sc.initOn))
}

// RelativeNtp converts an RTP timestamp to nanoseconds relative to
// sc.RTPTime.
func (sc *SyncClock) RelativeNtp(rtptime uint32) int64 {
	diff := int64(rtptime) - int64(sc.RTPTime)
	return int64(float64(diff) * sc.RTPTimeUnit)
}

// AbsoluteNtp converts an RTP timestamp to absolute time, in
// nanoseconds since the Unix epoch.
func (sc *SyncClock) AbsoluteNtp(rtptime uint32) int64 {
	diff := int64(rtptime) - int64(sc.RTPTime)
	return sc.NTPTime + int64(float64(diff)*sc.RTPTimeUnit)
}
