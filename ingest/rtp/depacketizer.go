// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"time"

	"github.com/cnotch/hevcparser/hevc"
	"github.com/cnotch/hevcparser/ingest"
)

type h265Depacketizer struct {
	fragments []*Packet // buffered FU-A fragments of the NAL unit in progress

	core *hevc.ParserCore

	nextDts float64
	dtsStep float64
	startOn time.Time

	w         ingest.FrameWriter
	syncClock SyncClock
}

// newH265Depacketizer instantiates the HEVC RTP depacketizer. core is fed
// every reassembled NAL unit so the active VideoFormat (and its
// OnSequence callback) stays current as parameter sets and slices
// arrive over the wire.
func newH265Depacketizer(core *hevc.ParserCore, w ingest.FrameWriter, clockRate int) Depacketizer {
	h265dp := &h265Depacketizer{
		core:      core,
		fragments: make([]*Packet, 0, 16),
		w:         w,
	}
	h265dp.syncClock.RTPTimeUnit = float64(time.Second) / float64(clockRate)
	return h265dp
}

func (h265dp *h265Depacketizer) Control(basePts *int64, p *Packet) error {
	if ok := h265dp.syncClock.Decode(p.Data); ok {
		if *basePts == 0 {
			*basePts = h265dp.syncClock.NTPTime
		}
	}
	return nil
}

/*
 * decode the HEVC payload header according to section 4 of draft version 6:
 *
 *    0                   1
 *    0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5
 *   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
 *   |F|   Type    |  LayerId  | TID |
 *   +-------------+-----------------+
 *
 *      Forbidden zero (F): 1 bit
 *      NAL unit type (Type): 6 bits
 *      NUH layer ID (LayerId): 6 bits
 *      NUH temporal ID plus 1 (TID): 3 bits
 *    decode the FU header
 *
 *     0 1 2 3 4 5 6 7
 *    +-+-+-+-+-+-+-+-+
 *    |S|E|  FuType   |
 *    +---------------+
 *
 *       Start fragment (S): 1 bit
 *       End fragment (E): 1 bit
 *       FuType: 6 bits
 */
func (h265dp *h265Depacketizer) Depacketize(basePts int64, packet *Packet) (err error) {
	if h265dp.syncClock.NTPTime == 0 { // no sync clock yet; discard
		return
	}

	payload := packet.Payload()
	if len(payload) < 3 {
		return
	}

	naluType := (payload[0] >> 1) & 0x3f

	switch naluType {
	case hevc.NalStapInRtp: // aggregation packet (AP)
		return h265dp.depacketizeStap(basePts, packet)
	case hevc.NalFuInRtp: // fragmentation unit (FU)
		return h265dp.depacketizeFu(basePts, packet)
	default:
		return h265dp.writeFrame(basePts, packet.Timestamp, payload)
	}
}

func (h265dp *h265Depacketizer) depacketizeStap(basePts int64, packet *Packet) (err error) {
	payload := packet.Payload()
	off := 2 // skip the STAP NAL header

	for {
		nalSize := (uint16(payload[off]) << 8) | uint16(payload[off+1])
		if nalSize < 1 {
			return
		}

		off += 2
		nal := make([]byte, nalSize)
		copy(nal, payload[off:])
		if err = h265dp.writeFrame(basePts, packet.Timestamp, nal); err != nil {
			return
		}
		off += int(nalSize)
		if off >= len(payload) {
			break
		}
	}
	return
}

func (h265dp *h265Depacketizer) depacketizeFu(basePts int64, packet *Packet) (err error) {
	payload := packet.Payload()
	rawDataOffset := 3 // FU indicator + FU header

	//  0 1 2 3 4 5 6 7
	// +-+-+-+-+-+-+-+-+
	// |S|E|  FuType   |
	// +---------------+
	fuHeader := payload[2]

	if (fuHeader>>7)&1 == 1 { // first fragment
		h265dp.fragments = h265dp.fragments[:0]
		h265dp.fragments = append(h265dp.fragments, packet)
		return
	}

	if len(h265dp.fragments) == 0 ||
		h265dp.fragments[len(h265dp.fragments)-1].SequenceNumber != packet.SequenceNumber-1 {
		// packet loss: drop the fragment run in progress
		h265dp.fragments = h265dp.fragments[:0]
		return
	}

	h265dp.fragments = append(h265dp.fragments, packet)

	if (fuHeader>>6)&1 == 1 { // last fragment
		nalLen := 2 // reconstructed NAL unit header
		for _, fragment := range h265dp.fragments {
			nalLen += len(fragment.Payload()) - rawDataOffset
		}

		nal := make([]byte, nalLen)
		nal[0] = (payload[0] & 0x81) | (fuHeader&0x3f)<<1
		nal[1] = payload[1]
		offset := 2
		for _, fragment := range h265dp.fragments {
			fragPayload := fragment.Payload()[rawDataOffset:]
			copy(nal[offset:], fragPayload)
			offset += len(fragPayload)
		}
		h265dp.fragments = h265dp.fragments[:0]

		err = h265dp.writeFrame(basePts, packet.Timestamp, nal)
	}

	return
}

func (h265dp *h265Depacketizer) rtp2ntp(timestamp uint32) int64 {
	return h265dp.syncClock.AbsoluteNtp(timestamp)
}

// annexBStartCode is prefixed onto every reassembled NAL unit before it
// is handed to the parser core and the frame writer: RTP carries bare
// NAL units, but ParseVideoData expects an Annex-B byte stream.
var annexBStartCode = []byte{0x00, 0x00, 0x00, 0x01}

func (h265dp *h265Depacketizer) writeFrame(basePts int64, rtpTimestamp uint32, nal []byte) error {
	payload := make([]byte, 0, len(annexBStartCode)+len(nal))
	payload = append(payload, annexBStartCode...)
	payload = append(payload, nal...)

	if _, err := h265dp.core.ParseVideoData(payload); err != nil {
		// a malformed parameter set or slice header doesn't stop the
		// frame from reaching the writer; only the parser core's own
		// bookkeeping for that NAL unit is lost.
		_ = err
	}

	if format := h265dp.core.ActiveFormat(); format != nil && h265dp.dtsStep == 0 && h265dp.startOn.IsZero() {
		if format.FixedFrameRate && format.FrameRate > 0 {
			h265dp.dtsStep = float64(time.Second) / format.FrameRate
		} else {
			h265dp.startOn = time.Now()
		}
	}

	frame := &ingest.Frame{
		Pts:     h265dp.rtp2ntp(rtpTimestamp) - basePts + ptsDelay,
		Payload: payload,
	}
	if h265dp.dtsStep > 0 {
		frame.Dts = int64(h265dp.nextDts)
		h265dp.nextDts += h265dp.dtsStep
	} else {
		frame.Dts = int64(time.Since(h265dp.startOn))
	}
	return h265dp.w.WriteFrame(frame)
}
