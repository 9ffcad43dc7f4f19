// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"runtime/debug"
	"time"

	"github.com/cnotch/queue"
	"github.com/cnotch/xlog"

	"github.com/cnotch/hevcparser/hevc"
	"github.com/cnotch/hevcparser/ingest"
)

// ptsDelay is the presentation-time delay applied to every reassembled
// frame, so a player's buffer always has a little headroom before the
// time a frame is due.
const ptsDelay = int64(time.Second)

// Depacketizer reassembles one media type's RTP packets into access
// units and hands them to a FrameWriter.
type Depacketizer interface {
	Control(basePts *int64, p *Packet) error
	Depacketize(basePts int64, p *Packet) error
}

// Demuxer turns a stream of RTP/RTCP Packets arriving on the video
// channels into Annex-B Frames, parsing each one through a ParserCore
// along the way so the active VideoFormat is always available.
type Demuxer struct {
	closed    bool
	recvQueue *queue.SyncQueue
	vdp       Depacketizer
	logger    *xlog.Logger
}

// NewDemuxer creates a Demuxer that depacketizes HEVC video carried over
// RTP, reporting every active sequence change on core through its
// OnSequence callback (core.OnSequence may be set before or after
// calling NewDemuxer).
func NewDemuxer(core *hevc.ParserCore, fw ingest.FrameWriter, clockRate int, logger *xlog.Logger) *Demuxer {
	demuxer := &Demuxer{
		recvQueue: queue.NewSyncQueue(),
		logger:    logger,
		vdp:       newH265Depacketizer(core, fw, clockRate),
	}
	go demuxer.process()
	return demuxer
}

func (demuxer *Demuxer) process() {
	defer func() {
		defer func() { // avoid the handler panicking again
			recover()
		}()

		if r := recover(); r != nil {
			demuxer.logger.Errorf("rtp demuxer panic: r = %v\n%s", r, debug.Stack())
		}

		demuxer.recvQueue.Reset()
	}()

	var basePts int64
	for !demuxer.closed {
		p := demuxer.recvQueue.Pop()
		if p == nil {
			if !demuxer.closed {
				demuxer.logger.Warn("rtp demuxer: received nil packet")
			}
			continue
		}

		packet := p.(*Packet)
		var err error
		switch packet.Channel {
		case ChannelVideo:
			err = demuxer.vdp.Depacketize(basePts, packet)
		case ChannelVideoControl:
			err = demuxer.vdp.Control(&basePts, packet)
		}

		if err != nil {
			demuxer.logger.Errorf("rtp demuxer: depacketize error: %s", err.Error())
		}
	}
}

// Close stops the demuxer's processing goroutine.
func (demuxer *Demuxer) Close() error {
	if demuxer.closed {
		return nil
	}

	demuxer.closed = true
	demuxer.recvQueue.Signal()
	return nil
}

// WriteRtpPacket queues an RTP/RTCP packet for depacketization.
func (demuxer *Demuxer) WriteRtpPacket(packet *Packet) error {
	demuxer.recvQueue.Push(packet)
	return nil
}
