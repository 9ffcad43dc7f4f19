// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/pion/rtp"
)

const (
	// TransferPrefix is the leading byte of the RTSP-interleaved `$`
	// framing (RFC 2326 §10.12).
	TransferPrefix = byte(0x24) // $
)

// The channel identifiers this package recognises.
const (
	ChannelVideo        = iota         // video RTP channel
	ChannelVideoControl                // video RTCP channel
	ChannelAudio                       // audio RTP channel
	ChannelAudioControl                // audio RTCP channel
	ChannelCount                       // number of channel kinds this package supports
	ChannelMin          = ChannelVideo // lowest channel kind value
)

// DefaultChannelConfig maps interleaved channel numbers 0-3 straight to
// the four channel kinds, in declaration order.
var DefaultChannelConfig = []int{
	ChannelVideo,
	ChannelVideoControl,
	ChannelAudio,
	ChannelAudioControl,
}

// ChannelName returns a human-readable name for a channel kind.
func ChannelName(channel int) string {
	switch channel {
	case ChannelAudio:
		return "audio"
	case ChannelVideo:
		return "video"
	case ChannelAudioControl:
		return "audio control"
	case ChannelVideoControl:
		return "video control"
	}
	return "unknow"
}

// Packet is one interleaved RTP/RTCP packet: which channel it arrived
// on, its raw bytes, and (for the RTP channels) the parsed header.
type Packet struct {
	Channel    byte   // channel kind (ChannelVideo, ChannelAudio, ...)
	Data       []byte // raw packet bytes
	rtp.Header        // parsed for the video/audio RTP channels only
}

// PacketWriter wraps WriteRtpPacket.
type PacketWriter interface {
	WriteRtpPacket(packet *Packet) error
}

// ReadPacket reads one `$`-framed interleaved packet from r.
// channelConfig maps the wire channel number to the channel kind at
// that index.
func ReadPacket(r *bufio.Reader, channelConfig []int) (*Packet, error) {
	var err error

	var prefix [4]byte
	// the 4-byte frame prefix: '$', channel number, 16-bit length.
	if _, err = io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	if prefix[0] != TransferPrefix {
		return nil, errors.New("RTP Pack must start with `$`")
	}

	channel := int(prefix[1])
	rtpLen := int(binary.BigEndian.Uint16(prefix[2:]))

	rtpBytes := make([]byte, rtpLen)
	if _, err = io.ReadFull(r, rtpBytes); err != nil {
		return nil, err
	}

	var p = new(Packet)
	p.Data = rtpBytes
	for i, v := range channelConfig {
		if v == channel {
			p.Channel = byte(i)
			if p.Channel == ChannelVideo || p.Channel == ChannelAudio {
				if err = p.Header.Unmarshal(p.Data); err != nil {
					return nil, err
				}
			}
			return p, nil
		}
	}
	return nil, errors.New("RTP Packet illegal channel")
}

// Write writes p to w using the `$`-framed interleaved format.
// channelConfig maps p.Channel to the wire channel number to send.
func (p *Packet) Write(w io.Writer, channelConfig []int) error {
	if p.Channel >= ChannelCount {
		return errors.New("unknow pack type")
	}

	ch := channelConfig[p.Channel]
	if ch < 0 || ch > 255 { // channel not subscribed to; drop silently
		return nil
	}

	var prefix [4]byte
	prefix[0] = TransferPrefix
	prefix[1] = byte(ch)
	binary.BigEndian.PutUint16(prefix[2:], uint16(len(p.Data)))

	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}

	if _, err := w.Write(p.Data); err != nil {
		return err
	}

	return nil
}

// Size returns p's total size on the wire, including the 4-byte frame
// prefix.
func (p *Packet) Size() int {
	return len(p.Data) + 4
}

// Payload returns the packet's RTP payload, or nil on a control
// channel.
func (p *Packet) Payload() []byte {
	if p.Channel == ChannelVideo || p.Channel == ChannelAudio {
		return p.Data[p.PayloadOffset:]
	}
	return nil
}
