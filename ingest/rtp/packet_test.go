// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// rawRtpPacket is a minimal 12-byte RTP header (version 2, no padding, no
// extension, no CSRC, payload type 96, sequence 1, timestamp 0, SSRC
// 0x12345678) followed by a 2-byte payload.
func rawRtpPacket() []byte {
	header := []byte{
		0x80,       // V=2,P=0,X=0,CC=0
		0x60,       // M=0,PT=96
		0x00, 0x01, // sequence number
		0x00, 0x00, 0x00, 0x00, // timestamp
		0x12, 0x34, 0x56, 0x78, // SSRC
	}
	return append(header, 0xAA, 0xBB)
}

func frameForChannel(channel byte, data []byte) []byte {
	frame := []byte{TransferPrefix, channel, byte(len(data) >> 8), byte(len(data))}
	return append(frame, data...)
}

func TestReadPacket_Video(t *testing.T) {
	data := rawRtpPacket()
	buf := bytes.NewReader(frameForChannel(byte(DefaultChannelConfig[ChannelVideo]), data))
	r := bufio.NewReader(buf)

	p, err := ReadPacket(r, DefaultChannelConfig)
	assert.NoError(t, err)
	assert.Equal(t, byte(ChannelVideo), p.Channel)
	assert.Equal(t, uint16(1), p.SequenceNumber)
	assert.Equal(t, uint8(96), p.PayloadType)
	assert.Equal(t, []byte{0xAA, 0xBB}, p.Payload())
}

func TestReadPacket_UnknownChannelRejected(t *testing.T) {
	data := rawRtpPacket()
	buf := bytes.NewReader(frameForChannel(99, data))
	r := bufio.NewReader(buf)

	_, err := ReadPacket(r, DefaultChannelConfig)
	assert.Error(t, err)
}

func TestReadPacket_BadPrefixRejected(t *testing.T) {
	buf := bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x00})
	r := bufio.NewReader(buf)

	_, err := ReadPacket(r, DefaultChannelConfig)
	assert.Error(t, err)
}

func TestPacket_WriteRoundTrip(t *testing.T) {
	data := rawRtpPacket()
	buf := bytes.NewReader(frameForChannel(byte(DefaultChannelConfig[ChannelVideo]), data))
	p, err := ReadPacket(bufio.NewReader(buf), DefaultChannelConfig)
	assert.NoError(t, err)

	var out bytes.Buffer
	assert.NoError(t, p.Write(&out, DefaultChannelConfig))

	roundTripped, err := ReadPacket(bufio.NewReader(bytes.NewReader(out.Bytes())), DefaultChannelConfig)
	assert.NoError(t, err)
	assert.Equal(t, p.SequenceNumber, roundTripped.SequenceNumber)
	assert.Equal(t, p.Data, roundTripped.Data)
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "video", ChannelName(ChannelVideo))
	assert.Equal(t, "audio", ChannelName(ChannelAudio))
	assert.Equal(t, "video control", ChannelName(ChannelVideoControl))
	assert.Equal(t, "audio control", ChannelName(ChannelAudioControl))
	assert.Equal(t, "unknow", ChannelName(99))
}
