// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sdp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cnotch/hevcparser/hevc"
)

// sdpH265Raw is an ffmpeg/libavformat RTSP announce for an HEVC session,
// sampled alongside its H264 counterpart in the retrieval pack this
// package's parsing logic is grounded on.
const sdpH265Raw = `v=0
o=- 0 0 IN IP6 ::1
s=No Name
c=IN IP6 ::1
t=0 0
a=tool:libavformat 58.20.100
m=video 0 RTP/AVP 96
a=rtpmap:96 H265/90000
a=fmtp:96 sprop-vps=QAEMAf//BAgAAAMAnQgAAAMAAF26AkA=; sprop-sps=QgEBBAgAAAMAnQgAAAMAAF2wAoCALRZbqSTK4BAAAAMAEAAAAwHggA==; sprop-pps=RAHBcrRiQA==
a=control:streamid=0
m=audio 0 RTP/AVP 97
b=AS:128
a=rtpmap:97 MPEG4-GENERIC/44100/2
a=fmtp:97 profile-level-id=1;mode=AAC-hbr;sizelength=13;indexlength=3;indexdeltalength=3; config=121056E500
a=control:streamid=1
`

// sdpTplink500 is a TP-LINK RTSP camera announce whose sprop- parameter
// sets still carry a leading Annex-B start code, exercising
// utils.RemoveNaluSeparator.
const sdpTplink500 = `v=0
o=- 14665860 31787219 1 IN IP4 192.168.1.60
s=Session streamed by "TP-LINK RTSP Server"
t=0 0
m=video 0 RTP/AVP 96
c=IN IP4 0.0.0.0
b=AS:4096
a=range:npt=0-
a=control:track1
a=rtpmap:96 H265/90000
a=fmtp:96 profile-space=0;profile-id=12;tier-flag=0;level-id=0;interop-constraints=600000000000;sprop-vps=AAAAAUABDAH//wFgAAADAAADAAADAAADAJasCQ==;sprop-sps=AAAAAUIBAQFgAAADAAADAAADAAADAJagAWggBln3ja5JMmuWMAgAAAMACAAAAwB4QA==;sprop-pps=AAAAAUQB4HawJkA=
m=audio 0 RTP/AVP 8
a=rtpmap:8 PCMA/8000
a=control:track2
m=application/TP-LINK 0 RTP/AVP smart/1/90000
a=rtpmap:95 TP-LINK/90000
a=control:track3
`

func TestParseMetadata_Libavformat(t *testing.T) {
	format, err := ParseMetadata(sdpH265Raw)
	assert.NoError(t, err)
	assert.Equal(t, 90000, format.ClockRate)
	assert.Equal(t, float64(0), format.DataRate)

	assert.NotEmpty(t, format.Vps)
	assert.NotEmpty(t, format.Sps)
	assert.NotEmpty(t, format.Pps)
	assert.Equal(t, byte(32), hevc.NulType(format.Vps[0]))
	assert.Equal(t, byte(33), hevc.NulType(format.Sps[0]))
	assert.Equal(t, byte(34), hevc.NulType(format.Pps[0]))
}

func TestParseMetadata_TplinkStripsStartCode(t *testing.T) {
	format, err := ParseMetadata(sdpTplink500)
	assert.NoError(t, err)
	assert.Equal(t, 90000, format.ClockRate)
	assert.Equal(t, float64(4096), format.DataRate)

	// The sprop- values carry a leading 00 00 00 01 start code;
	// scanParameterSets must strip it via utils.RemoveNaluSeparator.
	assert.Equal(t, byte(32), hevc.NulType(format.Vps[0]))
	assert.Equal(t, byte(33), hevc.NulType(format.Sps[0]))
	assert.Equal(t, byte(34), hevc.NulType(format.Pps[0]))
}

func TestParseMetadata_NoVideoMedia(t *testing.T) {
	const audioOnly = `v=0
o=- 0 0 IN IP4 127.0.0.1
s=No Name
t=0 0
m=audio 0 RTP/AVP 97
a=rtpmap:97 MPEG4-GENERIC/44100/2
`
	_, err := ParseMetadata(audioOnly)
	assert.Equal(t, ErrNoVideoMedia, err)
}
