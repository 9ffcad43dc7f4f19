// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sdp extracts the HEVC session description a caller needs to
// start an RTP depacketizer: the media clock rate and the VPS/SPS/PPS
// carried out-of-band in the fmtp sprop- attributes.
package sdp

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/pixelbender/go-sdp/sdp"

	"github.com/cnotch/hevcparser/utils"
	"github.com/cnotch/hevcparser/utils/scan"
)

// VideoFormat holds the session-level HEVC properties announced in an
// SDP description's video media section.
type VideoFormat struct {
	ClockRate int
	DataRate  float64

	Vps []byte
	Sps []byte
	Pps []byte
}

// ErrNoVideoMedia is returned when rawsdp has no HEVC video media
// section to extract.
var ErrNoVideoMedia = errors.New("sdp: no HEVC video media section")

// ParseMetadata parses rawsdp and returns the HEVC video format it
// describes.
func ParseMetadata(rawsdp string) (*VideoFormat, error) {
	desc, err := sdp.ParseString(rawsdp)
	if err != nil {
		return nil, err
	}

	for _, media := range desc.Media {
		if media.Type != "video" || len(media.Format) == 0 {
			continue
		}

		switch strings.ToUpper(media.Format[0].Name) {
		case "H265", "HEVC":
		default:
			continue
		}

		format := &VideoFormat{}
		if m := media.Format[0]; m.ClockRate > 0 {
			format.ClockRate = m.ClockRate
		}
		for _, bw := range media.Bandwidth {
			if bw.Type == "AS" {
				format.DataRate = float64(bw.Value)
			}
		}
		parseVpsSpsPps(media.Format[0], format)
		return format, nil
	}

	return nil, ErrNoVideoMedia
}

func parseVpsSpsPps(m *sdp.Format, format *VideoFormat) {
	for _, p := range m.Params {
		i := strings.Index(p, "sprop-")
		if i < 0 {
			continue
		}
		scanParameterSets(p[i:], format)
		return
	}
}

// scanParameterSets walks the semicolon-separated sprop-vps=...;
// sprop-sps=...; sprop-pps=...; attribute value from an fmtp line.
func scanParameterSets(s string, format *VideoFormat) {
	advance, token, continueScan := s, "", true
	for continueScan {
		advance, token, continueScan = scan.Semicolon.Scan(advance)
		name, value, ok := scan.EqualPair.Scan(token)
		if !ok {
			continue
		}

		ps, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			continue
		}
		ps = utils.RemoveNaluSeparator(ps)

		switch name {
		case "sprop-vps":
			format.Vps = ps
		case "sprop-sps":
			format.Sps = ps
		case "sprop-pps":
			format.Pps = ps
		}
	}
}
