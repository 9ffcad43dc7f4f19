// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"testing"
)

func TestH265RawPPS_DecodeString(t *testing.T) {
	tests := []struct {
		name    string
		b64     string
		wantErr bool
	}{
		{
			// sprop-pps sampled from a libavformat-produced RTSP session.
			"libavformat",
			"RAHBcrRiQA==",
			false,
		},
		{
			// sprop-pps sampled from a TP-LINK RTSP camera, with a
			// leading four-byte Annex-B start code still attached.
			"tpl500-265",
			"AAAAAUQB4HawJkA=",
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pps := &H265RawPPS{}
			if err := pps.DecodeString(tt.b64); (err != nil) != tt.wantErr {
				t.Errorf("RawPPS.Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if pps.pps_pic_parameter_set_id != 0 {
				t.Errorf("RawPPS.Decode() pps_pic_parameter_set_id = %v, want 0", pps.pps_pic_parameter_set_id)
			}
			if pps.pps_seq_parameter_set_id != 0 {
				t.Errorf("RawPPS.Decode() pps_seq_parameter_set_id = %v, want 0", pps.pps_seq_parameter_set_id)
			}
		})
	}
}

func TestH265RawPPS_DecodeString_InvalidNalType(t *testing.T) {
	// First byte's nal_unit_type bits (0x42 >> 1 & 0x3f = 33) identify an
	// SPS, so decoding it as a PPS must fail.
	pps := &H265RawPPS{}
	err := pps.DecodeString("QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC")
	if err == nil {
		t.Error("RawPPS.Decode() error = nil, want error for non-PPS NAL unit")
	}
}

func Benchmark_PPSDecode(b *testing.B) {
	ppsstr := "RAHBcrRiQA=="

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			pps := &H265RawPPS{}
			_ = pps.DecodeString(ppsstr)
		}
	})
}
