// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubWidthHeightC(t *testing.T) {
	tests := []struct {
		idc   uint8
		wantW int
		wantH int
	}{
		{0, 1, 1}, // monochrome
		{1, 2, 2}, // 4:2:0
		{2, 2, 1}, // 4:2:2
		{3, 1, 1}, // 4:4:4
	}
	for _, tt := range tests {
		w, h := subWidthHeightC(tt.idc)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}

func TestDeriveVideoFormat_NoConformanceWindow(t *testing.T) {
	sps := &H265RawSPS{
		chroma_format_idc:          1,
		pic_width_in_luma_samples:  1920,
		pic_height_in_luma_samples: 1088,
		conformance_window_flag:    0,
		bit_depth_luma_minus8:      2,
		bit_depth_chroma_minus8:    2,
	}
	sps.sps_max_dec_pic_buffering_minus1[0] = 4

	format := DeriveVideoFormat(sps)
	assert.Equal(t, "hevc", format.CodecName)
	assert.Equal(t, 1920, format.CodedWidth)
	assert.Equal(t, 1088, format.CodedHeight)
	assert.Equal(t, 1920, format.DisplayWidth)
	assert.Equal(t, 1088, format.DisplayHeight)
	assert.Equal(t, 5, format.MinNumDecodeSurfaces)
	assert.True(t, format.ProgressiveSequence)
}

func TestDeriveVideoFormat_ConformanceWindow(t *testing.T) {
	// SPEC_FULL.md §8 scenario 6.
	sps := &H265RawSPS{
		chroma_format_idc:          1,
		pic_width_in_luma_samples:  1920,
		pic_height_in_luma_samples: 1088,
		conformance_window_flag:    1,
		conf_win_left_offset:       0,
		conf_win_right_offset:      0,
		conf_win_top_offset:        0,
		conf_win_bottom_offset:     4,
	}

	format := DeriveVideoFormat(sps)
	assert.Equal(t, 0, format.DisplayLeft)
	assert.Equal(t, 0, format.DisplayTop)
	assert.Equal(t, 1920, format.DisplayWidth)
	assert.Equal(t, 1080, format.DisplayHeight)
}

func TestDeriveVideoFormat_ConformanceWindowOffOrigin(t *testing.T) {
	// A crop region not anchored at (0,0): left/top offsets must be
	// reported, not just folded into a shrunken width/height.
	sps := &H265RawSPS{
		chroma_format_idc:          1, // 4:2:0, SubWidthC=SubHeightC=2
		pic_width_in_luma_samples:  1920,
		pic_height_in_luma_samples: 1088,
		conformance_window_flag:    1,
		conf_win_left_offset:       4,
		conf_win_right_offset:      2,
		conf_win_top_offset:        3,
		conf_win_bottom_offset:     1,
	}

	format := DeriveVideoFormat(sps)
	assert.Equal(t, 8, format.DisplayLeft)   // 2 * 4
	assert.Equal(t, 6, format.DisplayTop)    // 2 * 3
	assert.Equal(t, 1908, format.DisplayWidth)  // (1920 - 2*2) - 8
	assert.Equal(t, 1080, format.DisplayHeight) // (1088 - 2*1) - 6
}

func TestDeriveVideoFormat_ProgressiveSequence(t *testing.T) {
	sps := &H265RawSPS{}
	sps.profile_tier_level.General_progressive_source_flag = 0
	sps.profile_tier_level.General_interlaced_source_flag = 1

	format := DeriveVideoFormat(sps)
	assert.False(t, format.ProgressiveSequence)
}

func TestDeriveVideoFormat_VUI(t *testing.T) {
	sps := &H265RawSPS{
		vui_parameters_present_flag: 1,
	}
	sps.vui.aspect_ratio_info_present_flag = 1
	sps.vui.aspect_ratio_idc = 1
	sps.vui.vui_num_units_in_tick = 1001
	sps.vui.vui_time_scale = 30000

	format := DeriveVideoFormat(sps)
	assert.True(t, format.AspectRatioPresent)
	assert.Equal(t, uint8(1), format.AspectRatioIdc)
	assert.True(t, format.FixedFrameRate)
	assert.InDelta(t, float64(30000)/float64(1001), format.FrameRate, 0.0001)
}
