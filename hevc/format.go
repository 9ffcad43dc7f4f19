// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

// VideoFormat is a summary of the properties a caller needs to allocate
// decode/display resources, derived from an active SPS the first time
// one becomes available (and recomputed whenever a new SPS activates).
//
// It mirrors what a decoder's sequence-change callback is normally
// handed: everything here is a direct read or simple scaling of SPS/VUI
// fields, never something requiring slice-level or CABAC state.
type VideoFormat struct {
	CodecName string

	BitDepthLumaMinus8   uint8
	BitDepthChromaMinus8 uint8

	// ProgressiveSequence reports whether every picture in the sequence
	// is progressive. Defaults to true when the PTL does not constrain
	// it either way.
	ProgressiveSequence bool

	// MinNumDecodeSurfaces is derived from the first temporal sub-layer's
	// DPB size requirement (sps_max_dec_pic_buffering_minus1[0] + 1).
	MinNumDecodeSurfaces int

	CodedWidth  int
	CodedHeight int

	// ChromaFormatIdc: 0 monochrome, 1 4:2:0, 2 4:2:2, 3 4:4:4.
	ChromaFormatIdc uint8

	// DisplayLeft/DisplayTop/DisplayWidth/DisplayHeight describe the
	// conformance-cropped display rectangle. DisplayLeft/DisplayTop are
	// the crop origin (0,0 when conformance_window_flag is 0); the width
	// and height are measured from that origin, not from the coded
	// picture's own (0,0).
	DisplayLeft   int
	DisplayTop    int
	DisplayWidth  int
	DisplayHeight int

	BitRate uint32

	// FrameRate is derived from the VUI timing info (vui_time_scale /
	// vui_num_units_in_tick); zero when the VUI carries no timing info.
	FrameRate float64
	// FixedFrameRate reports whether the source signals a constant frame
	// rate. The VUI's fixed_frame_rate_flag is itself per-HRD-sub-layer
	// and optional, so in its absence a constant rate is assumed whenever
	// FrameRate is known.
	FixedFrameRate bool

	AspectRatioPresent bool
	AspectRatioIdc     uint8
	SarWidth           uint16
	SarHeight          uint16

	VideoSignalPresent       bool
	VideoFormat              uint8
	VideoFullRangeFlag       bool
	ColourDescriptionPresent bool
	ColourPrimaries          uint8
	TransferCharacteristics  uint8
	MatrixCoefficients       uint8
}

// subWidthHeightC implements Table 6-1 for the chroma_format_idc values
// that appear in an SPS (separate_colour_plane_flag forces 4:4:4
// subsampling behaviour at the caller).
func subWidthHeightC(chromaFormatIdc uint8) (subW, subH int) {
	switch chromaFormatIdc {
	case 1: // 4:2:0
		return 2, 2
	case 2: // 4:2:2
		return 2, 1
	default: // 0 monochrome, 3 4:4:4
		return 1, 1
	}
}

// DeriveVideoFormat builds the video format summary for an active SPS.
func DeriveVideoFormat(sps *H265RawSPS) *VideoFormat {
	vf := &VideoFormat{
		CodecName:            "hevc",
		BitDepthLumaMinus8:   sps.bit_depth_luma_minus8,
		BitDepthChromaMinus8: sps.bit_depth_chroma_minus8,
		MinNumDecodeSurfaces: int(sps.sps_max_dec_pic_buffering_minus1[0]) + 1,
		CodedWidth:           int(sps.pic_width_in_luma_samples),
		CodedHeight:          int(sps.pic_height_in_luma_samples),
		ChromaFormatIdc:      sps.chroma_format_idc,
	}

	ptl := sps.profile_tier_level
	switch {
	case ptl.General_progressive_source_flag == 1 && ptl.General_interlaced_source_flag == 0:
		vf.ProgressiveSequence = true
	case ptl.General_progressive_source_flag == 0 && ptl.General_interlaced_source_flag == 1:
		vf.ProgressiveSequence = false
	default:
		vf.ProgressiveSequence = true
	}

	if sps.conformance_window_flag == 1 {
		subW, subH := subWidthHeightC(sps.chroma_format_idc)
		left := subW * int(sps.conf_win_left_offset)
		top := subH * int(sps.conf_win_top_offset)
		right := vf.CodedWidth - subW*int(sps.conf_win_right_offset)
		bottom := vf.CodedHeight - subH*int(sps.conf_win_bottom_offset)

		vf.DisplayLeft = left
		vf.DisplayTop = top
		vf.DisplayWidth = right - left
		vf.DisplayHeight = bottom - top
	} else {
		vf.DisplayWidth = vf.CodedWidth
		vf.DisplayHeight = vf.CodedHeight
	}

	if sps.vui_parameters_present_flag == 1 {
		vui := &sps.vui
		if vui.vui_num_units_in_tick != 0 {
			vf.FrameRate = float64(vui.vui_time_scale) / float64(vui.vui_num_units_in_tick)
			vf.FixedFrameRate = true
		}
		vf.AspectRatioPresent = vui.aspect_ratio_info_present_flag == 1
		vf.AspectRatioIdc = vui.aspect_ratio_idc
		vf.SarWidth = vui.sar_width
		vf.SarHeight = vui.sar_height

		vf.VideoSignalPresent = vui.video_signal_type_present_flag == 1
		vf.VideoFormat = vui.video_format
		vf.VideoFullRangeFlag = vui.video_full_range_flag == 1
		vf.ColourDescriptionPresent = vui.colour_description_present_flag == 1
		vf.ColourPrimaries = vui.colour_primaries
		vf.TransferCharacteristics = vui.transfer_characteristics
		vf.MatrixCoefficients = vui.matrix_coefficients
	}

	return vf
}
