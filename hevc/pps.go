// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"encoding/base64"
	"fmt"
	"runtime/debug"

	"github.com/cnotch/hevcparser/bits"
	"github.com/cnotch/hevcparser/utils"
)

// H265RawPPS holds the syntax elements of a picture_parameter_set_rbsp.
type H265RawPPS struct {
	nal_unit_header H265RawNALUnitHeader

	pps_pic_parameter_set_id uint8
	pps_seq_parameter_set_id uint8

	dependent_slice_segments_enabled_flag uint8
	output_flag_present_flag              uint8
	num_extra_slice_header_bits           uint8
	sign_data_hiding_enabled_flag         uint8
	cabac_init_present_flag               uint8

	num_ref_idx_l0_default_active_minus1 uint8
	num_ref_idx_l1_default_active_minus1 uint8
	init_qp_minus26                      int32

	constrained_intra_pred_flag uint8
	transform_skip_enabled_flag uint8
	cu_qp_delta_enabled_flag    uint8
	diff_cu_qp_delta_depth      uint8

	pps_cb_qp_offset                       int32
	pps_cr_qp_offset                       int32
	pps_slice_chroma_qp_offsets_present_flag uint8

	weighted_pred_flag              uint8
	weighted_bipred_flag             uint8
	transquant_bypass_enabled_flag   uint8
	tiles_enabled_flag               uint8
	entropy_coding_sync_enabled_flag uint8

	num_tile_columns_minus1                uint16
	num_tile_rows_minus1                   uint16
	uniform_spacing_flag                   uint8
	column_width_minus1                    [HEVC_MAX_TILE_COLUMNS]uint16
	row_height_minus1                      [HEVC_MAX_TILE_ROWS]uint16
	loop_filter_across_tiles_enabled_flag   uint8

	pps_loop_filter_across_slices_enabled_flag uint8
	deblocking_filter_control_present_flag     uint8
	deblocking_filter_override_enabled_flag     uint8
	pps_deblocking_filter_disabled_flag         uint8
	pps_beta_offset_div2                        int32
	pps_tc_offset_div2                          int32

	pps_scaling_list_data_present_flag uint8
	scaling_list                       *H265RawScalingList

	lists_modification_present_flag            uint8
	log2_parallel_merge_level_minus2           uint8
	slice_segment_header_extension_present_flag uint8

	pps_extension_present_flag    uint8
	pps_range_extension_flag      uint8
	pps_multilayer_extension_flag uint8
	pps_3d_extension_flag         uint8
	pps_scc_extension_flag        uint8
	pps_extension_4bits           uint8

	// Range extension, parsed when pps_range_extension_flag is set.
	log2_max_transform_skip_block_size_minus2 uint8
	cross_component_prediction_enabled_flag   uint8
	chroma_qp_offset_list_enabled_flag         uint8
	diff_cu_chroma_qp_offset_depth              uint8
	chroma_qp_offset_list_len_minus1            uint8
	cb_qp_offset_list                           [6]int32
	cr_qp_offset_list                           [6]int32
	log2_sao_offset_scale_luma                  uint8
	log2_sao_offset_scale_chroma                uint8
}

// DecodeString decodes a PPS NAL unit from a base64 string.
func (pps *H265RawPPS) DecodeString(b64 string) error {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return err
	}
	return pps.Decode(data)
}

// Decode decodes a PPS NAL unit from its EBSP bytes; a leading Annex-B
// start code, if present, is stripped first. When the PPS carries its own scaling_list_data(), the
// list is parsed and resolved here except for the chroma_format_idc==3
// matrix copy, which needs the referenced SPS; when it doesn't, the
// scaling list is left nil and ParserCore inherits the referenced
// SPS's resolved scaling list by value once it has matched the two up,
// since only it tracks which SPS a given PPS references.
func (pps *H265RawPPS) Decode(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(KindInvalidFormat, fmt.Sprintf("RawPPS decode panic；r = %v \n %s", r, debug.Stack()))
		}
	}()

	data = utils.RemoveNaluSeparator(data)
	ppsWEB, err := ExtractRBSP(data)
	if err != nil {
		return err
	}
	if len(ppsWEB) < 2 {
		return newError(KindInvalidFormat, "pps: not enough data for a NAL unit header")
	}

	r := bits.NewReader(ppsWEB)
	if err = pps.nal_unit_header.decode(r); err != nil {
		return
	}
	if pps.nal_unit_header.Nal_unit_type != NalPps {
		return newError(KindInvalidFormat, "pps: NAL unit type is not PPS")
	}

	pps.pps_pic_parameter_set_id = r.ReadUe8()
	pps.pps_seq_parameter_set_id = r.ReadUe8()
	pps.dependent_slice_segments_enabled_flag = r.ReadBit()
	pps.output_flag_present_flag = r.ReadBit()
	pps.num_extra_slice_header_bits = r.ReadUint8(3)
	pps.sign_data_hiding_enabled_flag = r.ReadBit()
	pps.cabac_init_present_flag = r.ReadBit()

	pps.num_ref_idx_l0_default_active_minus1 = r.ReadUe8()
	pps.num_ref_idx_l1_default_active_minus1 = r.ReadUe8()
	pps.init_qp_minus26 = r.ReadSe()

	pps.constrained_intra_pred_flag = r.ReadBit()
	pps.transform_skip_enabled_flag = r.ReadBit()
	pps.cu_qp_delta_enabled_flag = r.ReadBit()
	if pps.cu_qp_delta_enabled_flag == 1 {
		pps.diff_cu_qp_delta_depth = r.ReadUe8()
	}

	pps.pps_cb_qp_offset = r.ReadSe()
	pps.pps_cr_qp_offset = r.ReadSe()
	pps.pps_slice_chroma_qp_offsets_present_flag = r.ReadBit()
	pps.weighted_pred_flag = r.ReadBit()
	pps.weighted_bipred_flag = r.ReadBit()
	pps.transquant_bypass_enabled_flag = r.ReadBit()
	pps.tiles_enabled_flag = r.ReadBit()
	pps.entropy_coding_sync_enabled_flag = r.ReadBit()

	if pps.tiles_enabled_flag == 1 {
		pps.num_tile_columns_minus1 = r.ReadUe16()
		pps.num_tile_rows_minus1 = r.ReadUe16()
		pps.uniform_spacing_flag = r.ReadBit()
		if pps.uniform_spacing_flag == 0 {
			for i := uint16(0); i < pps.num_tile_columns_minus1 && i < HEVC_MAX_TILE_COLUMNS; i++ {
				pps.column_width_minus1[i] = r.ReadUe16()
			}
			for i := uint16(0); i < pps.num_tile_rows_minus1 && i < HEVC_MAX_TILE_ROWS; i++ {
				pps.row_height_minus1[i] = r.ReadUe16()
			}
		}
		pps.loop_filter_across_tiles_enabled_flag = r.ReadBit()
	} else {
		pps.loop_filter_across_tiles_enabled_flag = 1
		pps.uniform_spacing_flag = 1
	}

	pps.pps_loop_filter_across_slices_enabled_flag = r.ReadBit()
	pps.deblocking_filter_control_present_flag = r.ReadBit()
	if pps.deblocking_filter_control_present_flag == 1 {
		pps.deblocking_filter_override_enabled_flag = r.ReadBit()
		pps.pps_deblocking_filter_disabled_flag = r.ReadBit()
		if pps.pps_deblocking_filter_disabled_flag == 0 {
			pps.pps_beta_offset_div2 = r.ReadSe()
			pps.pps_tc_offset_div2 = r.ReadSe()
		}
	}

	pps.pps_scaling_list_data_present_flag = r.ReadBit()
	if pps.pps_scaling_list_data_present_flag == 1 {
		pps.scaling_list = new(H265RawScalingList)
		if err = pps.scaling_list.decode(r); err != nil {
			return
		}
	}

	pps.lists_modification_present_flag = r.ReadBit()
	pps.log2_parallel_merge_level_minus2 = r.ReadUe8()
	pps.slice_segment_header_extension_present_flag = r.ReadBit()
	pps.pps_extension_present_flag = r.ReadBit()

	if pps.pps_extension_present_flag == 1 {
		pps.pps_range_extension_flag = r.ReadBit()
		pps.pps_multilayer_extension_flag = r.ReadBit()
		pps.pps_3d_extension_flag = r.ReadBit()
		pps.pps_scc_extension_flag = r.ReadBit()
		pps.pps_extension_4bits = r.ReadUint8(4)
	}

	if pps.pps_range_extension_flag == 1 {
		if pps.transform_skip_enabled_flag == 1 {
			pps.log2_max_transform_skip_block_size_minus2 = r.ReadUe8()
		}
		pps.cross_component_prediction_enabled_flag = r.ReadBit()
		pps.chroma_qp_offset_list_enabled_flag = r.ReadBit()
		if pps.chroma_qp_offset_list_enabled_flag == 1 {
			pps.diff_cu_chroma_qp_offset_depth = r.ReadUe8()
			pps.chroma_qp_offset_list_len_minus1 = r.ReadUe8()
			for i := uint8(0); i <= pps.chroma_qp_offset_list_len_minus1 && i < 6; i++ {
				pps.cb_qp_offset_list[i] = r.ReadSe()
				pps.cr_qp_offset_list[i] = r.ReadSe()
			}
		}
		pps.log2_sao_offset_scale_luma = r.ReadUe8()
		pps.log2_sao_offset_scale_chroma = r.ReadUe8()
	}

	return
}
