// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"math"

	"github.com/cnotch/hevcparser/bits"
)

// H265RawPredWeightTable holds the syntax of pred_weight_table().
type H265RawPredWeightTable struct {
	luma_log2_weight_denom         uint8
	delta_chroma_log2_weight_denom int32

	luma_weight_l0_flag   [HEVC_MAX_REFS]uint8
	chroma_weight_l0_flag [HEVC_MAX_REFS]uint8
	delta_luma_weight_l0  [HEVC_MAX_REFS]int32
	luma_offset_l0        [HEVC_MAX_REFS]int32
	delta_chroma_weight_l0 [HEVC_MAX_REFS][2]int32
	delta_chroma_offset_l0 [HEVC_MAX_REFS][2]int32

	luma_weight_l1_flag    [HEVC_MAX_REFS]uint8
	chroma_weight_l1_flag  [HEVC_MAX_REFS]uint8
	delta_luma_weight_l1   [HEVC_MAX_REFS]int32
	luma_offset_l1         [HEVC_MAX_REFS]int32
	delta_chroma_weight_l1 [HEVC_MAX_REFS][2]int32
	delta_chroma_offset_l1 [HEVC_MAX_REFS][2]int32
}

func (pwt *H265RawPredWeightTable) decode(r *bits.Reader, sh *H265RawSliceSegmentHeader, chromaArrayType uint8) error {
	pwt.luma_log2_weight_denom = r.ReadUe8()
	if chromaArrayType != 0 {
		pwt.delta_chroma_log2_weight_denom = r.ReadSe()
	}

	for i := uint8(0); i <= sh.num_ref_idx_l0_active_minus1 && i < HEVC_MAX_REFS; i++ {
		pwt.luma_weight_l0_flag[i] = r.ReadBit()
	}
	if chromaArrayType != 0 {
		for i := uint8(0); i <= sh.num_ref_idx_l0_active_minus1 && i < HEVC_MAX_REFS; i++ {
			pwt.chroma_weight_l0_flag[i] = r.ReadBit()
		}
	}
	for i := uint8(0); i <= sh.num_ref_idx_l0_active_minus1 && i < HEVC_MAX_REFS; i++ {
		if pwt.luma_weight_l0_flag[i] == 1 {
			pwt.delta_luma_weight_l0[i] = r.ReadSe()
			pwt.luma_offset_l0[i] = r.ReadSe()
		}
		if pwt.chroma_weight_l0_flag[i] == 1 {
			for j := 0; j < 2; j++ {
				pwt.delta_chroma_weight_l0[i][j] = r.ReadSe()
				pwt.delta_chroma_offset_l0[i][j] = r.ReadSe()
			}
		}
	}

	if sh.slice_type == SliceB {
		for i := uint8(0); i <= sh.num_ref_idx_l1_active_minus1 && i < HEVC_MAX_REFS; i++ {
			pwt.luma_weight_l1_flag[i] = r.ReadBit()
		}
		if chromaArrayType != 0 {
			for i := uint8(0); i <= sh.num_ref_idx_l1_active_minus1 && i < HEVC_MAX_REFS; i++ {
				pwt.chroma_weight_l1_flag[i] = r.ReadBit()
			}
		}
		for i := uint8(0); i <= sh.num_ref_idx_l1_active_minus1 && i < HEVC_MAX_REFS; i++ {
			if pwt.luma_weight_l1_flag[i] == 1 {
				pwt.delta_luma_weight_l1[i] = r.ReadSe()
				pwt.luma_offset_l1[i] = r.ReadSe()
			}
			if pwt.chroma_weight_l1_flag[i] == 1 {
				for j := 0; j < 2; j++ {
					pwt.delta_chroma_weight_l1[i][j] = r.ReadSe()
					pwt.delta_chroma_offset_l1[i][j] = r.ReadSe()
				}
			}
		}
	}
	return nil
}

// H265RawSliceSegmentHeader holds the syntax of slice_segment_header()
// together with the POC derived for the slice (not itself a syntax
// element, but the whole point of parsing one).
type H265RawSliceSegmentHeader struct {
	nal_unit_header H265RawNALUnitHeader

	first_slice_segment_in_pic_flag uint8
	no_output_of_prior_pics_flag    uint8

	slice_pic_parameter_set_id uint8

	dependent_slice_segment_flag uint8
	slice_segment_address        uint32

	slice_reserved_flag [8]uint8
	slice_type          uint8
	pic_output_flag     uint8
	colour_plane_id     uint8

	slice_pic_order_cnt_lsb uint32

	short_term_ref_pic_set_sps_flag uint8
	short_term_ref_pic_set_idx      uint8
	st_rps                          H265RawSTRefPicSet

	num_long_term_sps                 uint8
	num_long_term_pics                uint8
	lt_idx_sps                        [HEVC_MAX_LONG_TERM_REF_PICS]uint8
	poc_lsb_lt                        [HEVC_MAX_LONG_TERM_REF_PICS]uint32
	used_by_curr_pic_lt_flag          [HEVC_MAX_LONG_TERM_REF_PICS]uint8
	delta_poc_msb_present_flag        [HEVC_MAX_LONG_TERM_REF_PICS]uint8
	delta_poc_msb_cycle_lt            [HEVC_MAX_LONG_TERM_REF_PICS]uint32

	slice_temporal_mvp_enabled_flag uint8

	slice_sao_luma_flag   uint8
	slice_sao_chroma_flag uint8

	num_ref_idx_active_override_flag uint8
	num_ref_idx_l0_active_minus1      uint8
	num_ref_idx_l1_active_minus1      uint8

	ref_pic_list_modification_flag_l0 uint8
	list_entry_l0                     [HEVC_MAX_REFS]uint32
	ref_pic_list_modification_flag_l1 uint8
	list_entry_l1                     [HEVC_MAX_REFS]uint32

	mvd_l1_zero_flag          uint8
	cabac_init_flag           uint8
	collocated_from_l0_flag   uint8
	collocated_ref_idx        uint8

	pred_weight_table H265RawPredWeightTable

	five_minus_max_num_merge_cand uint8

	slice_qp_delta                int32
	slice_cb_qp_offset             int32
	slice_cr_qp_offset             int32
	cu_chroma_qp_offset_enabled_flag uint8

	deblocking_filter_override_flag       uint8
	slice_deblocking_filter_disabled_flag uint8
	slice_beta_offset_div2                int32
	slice_tc_offset_div2                  int32

	slice_loop_filter_across_slices_enabled_flag uint8

	num_entry_point_offsets      uint32
	offset_len_minus1            uint32
	entry_point_offset_minus1    []uint32

	slice_segment_header_extension_length    uint32
	slice_segment_header_extension_data_byte []uint8

	// Derived picture-order-count, not itself a bitstream syntax element.
	PicOrderCntVal int32
}

// pocState carries the running POC derivation state across slice
// headers within a coded video sequence, mirroring the prevPicOrderCnt
// bookkeeping a real decoder keeps per access unit.
type pocState struct {
	prevPocLsb uint32
	prevPocMsb int32
	havePrev   bool
}

// decode parses a slice_segment_header() RBSP. prev is the most recently
// independently parsed slice header of the current picture (nil if this
// is the first slice of the picture); it supplies the syntax elements a
// dependent slice segment inherits, per 7.3.6.1's "When ... is not
// present, it is inferred to be equal to" pattern for dependent slices.
func (sh *H265RawSliceSegmentHeader) decode(r *bits.Reader, nalUnitType uint8, pps *H265RawPPS, sps *H265RawSPS, prev *H265RawSliceSegmentHeader, poc *pocState) error {
	if err := sh.nal_unit_header.decode(r); err != nil {
		return err
	}

	sh.first_slice_segment_in_pic_flag = r.ReadBit()
	if nalUnitType >= NalBlaWLp && nalUnitType <= NalIrapVcl23 {
		sh.no_output_of_prior_pics_flag = r.ReadBit()
	}

	sh.slice_pic_parameter_set_id = r.ReadUe8()

	if sh.first_slice_segment_in_pic_flag == 0 {
		if pps.dependent_slice_segments_enabled_flag == 1 {
			sh.dependent_slice_segment_flag = r.ReadBit()
		}

		minCbLog2SizeY := int(sps.log2_min_luma_coding_block_size_minus3) + 3
		ctbLog2SizeY := minCbLog2SizeY + int(sps.log2_diff_max_min_luma_coding_block_size)
		ctbSizeY := 1 << uint(ctbLog2SizeY)
		picWidthInCtbsY := (int(sps.pic_width_in_luma_samples) + ctbSizeY - 1) / ctbSizeY
		picHeightInCtbsY := (int(sps.pic_height_in_luma_samples) + ctbSizeY - 1) / ctbSizeY
		picSizeInCtbsY := picWidthInCtbsY * picHeightInCtbsY
		bitsSliceSegmentAddress := int(math.Ceil(math.Log2(float64(picSizeInCtbsY))))

		sh.slice_segment_address = r.ReadUint32(bitsSliceSegmentAddress)
	}

	if sh.dependent_slice_segment_flag == 1 {
		// Dependent slice: every field below is inherited from the
		// independent slice segment header of the same picture, except
		// the five identifying fields already parsed above.
		independentAddress := sh.slice_segment_address
		independentFlag := sh.dependent_slice_segment_flag
		independentPpsID := sh.slice_pic_parameter_set_id
		independentFirst := sh.first_slice_segment_in_pic_flag
		independentNoOutput := sh.no_output_of_prior_pics_flag

		if prev != nil {
			*sh = *prev
		}

		sh.first_slice_segment_in_pic_flag = independentFirst
		sh.no_output_of_prior_pics_flag = independentNoOutput
		sh.slice_pic_parameter_set_id = independentPpsID
		sh.dependent_slice_segment_flag = independentFlag
		sh.slice_segment_address = independentAddress
	} else {
		for i := uint8(0); i < pps.num_extra_slice_header_bits && i < 8; i++ {
			sh.slice_reserved_flag[i] = r.ReadBit()
		}
		sh.slice_type = uint8(r.ReadUe())
		if pps.output_flag_present_flag == 1 {
			sh.pic_output_flag = r.ReadBit()
		} else {
			sh.pic_output_flag = 1
		}
		if sps.separate_colour_plane_flag == 1 {
			sh.colour_plane_id = r.ReadUint8(2)
		}

		if nalUnitType == NalIdrWRadl || nalUnitType == NalIdrNLp {
			sh.PicOrderCntVal = 0
			poc.prevPocLsb = 0
			poc.prevPocMsb = 0
			poc.havePrev = true
		} else {
			pocLsbBits := int(sps.log2_max_pic_order_cnt_lsb_minus4) + 4
			sh.slice_pic_order_cnt_lsb = r.ReadUint32(pocLsbBits)

			maxPocLsb := int32(1) << uint(pocLsbBits)
			currPocLsb := int32(sh.slice_pic_order_cnt_lsb)

			var currPocMsb int32
			if nalUnitType >= NalBlaWLp && nalUnitType < NalCraNut {
				// BLA pictures reset the MSB to 0. The half-open range
				// [BLA_W_LP, CRA_NUT) also spans IDR_W_RADL and IDR_N_LP,
				// but those take the IDR branch above, so only BLA_W_LP,
				// BLA_W_RADL and BLA_N_LP get here; CRA_NUT is excluded.
				currPocMsb = 0
			} else if poc.havePrev {
				prevPocLsb := int32(poc.prevPocLsb)
				prevPocMsb := poc.prevPocMsb
				switch {
				case currPocLsb < prevPocLsb && (prevPocLsb-currPocLsb) >= maxPocLsb/2:
					currPocMsb = prevPocMsb + maxPocLsb
				case currPocLsb > prevPocLsb && (currPocLsb-prevPocLsb) > maxPocLsb/2:
					currPocMsb = prevPocMsb - maxPocLsb
				default:
					currPocMsb = prevPocMsb
				}
			}

			sh.PicOrderCntVal = currPocMsb + currPocLsb
			poc.prevPocLsb = uint32(currPocLsb)
			poc.prevPocMsb = currPocMsb
			poc.havePrev = true

			sh.short_term_ref_pic_set_sps_flag = r.ReadBit()
			if sh.short_term_ref_pic_set_sps_flag == 0 {
				if err := sh.st_rps.decode(r, sps.num_short_term_ref_pic_sets, sps); err != nil {
					return err
				}
			} else if sps.num_short_term_ref_pic_sets > 1 {
				numBits := 0
				for (1 << uint(numBits)) < int(sps.num_short_term_ref_pic_sets) {
					numBits++
				}
				if numBits > 0 {
					sh.short_term_ref_pic_set_idx = uint8(r.ReadUint32(numBits))
				}
				sh.st_rps = sps.st_ref_pic_set[sh.short_term_ref_pic_set_idx]
			}

			if sps.long_term_ref_pics_present_flag == 1 {
				if sps.num_long_term_ref_pics_sps > 0 {
					sh.num_long_term_sps = r.ReadUe8()
				}
				sh.num_long_term_pics = r.ReadUe8()

				bitsForLtrpInSps := 0
				for int(sps.num_long_term_ref_pics_sps) > (1 << uint(bitsForLtrpInSps)) {
					bitsForLtrpInSps++
				}

				total := int(sh.num_long_term_sps) + int(sh.num_long_term_pics)
				for i := 0; i < total && i < HEVC_MAX_LONG_TERM_REF_PICS; i++ {
					if i < int(sh.num_long_term_sps) {
						if sps.num_long_term_ref_pics_sps > 1 && bitsForLtrpInSps > 0 {
							sh.lt_idx_sps[i] = uint8(r.ReadUint32(bitsForLtrpInSps))
							sh.poc_lsb_lt[i] = uint32(sps.lt_ref_pic_poc_lsb_sps[sh.lt_idx_sps[i]])
							sh.used_by_curr_pic_lt_flag[i] = sps.used_by_curr_pic_lt_sps_flag[sh.lt_idx_sps[i]]
						}
					} else {
						sh.poc_lsb_lt[i] = r.ReadUint32(int(sps.log2_max_pic_order_cnt_lsb_minus4) + 4)
						sh.used_by_curr_pic_lt_flag[i] = r.ReadBit()
					}
					sh.delta_poc_msb_present_flag[i] = r.ReadBit()
					if sh.delta_poc_msb_present_flag[i] == 1 {
						sh.delta_poc_msb_cycle_lt[i] = r.ReadUe()
					}
				}
			}

			if sps.sps_temporal_mvp_enabled_flag == 1 {
				sh.slice_temporal_mvp_enabled_flag = r.ReadBit()
			}
		}

		chromaArrayType := sps.chroma_format_idc
		if sps.separate_colour_plane_flag == 1 {
			chromaArrayType = 0
		}

		if sps.sample_adaptive_offset_enabled_flag == 1 {
			sh.slice_sao_luma_flag = r.ReadBit()
			if chromaArrayType != 0 {
				sh.slice_sao_chroma_flag = r.ReadBit()
			}
		}

		if sh.slice_type == SliceP || sh.slice_type == SliceB {
			sh.num_ref_idx_active_override_flag = r.ReadBit()
			if sh.num_ref_idx_active_override_flag == 1 {
				sh.num_ref_idx_l0_active_minus1 = r.ReadUe8()
				if sh.slice_type == SliceB {
					sh.num_ref_idx_l1_active_minus1 = r.ReadUe8()
				}
			} else {
				sh.num_ref_idx_l0_active_minus1 = pps.num_ref_idx_l0_default_active_minus1
				if sh.slice_type == SliceB {
					sh.num_ref_idx_l1_active_minus1 = pps.num_ref_idx_l1_default_active_minus1
				}
			}

			numPicTotalCurr := 0
			numDeltaPocs := int(sh.st_rps.num_negative_pics) + int(sh.st_rps.num_positive_pics)
			for i := 0; i < numDeltaPocs && i < HEVC_MAX_REFS; i++ {
				if i < int(sh.st_rps.num_negative_pics) {
					if sh.st_rps.used_by_curr_pic_s0_flag[i] == 1 {
						numPicTotalCurr++
					}
				} else {
					j := i - int(sh.st_rps.num_negative_pics)
					if sh.st_rps.used_by_curr_pic_s1_flag[j] == 1 {
						numPicTotalCurr++
					}
				}
			}
			for i := 0; i < int(sh.num_long_term_sps)+int(sh.num_long_term_pics) && i < HEVC_MAX_LONG_TERM_REF_PICS; i++ {
				if sh.used_by_curr_pic_lt_flag[i] == 1 {
					numPicTotalCurr++
				}
			}

			if pps.lists_modification_present_flag == 1 && numPicTotalCurr > 1 {
				listEntryBits := 0
				for (1 << uint(listEntryBits)) < numPicTotalCurr {
					listEntryBits++
				}

				sh.ref_pic_list_modification_flag_l0 = r.ReadBit()
				if sh.ref_pic_list_modification_flag_l0 == 1 {
					for i := uint8(0); i < sh.num_ref_idx_l0_active_minus1 && i < HEVC_MAX_REFS; i++ {
						sh.list_entry_l0[i] = r.ReadUint32(listEntryBits)
					}
				}
				if sh.slice_type == SliceB {
					sh.ref_pic_list_modification_flag_l1 = r.ReadBit()
					if sh.ref_pic_list_modification_flag_l1 == 1 {
						for i := uint8(0); i < sh.num_ref_idx_l1_active_minus1 && i < HEVC_MAX_REFS; i++ {
							sh.list_entry_l1[i] = r.ReadUint32(listEntryBits)
						}
					}
				}
			}

			if sh.slice_type == SliceB {
				sh.mvd_l1_zero_flag = r.ReadBit()
			}
			if pps.cabac_init_present_flag == 1 {
				sh.cabac_init_flag = r.ReadBit()
			}
			if sh.slice_temporal_mvp_enabled_flag == 1 {
				sh.collocated_from_l0_flag = 1
				if sh.slice_type == SliceB {
					sh.collocated_from_l0_flag = r.ReadBit()
				}
				if (sh.collocated_from_l0_flag == 1 && sh.num_ref_idx_l0_active_minus1 > 0) ||
					(sh.collocated_from_l0_flag == 0 && sh.num_ref_idx_l1_active_minus1 > 0) {
					sh.collocated_ref_idx = r.ReadUe8()
				}
			}

			if (pps.weighted_pred_flag == 1 && sh.slice_type == SliceP) ||
				(pps.weighted_bipred_flag == 1 && sh.slice_type == SliceB) {
				if err := sh.pred_weight_table.decode(r, sh, chromaArrayType); err != nil {
					return err
				}
			}
			sh.five_minus_max_num_merge_cand = r.ReadUe8()
		}

		sh.slice_qp_delta = r.ReadSe()
		if pps.pps_slice_chroma_qp_offsets_present_flag == 1 {
			sh.slice_cb_qp_offset = r.ReadSe()
			sh.slice_cr_qp_offset = r.ReadSe()
		}
		if pps.chroma_qp_offset_list_enabled_flag == 1 {
			sh.cu_chroma_qp_offset_enabled_flag = r.ReadBit()
		}
		if pps.deblocking_filter_override_enabled_flag == 1 {
			sh.deblocking_filter_override_flag = r.ReadBit()
		}
		if sh.deblocking_filter_override_flag == 1 {
			sh.slice_deblocking_filter_disabled_flag = r.ReadBit()
			if sh.slice_deblocking_filter_disabled_flag == 0 {
				sh.slice_beta_offset_div2 = r.ReadSe()
				sh.slice_tc_offset_div2 = r.ReadSe()
			}
		} else {
			sh.slice_deblocking_filter_disabled_flag = pps.pps_deblocking_filter_disabled_flag
			sh.slice_beta_offset_div2 = pps.pps_beta_offset_div2
			sh.slice_tc_offset_div2 = pps.pps_tc_offset_div2
		}

		if pps.pps_loop_filter_across_slices_enabled_flag == 1 &&
			(sh.slice_sao_luma_flag == 1 || sh.slice_sao_chroma_flag == 1 || sh.slice_deblocking_filter_disabled_flag == 0) {
			sh.slice_loop_filter_across_slices_enabled_flag = r.ReadBit()
		}
	}

	if pps.tiles_enabled_flag == 1 || pps.entropy_coding_sync_enabled_flag == 1 {
		sh.num_entry_point_offsets = r.ReadUe()
		if sh.num_entry_point_offsets > 0 {
			sh.offset_len_minus1 = r.ReadUe()
			sh.entry_point_offset_minus1 = make([]uint32, sh.num_entry_point_offsets)
			for i := uint32(0); i < sh.num_entry_point_offsets; i++ {
				sh.entry_point_offset_minus1[i] = r.ReadUint32(int(sh.offset_len_minus1) + 1)
			}
		}
	}

	if pps.slice_segment_header_extension_present_flag == 1 {
		sh.slice_segment_header_extension_length = r.ReadUe()
		sh.slice_segment_header_extension_data_byte = make([]uint8, sh.slice_segment_header_extension_length)
		for i := uint32(0); i < sh.slice_segment_header_extension_length; i++ {
			sh.slice_segment_header_extension_data_byte[i] = r.ReadUint8(8)
		}
	}

	return nil
}
