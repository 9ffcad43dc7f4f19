// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"testing"

	"github.com/cnotch/hevcparser/bits"
	"github.com/stretchr/testify/assert"
)

// buildIdrSliceHeader hand-assembles the two-byte nal_unit_header plus a
// minimal independent slice_segment_header() for an IDR_W_RADL first
// slice: first_slice_segment_in_pic_flag=1, no_output_of_prior_pics_flag=0,
// slice_pic_parameter_set_id=ue(0), slice_type=ue(2) (I), slice_qp_delta=se(0).
// Every PPS/SPS flag this path consults (num_extra_slice_header_bits,
// output_flag_present_flag, separate_colour_plane_flag,
// sample_adaptive_offset_enabled_flag, the chroma-qp-offset and
// deblocking-override flags, tiles/entropy-sync, slice-header-extension)
// is left at its Go zero value, so an empty H265RawPPS/H265RawSPS matches
// the bits encoded here exactly.
func buildIdrSliceHeader() []byte {
	return []byte{0x26, 0x01, 0xae}
}

func TestH265RawSliceSegmentHeader_Decode_IdrFirstSlice(t *testing.T) {
	pps := &H265RawPPS{}
	sps := &H265RawSPS{}
	poc := &pocState{}

	r := bits.NewReader(buildIdrSliceHeader())
	sh := &H265RawSliceSegmentHeader{}
	err := sh.decode(r, NalIdrWRadl, pps, sps, nil, poc)
	assert.NoError(t, err)

	assert.Equal(t, uint8(1), sh.first_slice_segment_in_pic_flag)
	assert.Equal(t, uint8(0), sh.no_output_of_prior_pics_flag)
	assert.Equal(t, uint8(0), sh.slice_pic_parameter_set_id)
	assert.Equal(t, uint8(0), sh.dependent_slice_segment_flag)
	assert.Equal(t, uint8(SliceI), sh.slice_type)
	assert.Equal(t, uint8(1), sh.pic_output_flag)
	assert.Equal(t, int32(0), sh.slice_qp_delta)

	// IDR resets POC to 0 and seeds the running state for the sequence.
	assert.Equal(t, int32(0), sh.PicOrderCntVal)
	assert.True(t, poc.havePrev)
	assert.Equal(t, uint32(0), poc.prevPocLsb)
	assert.Equal(t, int32(0), poc.prevPocMsb)
}

func TestH265RawSliceSegmentHeader_Decode_DependentSliceInheritsPrev(t *testing.T) {
	// SPEC_FULL.md §8 scenario 5: a dependent slice segment inherits every
	// field from the independent slice segment header of the same
	// picture, keeping only its own address/id/flag bits.
	pps := &H265RawPPS{
		dependent_slice_segments_enabled_flag: 1,
	}
	// ctbSizeY=8 (log2_min=0 => min 8, log2_diff=0 => no enlargement);
	// a 16x16 picture is 2x2 CTBs, so picSizeInCtbsY=4 and
	// bitsSliceSegmentAddress=ceil(log2(4))=2.
	sps := &H265RawSPS{
		pic_width_in_luma_samples:  16,
		pic_height_in_luma_samples: 16,
	}
	poc := &pocState{}

	r := bits.NewReader(buildIdrSliceHeader())
	prev := &H265RawSliceSegmentHeader{}
	err := prev.decode(r, NalIdrWRadl, pps, sps, nil, poc)
	assert.NoError(t, err)
	assert.Equal(t, uint8(SliceI), prev.slice_type)

	// first_slice_segment_in_pic_flag=0, no_output_of_prior_pics_flag=0,
	// slice_pic_parameter_set_id=ue(0), dependent_slice_segment_flag=1,
	// slice_segment_address=u(2)=0.
	depBits := []byte{
		0x26, 0x01, // nal_unit_header (same as before)
		0x30,
	}
	r2 := bits.NewReader(depBits)
	dep := &H265RawSliceSegmentHeader{}
	err = dep.decode(r2, NalIdrWRadl, pps, sps, prev, poc)
	assert.NoError(t, err)

	assert.Equal(t, uint8(0), dep.first_slice_segment_in_pic_flag)
	assert.Equal(t, uint8(1), dep.dependent_slice_segment_flag)
	assert.Equal(t, uint32(0), dep.slice_segment_address)
	// Inherited from prev, not re-parsed.
	assert.Equal(t, uint8(SliceI), dep.slice_type)
	assert.Equal(t, int32(0), dep.slice_qp_delta)
}
