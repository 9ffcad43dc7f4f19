// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

// NulType extracts nal_unit_type from the first byte of a NAL unit.
func NulType(nt byte) byte {
	return (nt >> 1) & 0x3f
}

// IsParameterSet reports whether nalUnitType identifies a VPS, SPS or
// PPS NAL unit.
func IsParameterSet(nalUnitType byte) bool {
	return nalUnitType == NalVps || nalUnitType == NalSps || nalUnitType == NalPps
}

// IsSlice reports whether nalUnitType identifies a coded slice segment
// NAL unit (VCL NAL unit types 0 through 31).
func IsSlice(nalUnitType byte) bool {
	return nalUnitType <= NalRsvVcl31
}

// IsIRAP reports whether nalUnitType identifies an intra random access
// point picture (BLA, IDR or CRA).
func IsIRAP(nalUnitType byte) bool {
	return nalUnitType >= NalBlaWLp && nalUnitType <= NalIrapVcl23
}
