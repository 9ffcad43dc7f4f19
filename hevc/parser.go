// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import "github.com/cnotch/hevcparser/bits"

// Status is the outcome of a ParseVideoData call.
type Status int

const (
	// StatusOk means the packet was framed and every NAL unit it
	// contained was handled (parsed, or silently skipped if its type is
	// not one this package understands).
	StatusOk Status = iota
	// StatusRuntimeError means the packet held no start code, an
	// RBSP-extraction failure aborted the packet before all of its NAL
	// units could be visited, or a parameter set or slice header failed
	// to parse (which does not abort the packet).
	StatusRuntimeError
)

// SequenceCallback receives the video format summary at the end of a
// ParseVideoData call in which a slice header activated an SPS: the first
// activation, a switch to a different SPS id, or an SPS whose picture
// dimensions differ from the ones last seen. Parsing an SPS NAL unit on
// its own does not invoke it.
type SequenceCallback func(format *VideoFormat)

// ParserCore holds the parameter-set tables and per-sequence state that
// persist across packets. It is not safe for concurrent use: a single
// instance processes one input byte stream one packet at a time via
// ParseVideoData, matching the underlying NAL stream's own ordering
// requirements.
type ParserCore struct {
	vps [HEVC_MAX_VPS_COUNT]*H265RawVPS
	sps [HEVC_MAX_SPS_COUNT]*H265RawSPS
	pps [HEVC_MAX_PPS_COUNT]*H265RawPPS

	activeVpsID int
	activeSpsID int
	activePpsID int
	haveActive  bool

	poc pocState

	// newSpsActivated is raised the moment a slice header activates an
	// SPS different from the one currently active, or one whose picture
	// dimensions differ from picWidth/picHeight, and read (then
	// cleared) at the end of ParseVideoData: the format summary it drives
	// is derived from whatever is in the active SPS's table slot at that
	// point, so a second parameter-set NAL for the same id later in the
	// same packet is reflected in the callback payload.
	newSpsActivated bool

	// picWidth/picHeight are the active SPS's luma dimensions the last
	// time a slice header was parsed, kept only for change detection: a
	// change raises newSpsActivated.
	picWidth  uint16
	picHeight uint16

	// lastIndependentSliceHeader is the most recently parsed independent
	// slice segment header of the picture currently being decoded; it
	// supplies the fields a dependent slice segment inherits.
	lastIndependentSliceHeader *H265RawSliceSegmentHeader

	// sliceParsedInPacket gates slice-segment parsing to the first slice
	// NAL unit found in each call to ParseVideoData. A new picture is
	// detected at packet boundaries rather than by slice_segment_address
	// or first_slice_segment_in_pic_flag, so a caller that places more
	// than one picture's slices in a single packet will only see the
	// first; this mirrors the boundary this package's reference parser
	// uses and is a known limitation rather than an oversight.
	sliceParsedInPacket bool

	format *VideoFormat

	// OnSequence, if set, is called with the new format summary at the
	// end of every ParseVideoData call that raised newSpsActivated.
	OnSequence SequenceCallback
}

// NewParserCore returns a ParserCore ready to process the first packet
// of a new HEVC elementary stream.
func NewParserCore() *ParserCore {
	return &ParserCore{activeVpsID: -1, activeSpsID: -1, activePpsID: -1}
}

// ActiveFormat returns the video format summary derived from the
// currently active SPS, or nil if no SPS has activated yet.
func (p *ParserCore) ActiveFormat() *VideoFormat {
	return p.format
}

// ParseVideoData frames packet into NAL units and parses each one that
// this package understands, updating the parameter-set tables and POC
// state as it goes.
//
// A packet with no start code returns StatusRuntimeError and
// ErrNotFound. An RBSP-extraction failure aborts the rest of the packet
// and returns StatusRuntimeError; a failure inside an individual
// parameter set or slice header is returned in err (the last such
// failure wins) with StatusRuntimeError but does not abort the packet,
// since sub-parser failures are defined to be best-effort (the picture
// they describe simply cannot be used, and parsing continues onto the
// next NAL unit).
func (p *ParserCore) ParseVideoData(packet []byte) (status Status, err error) {
	framer := NewNalFramer(packet)
	p.sliceParsedInPacket = false

loop:
	for {
		nal, state := framer.Next()
		if state == FramerNotFound {
			// only the first call can report this: every later call
			// starts at the start code the previous call found.
			return StatusRuntimeError, ErrNotFound
		}

		if len(nal) < 2 {
			// too short to even hold a NAL unit header; skip it.
		} else {
			if _, rerr := ExtractRBSP(nal); rerr != nil {
				err = rerr
				break loop
			}
			nalUnitType := (nal[0] >> 1) & 0x3f
			if perr := p.dispatch(nalUnitType, nal); perr != nil {
				err = perr
			}
		}

		if state == FramerEof {
			break loop
		}
	}

	p.raiseSequenceChange()

	if err != nil {
		return StatusRuntimeError, err
	}
	return StatusOk, nil
}

// raiseSequenceChange fires OnSequence once at packet end if a slice
// header activated a new SPS anywhere during the packet, reading
// whichever SPS currently occupies that id's table slot.
func (p *ParserCore) raiseSequenceChange() {
	if !p.newSpsActivated {
		return
	}
	p.newSpsActivated = false

	sps := p.sps[p.activeSpsID]
	if sps == nil {
		return
	}
	p.format = DeriveVideoFormat(sps)
	if p.OnSequence != nil {
		p.OnSequence(p.format)
	}
}

func (p *ParserCore) dispatch(nalUnitType uint8, nal []byte) error {
	switch {
	case nalUnitType == NalVps:
		return p.parseVps(nal)
	case nalUnitType == NalSps:
		return p.parseSps(nal)
	case nalUnitType == NalPps:
		return p.parsePps(nal)
	case nalUnitType <= NalRsvVcl31:
		if p.sliceParsedInPacket {
			return nil
		}
		p.sliceParsedInPacket = true
		return p.parseSliceSegment(nalUnitType, nal)
	default:
		// AUD, EOS, EOB, filler data, SEI and every reserved/unspecified
		// type are outside this package's CORE scope; silently skipped.
		return nil
	}
}

func (p *ParserCore) parseVps(nal []byte) error {
	vps := new(H265RawVPS)
	if err := vps.Decode(nal); err != nil {
		return err
	}
	if int(vps.Vps_video_parameter_set_id) >= len(p.vps) {
		return newError(KindInvalidFormat, "vps_video_parameter_set_id out of range")
	}
	p.vps[vps.Vps_video_parameter_set_id] = vps
	return nil
}

func (p *ParserCore) parseSps(nal []byte) error {
	sps := new(H265RawSPS)
	if err := sps.Decode(nal); err != nil {
		return err
	}
	if int(sps.sps_seq_parameter_set_id) >= len(p.sps) {
		return newError(KindInvalidFormat, "sps_seq_parameter_set_id out of range")
	}
	p.sps[sps.sps_seq_parameter_set_id] = sps
	return nil
}

func (p *ParserCore) parsePps(nal []byte) error {
	pps := new(H265RawPPS)
	if err := pps.Decode(nal); err != nil {
		return err
	}
	if int(pps.pps_pic_parameter_set_id) >= len(p.pps) {
		return newError(KindInvalidFormat, "pps_pic_parameter_set_id out of range")
	}
	p.resolvePpsScalingList(pps)
	p.pps[pps.pps_pic_parameter_set_id] = pps
	return nil
}

// resolvePpsScalingList finishes what pps.Decode could not: it has no
// access to the SPS a PPS references, so the chroma_format_idc==3
// matrix copy and the "no data, inherit the SPS's list" case both wait
// until here, where the referenced SPS's table slot is reachable.
func (p *ParserCore) resolvePpsScalingList(pps *H265RawPPS) {
	if int(pps.pps_seq_parameter_set_id) >= len(p.sps) {
		return
	}
	sps := p.sps[pps.pps_seq_parameter_set_id]
	if sps == nil {
		return
	}

	if pps.pps_scaling_list_data_present_flag == 1 {
		if pps.scaling_list != nil {
			finishScalingList(pps.scaling_list, sps.chroma_format_idc)
		}
		return
	}

	if sps.scaling_list != nil {
		inherited := *sps.scaling_list
		pps.scaling_list = &inherited
	}
}

func (p *ParserCore) parseSliceSegment(nalUnitType uint8, nal []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(KindInvalidFormat, "slice segment header runs past the end of its RBSP")
		}
	}()

	rbsp, err := ExtractRBSP(nal)
	if err != nil {
		return err
	}
	if len(rbsp) < 3 {
		return newError(KindInvalidFormat, "slice segment too short")
	}

	r := bits.NewReader(rbsp)

	// Peek just enough to resolve which PPS/SPS are in play before
	// committing to the full header parse; the NAL unit header and
	// first_slice_segment_in_pic_flag/no_output_of_prior_pics_flag cost
	// nothing to re-read inside decode().
	probe := bits.NewReader(rbsp)
	var hdr H265RawNALUnitHeader
	if err := hdr.decode(probe); err != nil {
		return err
	}
	probe.ReadBit() // first_slice_segment_in_pic_flag
	if nalUnitType >= NalBlaWLp && nalUnitType <= NalIrapVcl23 {
		probe.ReadBit() // no_output_of_prior_pics_flag
	}
	ppsID := probe.ReadUe8()

	if int(ppsID) >= len(p.pps) || p.pps[ppsID] == nil {
		return newError(KindInvalidFormat, "reference to undecoded PPS")
	}
	pps := p.pps[ppsID]

	if int(pps.pps_seq_parameter_set_id) >= len(p.sps) || p.sps[pps.pps_seq_parameter_set_id] == nil {
		return newError(KindInvalidFormat, "reference to undecoded SPS")
	}
	sps := p.sps[pps.pps_seq_parameter_set_id]

	if !p.haveActive || p.activeSpsID != int(pps.pps_seq_parameter_set_id) {
		p.activeSpsID = int(pps.pps_seq_parameter_set_id)
		p.activeVpsID = int(sps.sps_video_parameter_set_id)
		p.haveActive = true
		p.newSpsActivated = true
	}
	p.activePpsID = int(ppsID)

	if p.picWidth != sps.pic_width_in_luma_samples || p.picHeight != sps.pic_height_in_luma_samples {
		p.picWidth = sps.pic_width_in_luma_samples
		p.picHeight = sps.pic_height_in_luma_samples
		p.newSpsActivated = true
	}

	sh := new(H265RawSliceSegmentHeader)
	if err := sh.decode(r, nalUnitType, pps, sps, p.lastIndependentSliceHeader, &p.poc); err != nil {
		return err
	}

	if sh.dependent_slice_segment_flag == 0 {
		p.lastIndependentSliceHeader = sh
	}

	return nil
}
