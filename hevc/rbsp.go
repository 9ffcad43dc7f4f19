// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

// ExtractRBSP converts an EBSP NAL unit payload (start code already
// stripped) into its RBSP form by discarding every emulation_prevention
// three_byte: an 0x03 byte that immediately follows two consecutive
// 0x00 bytes when the next byte (if any) is 0x00, 0x01, 0x02 or 0x03.
//
// It returns KindInvalidFormat if a 00 00 03 sequence is found whose
// trailing byte falls outside that set, since such a sequence could not
// have been produced by a conformant encoder's emulation prevention and
// signals a corrupt or non-HEVC bitstream.
func ExtractRBSP(ebsp []byte) ([]byte, error) {
	rbsp := make([]byte, 0, len(ebsp))
	zeroRun := 0
	for i := 0; i < len(ebsp); i++ {
		b := ebsp[i]
		if zeroRun >= 2 && b == 0x03 {
			if i+1 < len(ebsp) {
				next := ebsp[i+1]
				if next > 0x03 {
					return nil, newError(KindInvalidFormat,
						"emulation_prevention_three_byte followed by invalid byte")
				}
			}
			zeroRun = 0
			continue
		}
		rbsp = append(rbsp, b)
		if b == 0 {
			zeroRun++
		} else {
			zeroRun = 0
		}
	}
	return rbsp, nil
}
