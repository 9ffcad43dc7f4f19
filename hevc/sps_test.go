// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hevc

import (
	"testing"
)

func TestH265RawSPS_DecodeString(t *testing.T) {
	tests := []struct {
		name    string
		b64     string
		wantW   int
		wantH   int
		wantFR  float64
		wantErr bool
	}{
		{
			"base64_1",
			"QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC",
			1280,
			720,
			float64(24000) / float64(1001),
			false,
		},
		{
			"base64_2",
			"QgEBBAgAAAMAnQgAAAMAAF2wAoCALRZZWaSTK4BAAAADAEAAAAeC",
			1280,
			720,
			30,
			false,
		},
		{
			"tpl500-265",
			"AAAAAUIBAQFgAAADAAADAAADAAADAJagAWggBln3ja5JMmuWMAgAAAMACAAAAwB4QA==",
			2880,
			1624, // coded height; the conformance window crops it to 1620 for display

			15,
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sps := &H265RawSPS{}
			if err := sps.DecodeString(tt.b64); (err != nil) != tt.wantErr {
				t.Errorf("RawSPS.Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if sps.Width() != tt.wantW {
				t.Errorf("RawSPS.Parse() Width = %v, wantWidth %v", sps.Width(), tt.wantW)
			}
			if sps.Height() != tt.wantH {
				t.Errorf("RawSPS.Parse() Height = %v, wantHeight %v", sps.Height(), tt.wantH)
			}
			if sps.FrameRate() != tt.wantFR {
				t.Errorf("RawSPS.Parse() FrameRate = %v, wantFrameRate %v", sps.FrameRate(), tt.wantFR)
			}
		})
	}
}

func TestSeedDefaultScalingList(t *testing.T) {
	sl := &H265RawScalingList{}
	seedDefaultScalingList(sl)

	for matrixId := 0; matrixId < 6; matrixId++ {
		if sl.ScalingListDcCoef[0][matrixId] != 16 || sl.ScalingListDcCoef[1][matrixId] != 16 {
			t.Errorf("ScalingListDcCoef[_][%d] = %v/%v, want 16/16", matrixId,
				sl.ScalingListDcCoef[0][matrixId], sl.ScalingListDcCoef[1][matrixId])
		}
		for i := 0; i < 16; i++ {
			if sl.ScalingList[0][matrixId][i] != 16 {
				t.Errorf("ScalingList[0][%d][%d] = %v, want 16", matrixId, i, sl.ScalingList[0][matrixId][i])
			}
		}
	}

	if sl.ScalingList[2][1][7] != defaultScalingListIntra[7] {
		t.Errorf("ScalingList[2][1][7] = %v, want %v (intra default)", sl.ScalingList[2][1][7], defaultScalingListIntra[7])
	}
	if sl.ScalingList[3][4][7] != defaultScalingListInter[7] {
		t.Errorf("ScalingList[3][4][7] = %v, want %v (inter default)", sl.ScalingList[3][4][7], defaultScalingListInter[7])
	}
}

func TestFinishScalingList(t *testing.T) {
	sl := &H265RawScalingList{}
	seedDefaultScalingList(sl)
	sl.ScalingList[2][1][0] = 99
	sl.ScalingListDcCoef[0][1] = 77

	finishScalingList(sl, 1) // 4:2:0, no-op
	if sl.ScalingList[3][1][0] == 99 {
		t.Error("finishScalingList copied sizeId 2 into sizeId 3 for a non-4:4:4 chroma format")
	}

	finishScalingList(sl, 3) // 4:4:4
	if sl.ScalingList[3][1][0] != 99 {
		t.Errorf("ScalingList[3][1][0] = %v, want 99 copied from ScalingList[2][1][0]", sl.ScalingList[3][1][0])
	}
	if sl.ScalingListDcCoef[1][1] != 77 {
		t.Errorf("ScalingListDcCoef[1][1] = %v, want 77 copied from ScalingListDcCoef[0][1]", sl.ScalingListDcCoef[1][1])
	}
}

func Benchmark_SPSDecode(b *testing.B) {
	spsstr := "QgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3ACQgEBAWAAAAMAkAAAAwAAAwBdoAKAgC0WWVmkkyuAQAAA+kAAF3AC"

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			sps := &H265RawSPS{}
			_ = sps.DecodeString(spsstr)
		}
	})
}
