// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command hevcparse parses an Annex-B HEVC elementary stream file and
// logs the video format derived from each active sequence.
package main

import (
	"io/ioutil"
	"os"

	"github.com/cnotch/xlog"

	"github.com/cnotch/hevcparser/config"
	"github.com/cnotch/hevcparser/hevc"
)

func main() {
	config.InitConfig()

	input := config.Input()
	if input == "" {
		xlog.L().Error("no input specified; pass -input <file>")
		os.Exit(2)
	}

	data, err := ioutil.ReadFile(input)
	if err != nil {
		xlog.L().Errorf("reading %s: %s", input, err.Error())
		os.Exit(1)
	}

	core := hevc.NewParserCore()
	core.OnSequence = func(format *hevc.VideoFormat) {
		xlog.L().Infof("sequence change: %s %dx%d (display %dx%d) chroma=%d bitdepth=%d/%d progressive=%v",
			format.CodecName,
			format.CodedWidth, format.CodedHeight,
			format.DisplayWidth, format.DisplayHeight,
			format.ChromaFormatIdc,
			format.BitDepthLumaMinus8+8, format.BitDepthChromaMinus8+8,
			format.ProgressiveSequence)
	}

	status, err := core.ParseVideoData(data)
	if err != nil {
		xlog.L().Warnf("parse completed with errors: %s", err.Error())
	}
	if status != hevc.StatusOk && err == nil {
		xlog.L().Warn("parse returned a non-ok status with no error detail")
	}

	if format := core.ActiveFormat(); format != nil {
		xlog.L().Infof("final active format: %dx%d", format.CodedWidth, format.CodedHeight)
	} else {
		xlog.L().Warn("no SPS activated; nothing to report")
	}
}
