// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
)

// config holds the parser CLI's runtime settings.
type config struct {
	Input  string    `json:"input"`  // Annex-B elementary stream file to parse
	Listen string    `json:"listen"` // RTP/RTCP listen address; not read by the hevcparse command
	Log    LogConfig `json:"log"`    // logging configuration
}

func (c *config) initFlags() {
	flag.StringVar(&c.Input, "input", "",
		"Set the Annex-B elementary stream file to parse")
	flag.StringVar(&c.Listen, "listen", ":0",
		"Set the local RTP/RTCP address (not read by hevcparse)")

	c.Log.initFlags()
}
