// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"strings"

	cfg "github.com/cnotch/loader"
	"github.com/cnotch/xlog"
)

// Service identity, used in the default log file name and the
// environment variable prefix.
const (
	Vendor  = "CAOHONGJU"
	Name    = "hevcparse"
	Version = "V1.0.0"
)

var globalC *config

// InitConfig loads the JSON config file (created on first run), then
// environment variables, then command-line flags, in that increasing
// order of precedence, and initializes the global logger.
func InitConfig() {
	exe, err := os.Executable()
	if err != nil {
		xlog.Panic(err.Error())
	}

	configPath := exe + ".conf"

	globalC = new(config)
	globalC.initFlags()

	if err := cfg.Load(globalC,
		&cfg.JSONLoader{Path: configPath, CreatedIfNonExsit: true},
		&cfg.EnvLoader{Prefix: strings.ToUpper(Name)},
		&cfg.FlagLoader{}); err != nil {
		xlog.Panic(err.Error())
	}

	globalC.Log.initLogger()
}

// Input returns the path of the Annex-B elementary stream file to parse.
func Input() string {
	if globalC == nil {
		return ""
	}
	return globalC.Input
}

// Listen returns the configured local RTP/RTCP address. The hevcparse
// command does not read it.
func Listen() string {
	if globalC == nil {
		return ":0"
	}
	return globalC.Listen
}
