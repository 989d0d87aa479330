// Copyright (c) 2024 the mandos authors

package main

import (
	logpkg "github.com/echa/log"
	"github.com/vmscenario/mandos/mandos"
)

var log = logpkg.NewLogger("MAIN")

func initLogging() {
	var lvl logpkg.Level
	switch {
	case vtrace:
		lvl = logpkg.LevelTrace
	case vdebug:
		lvl = logpkg.LevelDebug
	case verbose:
		lvl = logpkg.LevelInfo
	default:
		lvl = logpkg.LevelWarn
	}
	log.SetLevel(lvl)
	mandos.UseLogger(log)
}
