// Copyright (c) 2024 the mandos authors

package mandos

import "github.com/echa/log"

// logger is a package logger initialized with no output filters. The
// package does not log anything by default until a caller opts in with
// UseLogger.
var logger log.Logger = log.Disabled

func init() {
	DisableLog()
}

// DisableLog disables all library log output. This is the default.
func DisableLog() {
	logger = log.Disabled
}

// UseLogger directs package log output at l. Callers (e.g. cmd/mandosctl)
// use this to surface trace-level detail about lowering.
func UseLogger(l log.Logger) {
	logger = l
}
