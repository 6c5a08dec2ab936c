package logger

import (
	"github.com/fatih/color" // Colored console output, the only output channel guppi has
)

// Package-level printf-style log functions built on fatih/color. Each level
// gets its own color so the interleaved output of subprocess wrappers stays
// readable on a terminal.

// Info logs informational messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs warnings in bright magenta. Used for tolerated problems such as
// a source declaring an unknown schema version.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs errors in red.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs diagnostic messages in cyan when enabled via Init. It defaults
// to a no-op so packages can log unconditionally before Init runs (tests,
// early startup).
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging. Called once from the CLI's
// persistent pre-run hook based on the --debug flag.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
