package main

import (
	"os"

	"guppi/cmd"
	"guppi/internal/router"
)

// main is the program entry point.
//
// guppi is a plugin framework: the binary itself only carries the management
// commands (tool install/search, source add/update, self-update), while every
// actual tool is a separately installed `guppi-<name>` executable found on
// PATH. Invocations therefore split into two dispatch paths:
//
//   - first argument names a built-in command group -> cobra handles it
//   - anything else is treated as a tool name and delegated to the matching
//     `guppi-<name>` executable, forwarding the remaining arguments and the
//     child's exit code unchanged
//
// The split happens here, before cobra ever sees the arguments, so tool flags
// are never parsed (or mangled) by the management CLI. Once a routing attempt
// is made there is no fallback into the built-in commands: a missing
// executable is a terminal error for the invocation.
func main() {
	args := os.Args[1:]
	if len(args) > 0 && !cmd.IsBuiltin(args[0]) {
		os.Exit(router.Route(args[0], args[1:]))
	}
	cmd.Execute()
}
