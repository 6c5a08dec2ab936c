// Package router delegates unrecognized subcommands to separately installed
// tool executables.
//
// The sole contract between guppi and a tool is the executable naming
// convention: a tool named "demo" ships a `guppi-demo` binary somewhere on
// PATH. The router derives that name, looks it up, and hands the process
// over, forwarding arguments, standard streams, and the exit code untouched.
package router

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"guppi/internal/exitcode"
	"guppi/internal/logger"
)

// Prefix is the executable naming convention shared by every guppi tool.
const Prefix = "guppi-"

// Seams for tests; production code never reassigns these.
var (
	stderr io.Writer = os.Stderr

	lookPath = exec.LookPath

	runTool = func(path string, args []string) (int, error) {
		cmd := exec.Command(path, args...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		err := cmd.Run()
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return exitErr.ExitCode(), nil
			}
			return 0, err
		}
		return 0, nil
	}
)

// CommandName derives the conventional executable name for a tool. Pure and
// deterministic: the same tool name always maps to the same executable name.
func CommandName(tool string) string {
	return Prefix + tool
}

// Route runs the executable backing tool with the given arguments, inheriting
// the current process's standard streams, and returns the exit code the
// invoking process should terminate with.
//
// A missing executable is terminal: the user gets the convention-derived name
// that was searched for plus an install hint, and the exit code is NotFound.
// There is no retry and no fallback into the built-in CLI.
func Route(tool string, args []string) int {
	name := CommandName(tool)

	path, err := lookPath(name)
	if err != nil {
		fmt.Fprintf(stderr, "Error: Tool '%s' not found (no %s on PATH)\n", tool, name)
		fmt.Fprintf(stderr, "Install it with: guppi tool install %s --from <path>\n", tool)
		return exitcode.NotFound
	}

	logger.Debug("[DEBUG] Routing to %s with args %v\n", path, args)
	code, err := runTool(path, args)
	if err != nil {
		fmt.Fprintf(stderr, "Error running %s: %v\n", name, err)
		return exitcode.Subprocess
	}
	return code
}
