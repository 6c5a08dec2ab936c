// Package exitcode defines the documented process exit codes for guppi.
//
// The routing path intentionally shares NotFound with "tool not installed":
// from the shell's point of view both mean "nothing to run".
package exitcode

const (
	// OK is the success exit code.
	OK = 0

	// NotFound is returned when a tool or source is absent where required,
	// including the router failing to locate a guppi-<name> executable.
	NotFound = 1

	// Validation is returned when an explicit registration or init action
	// fails its strictness checks (duplicate source name, missing
	// [tool.guppi.source] marker, invalid tool name, ...).
	Validation = 2

	// Subprocess is returned when a delegated uv or git invocation fails,
	// including the binary itself being missing from PATH.
	Subprocess = 3
)
