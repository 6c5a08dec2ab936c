package cmd

import "fmt"

// exitError carries a documented process exit code out of a cobra RunE.
// Execute unwraps it, logs the message unless silent, and exits with code.
type exitError struct {
	code    int
	message string
	silent  bool
}

func (e exitError) Error() string {
	return e.message
}

// fail builds an exitError with a formatted message.
func fail(code int, format string, a ...any) error {
	return exitError{code: code, message: fmt.Sprintf(format, a...)}
}

// failSilent exits with code without logging anything further, for commands
// that already reported their errors line by line.
func failSilent(code int) error {
	return exitError{code: code, silent: true}
}
