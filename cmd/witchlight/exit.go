package main

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	exitFailure      = 1 // a walkthrough or validation failed
	exitCommandError = 2 // bad arguments, unreadable files
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code    int
	message string
	err     error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *exitError) Unwrap() error { return e.err }

func failWith(code int, message string, err error) *exitError {
	return &exitError{code: code, message: message, err: err}
}

// exitCode defaults to exitFailure for errors without a code.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}
