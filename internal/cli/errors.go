package cli

import (
	"errors"
	"fmt"
)

// Exit codes: 0 ok, 1 error, 2 usage.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// exitErr carries the process exit code alongside the message.
type exitErr struct {
	code int
	msg  string
	hint string
}

func (e *exitErr) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &exitErr{code: exitUsage, msg: fmt.Sprintf(format, args...)}
}

func withHint(err error, hint string) error {
	var e *exitErr
	if errors.As(err, &e) {
		e.hint = hint
		return e
	}
	return &exitErr{code: exitError, msg: err.Error(), hint: hint}
}

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var e *exitErr
	if errors.As(err, &e) {
		return e.code
	}
	return exitError
}
