package main

import (
	"errors"
	"fmt"
)

// Exit codes reported to the scheduler
const (
	exitOK      = 0
	exitFailed  = 1 // the run finished unsuccessfully
	exitCommand = 2 // bad arguments or the process could not start the run
)

// exitError carries the process exit code for a command failure
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *exitError) Unwrap() error { return e.err }

func failed(msg string, err error) error   { return &exitError{code: exitFailed, msg: msg, err: err} }
func badUsage(msg string, err error) error { return &exitError{code: exitCommand, msg: msg, err: err} }

// exitCode maps err to a process exit code; untyped errors are command errors
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return exitCommand
}
