package main

import (
	"errors"
	"fmt"
	"os"
)

const (
	exitGeneral   = 1
	exitConfig    = 2
	exitDBConnect = 4
)

// exitError carries the process exit code for a failed command.
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

func configError(msg string, err error) error {
	return &exitError{code: exitConfig, msg: msg, err: err}
}

func connectError(msg string, err error) error {
	return &exitError{code: exitDBConnect, msg: msg, err: err}
}

// exitWithError prints err and exits with its code.
func exitWithError(err error) {
	var e *exitError
	if errors.As(err, &e) {
		fmt.Fprintln(os.Stderr, "Error:", e.Error())
		os.Exit(e.code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(exitGeneral)
}
