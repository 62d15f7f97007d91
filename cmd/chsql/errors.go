package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes.
const (
	ExitGeneral    = 1
	ExitConfig     = 2
	ExitDefinition = 3
	ExitDBConnect  = 4
	ExitQuery      = 5
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func configError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Err: err}
}

func definitionError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitDefinition, Message: msg, Err: err}
}

func dbConnectError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitDBConnect, Message: msg, Err: err}
}

func queryError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitQuery, Message: msg, Err: err}
}

// exitWithError prints the error and exits with the appropriate code.
func exitWithError(err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", exitErr.Error())
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(ExitGeneral)
}
