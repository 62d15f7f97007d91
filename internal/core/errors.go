package core

import (
	"errors"
	"fmt"
	"strconv"
)

// Predefined errors returned by query construction and execution.
var (
	// ErrInvalidOperator is returned when a condition uses an operator outside the supported set.
	ErrInvalidOperator = errors.New("invalid operator")
	// ErrInvalidArgument is returned when a value cannot be placed in the argument slot it was given to.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoExecutor is returned when a standalone query is asked to execute.
	ErrNoExecutor = errors.New("query is not bound to a database")
	// ErrUnsupportedDialect is returned when an unsupported database dialect is specified.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
	// ErrNoRows is returned when a query that expects rows returns no results.
	ErrNoRows = errors.New("no rows in result set")
)

// InvalidOperatorError reports a condition operator outside
// =, !=, <, <=, >, >=, BETWEEN, IN, NOT IN, LIKE, NOT LIKE
// or a group combinator other than AND/OR.
type InvalidOperatorError struct {
	Operator string
}

func (e *InvalidOperatorError) Error() string {
	return "invalid operator " + strconv.Quote(e.Operator)
}

// Is reports whether target is ErrInvalidOperator.
func (e *InvalidOperatorError) Is(target error) bool {
	return target == ErrInvalidOperator
}

// InvalidArgumentError reports an argument that does not fit its slot.
// Position is 1-based; zero means the error is not tied to one argument.
type InvalidArgumentError struct {
	Func     string
	Position int
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("invalid argument %d to %s: %s", e.Position, e.Func, e.Reason)
	}
	return fmt.Sprintf("invalid argument to %s: %s", e.Func, e.Reason)
}

// Is reports whether target is ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArg(fn string, pos int, format string, args ...any) error {
	return &InvalidArgumentError{Func: fn, Position: pos, Reason: fmt.Sprintf(format, args...)}
}

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
