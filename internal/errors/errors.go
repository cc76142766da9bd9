// Package errors provides stack-carrying errors for hopbench's outer
// layers: configuration loading, reporting and the status server.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// maxFrames bounds the captured stack.
const maxFrames = 32

// Error is a failure in an outer layer together with where it happened.
// Failures inside an optimization run use optimization.Error instead.
type Error struct {
	Err     error
	Message string

	// Operation and Component locate the failure, e.g. LoadDocuments in
	// config. Path is the file being read or written, if any.
	Operation string
	Component string
	Path      string

	Stack []string
}

// Error renders "message: key=value, ...: cause", skipping empty parts.
func (e *Error) Error() string {
	var where []string
	for _, kv := range [][2]string{
		{"operation", e.Operation},
		{"component", e.Component},
		{"path", e.Path},
	} {
		if kv[1] != "" {
			where = append(where, kv[0]+"="+kv[1])
		}
	}

	parts := make([]string, 0, 3)
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if len(where) > 0 {
		parts = append(parts, strings.Join(where, ", "))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// WithOperation sets the operation and returns e.
func (e *Error) WithOperation(op string) *Error {
	e.Operation = op
	return e
}

// WithComponent sets the component and returns e.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// WithPath sets the file the error refers to and returns e.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// StackTrace returns the frames captured when e was created, innermost
// first.
func (e *Error) StackTrace() []string {
	return e.Stack
}

// New returns an error with msg and no cause.
func New(msg string) *Error {
	return &Error{Message: msg, Stack: callers()}
}

// Errorf is New with a format string.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Stack: callers()}
}

// Wrap annotates err with msg. The cause stays reachable through Is and
// As. Wrap returns nil when err is nil.
func Wrap(err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, Message: msg, Stack: callers()}
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, Message: fmt.Sprintf(format, args...), Stack: callers()}
}

// callers captures the stack of the constructor's caller, leaving out
// runtime frames and this package.
func callers() []string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return nil
	}

	var stack []string
	frames := runtime.CallersFrames(pcs[:n])
	for more := true; more; {
		var f runtime.Frame
		f, more = frames.Next()
		if strings.Contains(f.File, "runtime/") || strings.HasSuffix(f.File, "internal/errors/errors.go") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s\n\t%s:%d", f.Function, f.File, f.Line))
	}
	return stack
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As is errors.As from the standard library.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// Unwrap is errors.Unwrap from the standard library.
func Unwrap(err error) error { return stderrors.Unwrap(err) }
