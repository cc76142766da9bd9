package optimization

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrapped by *Error so callers can use errors.Is.
var (
	// ErrConfiguration reports a referenced problem, optimizer or strategy
	// that has no implementation, or a declared feature missing its
	// required parameter.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnboundStrategy reports an optimizer asking for a generator,
	// variator or crossover that was never resolved for its job.
	ErrUnboundStrategy = errors.New("unbound strategy")

	// ErrBudgetExhausted is returned when an evaluation is requested with no
	// budget left. Well-behaved optimizers check the budget first, so this
	// is a contract violation rather than a termination signal.
	ErrBudgetExhausted = errors.New("budget exhausted")

	// ErrBudgetAccounting reports an evaluator that did not consume exactly
	// one unit of budget.
	ErrBudgetAccounting = errors.New("budget accounting violated")
)

// Error is a failure raised while building or running a job. It wraps one
// of the sentinel kinds above, or the error of a problem hook.
type Error struct {
	Message string
	// Component is the optimizer or problem class that failed and Op the
	// hook or step it was in, e.g. "SA" and "PreProcessing".
	Component string
	Op        string
	Err       error
}

// Error renders "component.op: message: cause", dropping empty parts.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	where := e.Component
	if e.Op != "" {
		if where != "" {
			where += "."
		}
		where += e.Op
	}

	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if where == "" {
		return msg
	}
	return where + ": " + msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation records the hook or step that failed.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent records the class that failed.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// WrapError annotates err with message. It returns nil for a nil err.
func WrapError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Message: message, Err: err}
}

// WrapErrorf is WrapError with a format string.
func WrapErrorf(err error, format string, args ...interface{}) *Error {
	return WrapError(err, fmt.Sprintf(format, args...))
}

// NewConfigurationError returns an error of kind ErrConfiguration.
func NewConfigurationError(format string, args ...interface{}) *Error {
	return WrapErrorf(ErrConfiguration, format, args...)
}

// NewUnboundStrategyError reports that optimizerID asked for strategy
// without it being resolved.
func NewUnboundStrategyError(strategy, optimizerID string) *Error {
	return WrapErrorf(ErrUnboundStrategy, "%s not resolved for optimizer %q", strategy, optimizerID)
}

// IsOptimizationError returns the first *Error in err's chain.
func IsOptimizationError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
