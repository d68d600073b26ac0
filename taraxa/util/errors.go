package util

import (
	"fmt"
)

type ErrorHandler func(_ error)

type Predicate = func(caught interface{}) bool

type ErrorString string

func (this ErrorString) Error() string {
	return string(this)
}

// InvariantViolation is the panic payload for broken internal invariants.
// It is never returned as a regular error.
type InvariantViolation struct {
	Msg string
}

func (self InvariantViolation) Error() string {
	return "invariant violation: " + self.Msg
}

func PanicInvariant(format string, args ...interface{}) {
	panic(InvariantViolation{fmt.Sprintf(format, args...)})
}

func SetTo(errPtr *error) ErrorHandler {
	return func(err error) {
		*errPtr = err
	}
}

func CatchInvariantViolation(handlers ...ErrorHandler) Predicate {
	return func(caught interface{}) bool {
		if err, ok := caught.(InvariantViolation); ok {
			for _, handler := range handlers {
				handler(err)
			}
			return true
		}
		return false
	}
}

// Recover only works when deferred directly: defer util.Recover(...).
// Panics not matched by any filter are re-raised.
func Recover(errorFilters ...Predicate) (caught interface{}) {
	if caught = recover(); caught != nil {
		if !AnyMatches(caught, errorFilters...) {
			panic(caught)
		}
	}
	return
}

func AnyMatches(obj interface{}, handlers ...Predicate) bool {
	if len(handlers) == 0 {
		return true
	}
	for _, handler := range handlers {
		if handler(obj) {
			return true
		}
	}
	return false
}
