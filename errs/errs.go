// Package errs defines the error taxonomy shared by the planner, pool,
// executor and sliding window.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure the way a caller needs to branch on it.
type Kind int

const (
	// EmptyIndexes means the planner was called with no cells.
	EmptyIndexes Kind = iota
	// MixedResolutions means the cells passed to the planner span more
	// than one resolution.
	MixedResolutions
	// InvalidCell means a cell failed H3 validity checks.
	InvalidCell
	// NoQueryableTables means no tableset resolution is reachable at or
	// below the target resolution.
	NoQueryableTables
	// MissingQueryPlaceholder means a templated query is missing a
	// required placeholder.
	MissingQueryPlaceholder
	// DatabaseError means the database rejected or failed a query.
	DatabaseError
	// SchedulerFailure means a background task panicked or could not be
	// joined.
	SchedulerFailure
	// HandleConsumed means an AsyncResultHandle was awaited a second time.
	HandleConsumed
)

func (k Kind) String() string {
	switch k {
	case EmptyIndexes:
		return "EmptyIndexes"
	case MixedResolutions:
		return "MixedResolutions"
	case InvalidCell:
		return "InvalidCell"
	case NoQueryableTables:
		return "NoQueryableTables"
	case MissingQueryPlaceholder:
		return "MissingQueryPlaceholder"
	case DatabaseError:
		return "DatabaseError"
	case SchedulerFailure:
		return "SchedulerFailure"
	case HandleConsumed:
		return "HandleConsumed"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type surfaced by this module. It carries a
// Kind so callers can switch on failure category without string matching.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is / errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a bare Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds a bare Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind and message to a lower-level cause, preserving the
// cause's stack via pkg/errors. Wrap returns nil if cause is nil, so it is
// safe to use as `return errs.Wrap(Kind, maybeErr, "...")` at the end of a
// function.
func Wrap(kind Kind, cause error, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: errors.WithStack(cause)}
}

// Is reports whether err is (or wraps) an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
