// Package errors defines the closed set of compile-time and runtime error
// kinds the YSETL pipeline can raise. The shape (a typed error carrying an
// optional source Location, rendered as a "(line N, col M)" suffix) follows the
// teacher's SentraError; here it is additionally wrapped with
// github.com/pkg/errors at the point of creation so a %+v format verb prints
// a stack trace in debug builds without the compiler or VM ever inspecting
// it themselves.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies one of the error categories spec.md §7 enumerates.
type Kind string

const (
	// Compile-time kinds.
	UndefinedIdent Kind = "UndefinedIdent"
	InvalidLHS     Kind = "InvalidLHS"
	Unsupported    Kind = "Unsupported"
	TooManySymbols Kind = "TooManySymbols"

	// Runtime kinds.
	TypeErrorKind  Kind = "TypeError"
	IndexErrorKind Kind = "IndexError"
	DivByZero      Kind = "DivByZero"
	UninitVar      Kind = "UninitVar"
	ArityError     Kind = "ArityError"
	StackOverflow  Kind = "StackOverflow"
	EmptyStack     Kind = "EmptyStack"
)

// Location is the optional source position a YsetlError may carry. Only At
// attaches one; the compiler and the VM build their errors with New, so the
// errors they return carry no Location.
type Location struct {
	Line   int
	Column int
}

// YsetlError is the error type returned by the compiler and the VM. There is
// no recovery mechanism at the language level: the propagation policy is
// "abort the current program".
type YsetlError struct {
	Kind     Kind
	Message  string
	Location *Location
}

func (e *YsetlError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Kind, e.Message))
	if e.Location != nil {
		sb.WriteString(fmt.Sprintf(" (line %d, col %d)", e.Location.Line, e.Location.Column))
	}
	return sb.String()
}

// New builds a YsetlError of the given kind, wrapped with a stack trace.
func New(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&YsetlError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// At is New with an attached source location.
func At(kind Kind, loc Location, format string, args ...interface{}) error {
	return errors.WithStack(&YsetlError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: &loc,
	})
}

// Is reports whether err is a YsetlError of the given kind, unwrapping any
// github.com/pkg/errors stack-trace wrapper in the process.
func Is(err error, kind Kind) bool {
	return As(err) != nil && As(err).Kind == kind
}

// As unwraps err to its underlying *YsetlError, or nil if it isn't one.
func As(err error) *YsetlError {
	for err != nil {
		if e, ok := err.(*YsetlError); ok {
			return e
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return nil
		}
		err = cause.Cause()
	}
	return nil
}
