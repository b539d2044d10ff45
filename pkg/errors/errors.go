// Package errors defines the coded errors every tracetube stage returns.
//
// A [Code] names what went wrong in a stable, machine-readable form; the CLI
// prints it and the HTTP API puts it in the error envelope. Each code belongs
// to a [Kind] that groups codes by who is at fault: validation codes mean the
// trace itself is malformed, parameter codes mean a caller passed a bad
// shape or size.
//
//	err := errors.New(errors.ErrCodeCycleDetected, "the graph contains undirected cycles")
//	if errors.Is(err, errors.ErrCodeCycleDetected) {
//	    // reject the trace
//	}
//
//	err = errors.Wrap(errors.ErrCodeInvalidInput, cause, "decode trace %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

// Point attribute codes.
const (
	ErrCodeMissingAttribute     Code = "MISSING_ATTRIBUTE"
	ErrCodeInvalidAttributeType Code = "INVALID_ATTRIBUTE_TYPE"
	ErrCodeInvalidShape         Code = "INVALID_SHAPE"
	ErrCodeEmptyAttribute       Code = "EMPTY_ATTRIBUTE"
	ErrCodeNonRealElement       Code = "NON_REAL_ELEMENT"
	ErrCodeWrongDimensionality  Code = "WRONG_DIMENSIONALITY"
	ErrCodeDuplicateCoordinate  Code = "DUPLICATE_COORDINATE"
)

// Topology codes.
const (
	ErrCodeEmptyGraph        Code = "EMPTY_GRAPH"
	ErrCodeInvalidCover      Code = "INVALID_COVER"
	ErrCodeCycleDetected     Code = "CYCLE_DETECTED"
	ErrCodeDisconnectedGraph Code = "DISCONNECTED_GRAPH"
)

// Codes for rendering, sampling and I/O.
const (
	ErrCodeInvalidSampleShape Code = "INVALID_SAMPLE_SHAPE"
	ErrCodeInvalidSampleSize  Code = "INVALID_SAMPLE_SIZE"

	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes by the party responsible for the failure.
type Kind int

const (
	KindInternal    Kind = iota // bug or infrastructure failure
	KindValidation              // the trace breaks a structural precondition
	KindParameter               // a numeric argument is out of range
	KindInput                   // the input could not be read or decoded
	KindNotFound
	KindUnsupported
)

var kinds = map[Code]Kind{
	ErrCodeMissingAttribute:     KindValidation,
	ErrCodeInvalidAttributeType: KindValidation,
	ErrCodeInvalidShape:         KindValidation,
	ErrCodeEmptyAttribute:       KindValidation,
	ErrCodeNonRealElement:       KindValidation,
	ErrCodeWrongDimensionality:  KindValidation,
	ErrCodeDuplicateCoordinate:  KindValidation,
	ErrCodeEmptyGraph:           KindValidation,
	ErrCodeInvalidCover:         KindValidation,
	ErrCodeCycleDetected:        KindValidation,
	ErrCodeDisconnectedGraph:    KindValidation,

	ErrCodeInvalidSampleShape: KindParameter,
	ErrCodeInvalidSampleSize:  KindParameter,

	ErrCodeInvalidInput:  KindInput,
	ErrCodeInvalidFormat: KindInput,
	ErrCodeInvalidPath:   KindInput,

	ErrCodeNotFound:     KindNotFound,
	ErrCodeFileNotFound: KindNotFound,

	ErrCodeUnsupported: KindUnsupported,
}

// Kind returns the kind of c. Unknown codes are internal.
func (c Code) Kind() Kind {
	return kinds[c]
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with an underlying cause, reachable through errors.Unwrap.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// find returns the outermost *Error in err's chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := find(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost coded error, or "" when err
// carries none.
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// GetCodeOr is GetCode with a fallback for uncoded errors.
func GetCodeOr(err error, fallback Code) Code {
	if c := GetCode(err); c != "" {
		return c
	}
	return fallback
}

// KindOf returns the kind of err's code. Uncoded errors are internal.
func KindOf(err error) Kind {
	return GetCode(err).Kind()
}

// UserMessage returns the message of a coded error without its code prefix,
// or err.Error() for anything else.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsValidation reports whether err rejects the trace itself rather than a
// parameter or the environment.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
