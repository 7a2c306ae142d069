// Package apperr defines the error taxonomy shared by services and handlers.
// Services return *Error values; handlers map the Kind to an HTTP status
// without inspecting error strings.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindConflict
	KindGeneration
)

type Error struct {
	Kind  Kind
	Msg   string
	Field string // set for validation errors tied to a single input field
	Err   error  // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

func NotFound(resource string, id int) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("%s %d not found", resource, id)}
}

func NotFoundMsg(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func Generation(msg string, err error) *Error {
	return &Error{Kind: KindGeneration, Msg: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
