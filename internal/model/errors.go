package model

import "strings"

// Code is a stable machine-readable error category.
type Code string

const (
	CodeInvalidInput        Code = "InvalidInput"
	CodeNotFound            Code = "NotFound"
	CodeOrganizerCannotJoin Code = "OrganizerCannotJoin"
	CodeExpired             Code = "Expired"
	CodeFull                Code = "Full"
	CodeAlreadyJoined       Code = "AlreadyJoined"
)

// Error is a domain error. Two errors match under errors.Is when their codes match.
type Error struct {
	Code    Code
	Kind    Kind
	Field   string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Name returns the kind-qualified code surfaced to clients, e.g. TableFull
// or MeetupExpired. Codes that do not depend on the kind are returned as is.
func (e *Error) Name() string {
	switch e.Code {
	case CodeFull, CodeExpired:
		return e.Kind.Label() + string(e.Code)
	default:
		return string(e.Code)
	}
}

// Sentinels for errors.Is.
var (
	ErrInvalidInput        = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "not found"}
	ErrOrganizerCannotJoin = &Error{Code: CodeOrganizerCannotJoin, Message: "organizer cannot join their own table"}
	ErrExpired             = &Error{Code: CodeExpired, Message: "the table date has passed"}
	ErrFull                = &Error{Code: CodeFull, Message: "the table is full"}
	ErrAlreadyJoined       = &Error{Code: CodeAlreadyJoined, Message: "already joined this table"}
)

func newError(code Code, kind Kind) *Error {
	noun := strings.ToLower(kind.Label())
	var msg string
	switch code {
	case CodeOrganizerCannotJoin:
		msg = "Organizer cannot join their own " + noun
	case CodeExpired:
		msg = "The " + noun + " date has passed"
	case CodeFull:
		msg = "The " + noun + " is full"
	case CodeAlreadyJoined:
		msg = "Already joined this " + noun
	case CodeNotFound:
		msg = noun + " not found"
	default:
		msg = string(code)
	}
	return &Error{Code: code, Kind: kind, Message: msg}
}

// NotFound builds the error returned when no record of kind exists with the requested id.
func NotFound(kind Kind) *Error {
	return newError(CodeNotFound, kind)
}

// InvalidInput builds an InvalidInput error for field.
func InvalidInput(kind Kind, field, msg string) *Error {
	return &Error{Code: CodeInvalidInput, Kind: kind, Field: field, Message: msg}
}
