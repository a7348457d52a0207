// Package goerror carries the structured error used between the mailer layers.
//
// Repositories return the sentinel errors, usecases translate them into an
// *Error with a Code, and the HTTP layer turns the Code into a status.
package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by lookups that matched no row.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write collides with an existing row.
	ErrConflict = errors.New("record conflict")
)

// Type groups codes by who is at fault.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

var typeNames = map[Type]string{
	TypeServer:     "ERROR_TYPE_SERVER",
	TypeBusiness:   "ERROR_TYPE_BUSINESS",
	TypeValidation: "ERROR_TYPE_VALIDATION",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "ERROR_TYPE_UNKNOWN"
}

// Code is the stable identifier that decides the HTTP status of an error.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	// CodeUpstream marks a failure reported by the mail provider or another
	// dependency outside the service.
	CodeUpstream
)

type codeInfo struct {
	name   string
	status int
}

var codes = map[Code]codeInfo{
	CodeInternal:      {"ERROR_CODE_INTERNAL", http.StatusInternalServerError},
	CodeInvalidFormat: {"ERROR_CODE_INVALID_FORMAT", http.StatusBadRequest},
	CodeInvalidInput:  {"ERROR_CODE_INVALID_INPUT", http.StatusUnprocessableEntity},
	CodeNotFound:      {"ERROR_CODE_NOT_FOUND", http.StatusNotFound},
	CodeConflict:      {"ERROR_CODE_CONFLICT", http.StatusConflict},
	CodeUpstream:      {"ERROR_CODE_UPSTREAM", http.StatusBadGateway},
}

func (c Code) info() codeInfo {
	if ci, ok := codes[c]; ok {
		return ci
	}
	return codes[CodeInternal]
}

func (c Code) String() string { return c.info().name }

// Error is the structured error. It may wrap a cause, and it carries the
// message shown to API callers.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

var fallbackMessages = map[Type]string{
	TypeServer:     "Internal error",
	TypeBusiness:   "Request cannot be fulfilled",
	TypeValidation: "Validation violation",
}

// Error returns the cause when there is one, otherwise the caller-facing message.
func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	}

	if m, ok := fallbackMessages[e.errType]; ok {
		return m
	}
	return "Unknown error"
}

// String is the verbose form used in logs.
func (e *Error) String() string {
	return fmt.Sprintf("%s/%s msg=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string               { return e.msg }
func (e *Error) Type() Type                { return e.errType }
func (e *Error) Code() Code                { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error             { return e.err }
func (e *Error) StatusCode() int           { return e.code.info().status }

// NewServer wraps an unexpected failure. Callers only ever see a generic message.
func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", errType: TypeServer, code: CodeInternal}
}

// NewUpstream wraps a failure reported by an external dependency, such as the
// mail provider rejecting a recipient.
func NewUpstream(err error, msg string) error {
	return &Error{err: err, msg: msg, errType: TypeServer, code: CodeUpstream}
}

// NewBusiness reports a rule the request broke, e.g. a booking that does not exist.
func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, errType: TypeBusiness, code: code}
}

// NewInvalidInput reports failed validation. With a non-nil err the cause is
// kept (the HTTP layer reads the field messages from it). Without one, kv is
// read as field/message pairs; an odd kv degrades to an invalid-format error.
func NewInvalidInput(err error, kv ...string) error {
	e := &Error{err: err, msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput}
	if err != nil {
		return e
	}

	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewInvalidFormat reports a request body that could not be decoded.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return &Error{msg: msg, errType: TypeValidation, code: CodeInvalidFormat}
}

// CodeOf finds the first *Error in err's chain and returns its code.
// Anything else counts as CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeInternal
}
